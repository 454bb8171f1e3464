package store

import (
	"context"
	"sync"

	"civreg/internal/identity/models"
	"civreg/pkg/platform/sentinel"
)

// InMemory keeps identities in a map. Suitable for tests and single-process
// development; production uses the Postgres store.
type InMemory struct {
	mu         sync.RWMutex
	identities map[string]models.Identity
}

func NewInMemory() *InMemory {
	return &InMemory{identities: make(map[string]models.Identity)}
}

func (s *InMemory) Upsert(ctx context.Context, identity *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[identity.UID] = *identity
	return nil
}

// CreateIfAbsent inserts the identity unless one already exists for the UID,
// returning the record now in the store. Existing role assignments are never
// downgraded by this path.
func (s *InMemory) CreateIfAbsent(ctx context.Context, identity *models.Identity) (*models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.identities[identity.UID]; ok {
		existing.Email = identity.Email
		existing.UpdatedAt = identity.UpdatedAt
		s.identities[identity.UID] = existing
		out := existing
		return &out, nil
	}
	s.identities[identity.UID] = *identity
	out := *identity
	return &out, nil
}

func (s *InMemory) FindByUID(ctx context.Context, uid string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[uid]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := identity
	return &out, nil
}

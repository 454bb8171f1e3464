package store

import (
	"context"
	"sort"
	"sync"

	"civreg/internal/application/models"
	"civreg/pkg/platform/sentinel"
)

// InMemory keeps applications in a map guarded by a single mutex. Execute
// holds the lock for the whole read-modify-write, which serializes concurrent
// mutations per identity (and, at this scale, across identities too).
type InMemory struct {
	mu           sync.RWMutex
	applications map[string]models.Application
}

func NewInMemory() *InMemory {
	return &InMemory{applications: make(map[string]models.Application)}
}

func (s *InMemory) Upsert(ctx context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications[app.UID] = *app
	return nil
}

func (s *InMemory) FindByUID(ctx context.Context, uid string) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.applications[uid]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := app
	return &out, nil
}

// List returns all applications in insertion order.
func (s *InMemory) List(ctx context.Context) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	apps := make([]*models.Application, 0, len(s.applications))
	for _, app := range s.applications {
		out := app
		apps = append(apps, &out)
	}
	sort.Slice(apps, func(i, j int) bool {
		if apps[i].CreatedAt.Equal(apps[j].CreatedAt) {
			return apps[i].UID < apps[j].UID
		}
		return apps[i].CreatedAt.Before(apps[j].CreatedAt)
	})
	return apps, nil
}

// Execute runs fn on the application under the store lock and persists the
// result only when fn succeeds. An error from fn discards the mutation
// entirely, which is what makes status change and artifact binding atomic.
func (s *InMemory) Execute(ctx context.Context, uid string, fn func(app *models.Application) error) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.applications[uid]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	working := app
	if err := fn(&working); err != nil {
		return nil, err
	}

	s.applications[uid] = working
	out := working
	return &out, nil
}

package service

import (
	"context"
	"errors"
	"log/slog"

	identitymetrics "civreg/internal/identity/metrics"
	"civreg/internal/identity/models"
	dErrors "civreg/pkg/domain-errors"
	"civreg/pkg/platform/sentinel"
	"civreg/pkg/requestcontext"
)

// IdentityStore is the repository boundary for identity records.
type IdentityStore interface {
	Upsert(ctx context.Context, identity *models.Identity) error
	CreateIfAbsent(ctx context.Context, identity *models.Identity) (*models.Identity, error)
	FindByUID(ctx context.Context, uid string) (*models.Identity, error)
}

// Service owns identity records and the authorization gate. The verifier has
// already authenticated the caller by the time any of these run; this layer
// only decides what a verified subject is allowed to do.
type Service struct {
	identities IdentityStore
	logger     *slog.Logger
	metrics    *identitymetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *identitymetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(identities IdentityStore, opts ...Option) *Service {
	s := &Service{identities: identities, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure records the subject on first authenticated contact. Idempotent:
// repeat calls refresh the email and never change an existing role.
func (s *Service) Ensure(ctx context.Context, uid, email string) error {
	identity, err := models.NewIdentity(uid, email, models.RoleCitizen, requestcontext.Now(ctx))
	if err != nil {
		return err
	}
	if _, err := s.identities.CreateIfAbsent(ctx, identity); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record identity")
	}
	if s.metrics != nil {
		s.metrics.IncrementRecorded()
	}
	return nil
}

// ProvisionSuperuser grants the superuser role, creating the identity if
// needed. Reached only through the operator-token guarded provisioning path.
func (s *Service) ProvisionSuperuser(ctx context.Context, uid, email string) (*models.Identity, error) {
	identity, err := models.NewIdentity(uid, email, models.RoleSuperuser, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, "uid is required")
		}
		return nil, err
	}
	if err := s.identities.Upsert(ctx, identity); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to provision superuser")
	}
	if s.metrics != nil {
		s.metrics.IncrementProvisioned()
	}
	s.logger.InfoContext(ctx, "superuser provisioned",
		"uid", uid,
		"request_id", requestcontext.RequestID(ctx),
	)
	return identity, nil
}

// Get returns the identity record for a subject.
func (s *Service) Get(ctx context.Context, uid string) (*models.Identity, error) {
	identity, err := s.identities.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "identity not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity")
	}
	return identity, nil
}

// RequireRole is the authorization gate. A subject with no identity record is
// an ordinary citizen, so any required role beyond that yields Forbidden —
// never NotFound, which would leak whether a record exists.
func (s *Service) RequireRole(ctx context.Context, uid string, role models.Role) error {
	identity, err := s.identities.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeForbidden, "insufficient privileges")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check privileges")
	}
	if identity.Role != role {
		return dErrors.New(dErrors.CodeForbidden, "insufficient privileges")
	}
	return nil
}

// RequireSuperuser gates the administrative surface.
func (s *Service) RequireSuperuser(ctx context.Context, uid string) error {
	return s.RequireRole(ctx, uid, models.RoleSuperuser)
}

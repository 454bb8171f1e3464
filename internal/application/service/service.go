package service

import (
	"context"
	"errors"
	"log/slog"

	appmetrics "civreg/internal/application/metrics"
	"civreg/internal/application/models"
	dErrors "civreg/pkg/domain-errors"
	"civreg/pkg/platform/sentinel"
	"civreg/pkg/requestcontext"
)

// ApplicationStore is the repository boundary for application records.
// Execute must apply fn as one atomic unit under a per-identity lock: either
// the whole mutation commits or none of it does.
type ApplicationStore interface {
	Upsert(ctx context.Context, app *models.Application) error
	FindByUID(ctx context.Context, uid string) (*models.Application, error)
	List(ctx context.Context) ([]*models.Application, error)
	Execute(ctx context.Context, uid string, fn func(app *models.Application) error) (*models.Application, error)
}

// ArtifactGenerator produces the verification artifact for an approved
// application and returns its reference.
type ArtifactGenerator interface {
	Generate(ctx context.Context, uid string) (string, error)
}

// StatusCacheInvalidator drops any cached public verification result for a
// subject after its status changes.
type StatusCacheInvalidator interface {
	Invalidate(ctx context.Context, uid string) error
}

// Service owns the application lifecycle state machine.
type Service struct {
	apps      ApplicationStore
	artifacts ArtifactGenerator
	cache     StatusCacheInvalidator
	logger    *slog.Logger
	metrics   *appmetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *appmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithCacheInvalidator(cache StatusCacheInvalidator) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

func New(apps ApplicationStore, artifacts ArtifactGenerator, opts ...Option) *Service {
	s := &Service{
		apps:      apps,
		artifacts: artifacts,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit creates or overwrites the caller's application. Upsert semantics:
// a repeat submission supersedes any prior decision and returns the
// application to pending with its stale artifact reference cleared.
func (s *Service) Submit(ctx context.Context, uid string, sub models.Submission) (*models.Application, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	app, err := s.apps.Execute(ctx, uid, func(a *models.Application) error {
		a.ApplyResubmission(sub, now)
		return nil
	})
	if errors.Is(err, sentinel.ErrNotFound) {
		app, err = models.NewApplication(uid, sub, now)
		if err != nil {
			return nil, err
		}
		if err := s.apps.Upsert(ctx, app); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save application")
		}
	} else if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save application")
	}

	s.invalidateCache(ctx, uid)
	if s.metrics != nil {
		s.metrics.IncrementSubmissions()
	}
	s.logger.InfoContext(ctx, "application submitted",
		"uid", uid,
		"request_id", requestcontext.RequestID(ctx),
	)
	return app, nil
}

// Edit mutates only the personal fields of an existing application. Absent
// fields overwrite to empty; status, file references, and artifact are left
// alone.
func (s *Service) Edit(ctx context.Context, uid, fullName, dob, address string) (*models.Application, error) {
	now := requestcontext.Now(ctx)
	app, err := s.apps.Execute(ctx, uid, func(a *models.Application) error {
		a.ApplyEdit(fullName, dob, address, now)
		return nil
	})
	if err != nil {
		return nil, wrapApplicationErr(err)
	}
	return app, nil
}

// GetStatus returns the full public snapshot for the caller's application.
func (s *Service) GetStatus(ctx context.Context, uid string) (*models.Application, error) {
	app, err := s.apps.FindByUID(ctx, uid)
	if err != nil {
		return nil, wrapApplicationErr(err)
	}
	return app, nil
}

// ListAll returns every application. Administrative only; callers go through
// the authorization gate before reaching this.
func (s *Service) ListAll(ctx context.Context) ([]*models.Application, error) {
	apps, err := s.apps.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	return apps, nil
}

// Review applies an administrative decision. Any current status may move to
// either target. Approval generates the verification artifact inside the
// per-identity critical section: if generation fails, the status change is
// discarded with it. Rejection retains any prior artifact reference.
func (s *Service) Review(ctx context.Context, uid string, decision string) (*models.Application, error) {
	target, err := models.ParseDecision(decision)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	app, err := s.apps.Execute(ctx, uid, func(a *models.Application) error {
		if target == models.StatusApproved {
			ref, genErr := s.artifacts.Generate(ctx, a.UID)
			if genErr != nil {
				return dErrors.Wrap(genErr, dErrors.CodeIO, "failed to generate verification artifact")
			}
			return a.ApplyApproval(ref, now)
		}
		a.ApplyRejection(now)
		return nil
	})
	if err != nil {
		return nil, wrapApplicationErr(err)
	}

	s.invalidateCache(ctx, uid)
	if s.metrics != nil {
		s.metrics.IncrementDecision(target == models.StatusApproved)
	}
	s.logger.InfoContext(ctx, "application reviewed",
		"uid", uid,
		"decision", string(target),
		"request_id", requestcontext.RequestID(ctx),
	)
	return app, nil
}

func (s *Service) invalidateCache(ctx context.Context, uid string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, uid); err != nil {
		// Cache staleness is bounded by TTL; losing an invalidation is not
		// worth failing the transition over.
		s.logger.WarnContext(ctx, "failed to invalidate verification cache",
			"uid", uid,
			"error", err.Error(),
		)
	}
}

func wrapApplicationErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	var domainErr dErrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "application operation failed")
}

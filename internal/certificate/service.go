package certificate

import (
	"context"
	"log/slog"
	"time"

	"civreg/internal/application/models"
	dErrors "civreg/pkg/domain-errors"
	"civreg/pkg/requestcontext"
)

// ApplicationReader is the slice of the lifecycle service this package needs.
type ApplicationReader interface {
	GetStatus(ctx context.Context, uid string) (*models.Application, error)
}

// errNotApproved covers both "no application" and "not approved" uniformly so
// the endpoint does not reveal which one it was.
var errNotApproved = dErrors.New(dErrors.CodeNotFound, "approved application not found")

// Service gates certificate rendering on current application state.
type Service struct {
	apps     ApplicationReader
	renderer *Renderer
	logger   *slog.Logger
	metrics  *Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(apps ApplicationReader, renderer *Renderer, opts ...Option) *Service {
	s := &Service{apps: apps, renderer: renderer, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Render produces the certificate for uid. Succeeds iff the application
// exists and its current status is exactly approved: a rejection after
// approval makes the certificate unobtainable again even though the raw
// artifact reference is retained.
func (s *Service) Render(ctx context.Context, uid string) ([]byte, error) {
	start := time.Now()

	app, err := s.apps.GetStatus(ctx, uid)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, errNotApproved
		}
		return nil, err
	}
	if !app.IsApproved() {
		return nil, errNotApproved
	}

	doc, err := s.renderer.Render(app)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementRendered()
		s.metrics.ObserveRender(start)
	}
	s.logger.InfoContext(ctx, "certificate rendered",
		"uid", uid,
		"request_id", requestcontext.RequestID(ctx),
	)
	return doc, nil
}

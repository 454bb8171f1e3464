package verification

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"civreg/internal/application/models"
	"civreg/internal/transport/http/shared"
	dErrors "civreg/pkg/domain-errors"
	"civreg/pkg/platform/sentinel"
	"civreg/pkg/requestcontext"
)

// StatusReader is the slice of the lifecycle service the verify endpoint
// needs.
type StatusReader interface {
	GetStatus(ctx context.Context, uid string) (*models.Application, error)
}

// Handler serves the public endpoint behind every issued QR code. No
// authentication: anyone scanning a code may check validity. The response
// carries only what a verifier needs, never file references.
type Handler struct {
	statuses StatusReader
	cache    StatusCache
	logger   *slog.Logger
}

func NewHandler(statuses StatusReader, cache StatusCache, logger *slog.Logger) *Handler {
	if cache == nil {
		cache = NoopCache{}
	}
	return &Handler{statuses: statuses, cache: cache, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/verify/{uid}", h.handleVerify)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := chi.URLParam(r, "uid")
	if uid == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "uid is required"))
		return
	}

	if cached, err := h.cache.Get(ctx, uid); err == nil {
		shared.WriteJSON(w, http.StatusOK, cached)
		return
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		h.logger.WarnContext(ctx, "verification cache lookup failed",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}

	app, err := h.statuses.GetStatus(ctx, uid)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	result := &Result{
		UID:      app.UID,
		FullName: app.FullName,
		Status:   app.Status,
		Valid:    app.IsApproved(),
	}
	if err := h.cache.Set(ctx, uid, result); err != nil {
		h.logger.WarnContext(ctx, "verification cache store failed",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	shared.WriteJSON(w, http.StatusOK, result)
}

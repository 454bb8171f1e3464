package certificate

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"civreg/internal/platform/middleware"
	"civreg/internal/transport/http/shared"
	dErrors "civreg/pkg/domain-errors"
	"civreg/pkg/requestcontext"
)

// Handler serves certificate downloads to authenticated callers.
type Handler struct {
	certificates *Service
	logger       *slog.Logger
	verifier     middleware.TokenVerifier
}

func NewHandler(certificates *Service, logger *slog.Logger, verifier middleware.TokenVerifier) *Handler {
	return &Handler{certificates: certificates, logger: logger, verifier: verifier}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.verifier, h.logger))
		r.Get("/api/applications/{uid}/certificate", h.handleDownload)
	})
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := chi.URLParam(r, "uid")
	if uid == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "uid is required"))
		return
	}

	doc, err := h.certificates.Render(ctx, uid)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "certificate render failed",
				"uid", uid,
				"error", err.Error(),
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		shared.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+uid+`_application.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

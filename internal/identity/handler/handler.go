package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"civreg/internal/identity/models"
	"civreg/internal/platform/middleware"
	"civreg/internal/transport/http/shared"
	dErrors "civreg/pkg/domain-errors"
	"civreg/pkg/requestcontext"
)

// Service defines the identity operations the handler needs.
type Service interface {
	Get(ctx context.Context, uid string) (*models.Identity, error)
	ProvisionSuperuser(ctx context.Context, uid, email string) (*models.Identity, error)
}

// Handler exposes identity endpoints: whoami for authenticated callers and
// the operator-only superuser provisioning path.
type Handler struct {
	identities Service
	logger     *slog.Logger
	verifier   middleware.TokenVerifier
	adminToken string
}

func New(identities Service, logger *slog.Logger, verifier middleware.TokenVerifier, adminToken string) *Handler {
	return &Handler{
		identities: identities,
		logger:     logger,
		verifier:   verifier,
		adminToken: adminToken,
	}
}

// Register mounts the identity routes.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.verifier, h.logger))
		r.Get("/api/me", h.handleMe)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(h.adminToken, h.logger))
		r.Post("/admin/superusers", h.handleProvisionSuperuser)
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := requestcontext.SubjectID(ctx)
	if uid == "" {
		h.logger.ErrorContext(ctx, "subject missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	identity, err := h.identities.Get(ctx, uid)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]string{
		"uid":   identity.UID,
		"email": identity.Email,
		"role":  string(identity.Role),
	})
}

type provisionRequest struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

func (h *Handler) handleProvisionSuperuser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req provisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := validateProvisionRequest(req); err != nil {
		shared.WriteError(w, err)
		return
	}

	identity, err := h.identities.ProvisionSuperuser(ctx, req.UID, req.Email)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to provision superuser",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, map[string]string{
		"uid":  identity.UID,
		"role": string(identity.Role),
	})
}

func validateProvisionRequest(req provisionRequest) error {
	if !govalidator.StringLength(req.UID, "1", "128") {
		return dErrors.New(dErrors.CodeValidation, "invalid uid")
	}
	if req.Email != "" && !govalidator.IsEmail(req.Email) {
		return dErrors.New(dErrors.CodeValidation, "invalid email")
	}
	return nil
}

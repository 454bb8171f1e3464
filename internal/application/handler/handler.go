package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"civreg/internal/application/models"
	"civreg/internal/platform/middleware"
	"civreg/internal/transport/http/shared"
	dErrors "civreg/pkg/domain-errors"
	"civreg/pkg/requestcontext"
)

// maxUploadBytes bounds a whole multipart submission (photo + document).
const maxUploadBytes = 32 << 20

// Service defines the lifecycle operations the handler needs.
type Service interface {
	Submit(ctx context.Context, uid string, sub models.Submission) (*models.Application, error)
	Edit(ctx context.Context, uid, fullName, dob, address string) (*models.Application, error)
	GetStatus(ctx context.Context, uid string) (*models.Application, error)
	ListAll(ctx context.Context) ([]*models.Application, error)
	Review(ctx context.Context, uid string, decision string) (*models.Application, error)
}

// Gate is the authorization boundary for administrative routes.
type Gate interface {
	RequireSuperuser(ctx context.Context, uid string) error
}

// IdentityRecorder records a subject on first authenticated contact.
type IdentityRecorder interface {
	Ensure(ctx context.Context, uid, email string) error
}

// FileStore persists uploaded files and returns their references.
type FileStore interface {
	Save(ctx context.Context, prefix, uid, filename string, r io.Reader) (string, error)
}

// Handler exposes the application lifecycle over HTTP.
type Handler struct {
	applications Service
	gate         Gate
	identities   IdentityRecorder
	files        FileStore
	logger       *slog.Logger
	verifier     middleware.TokenVerifier
}

func New(
	applications Service,
	gate Gate,
	identities IdentityRecorder,
	files FileStore,
	logger *slog.Logger,
	verifier middleware.TokenVerifier,
) *Handler {
	return &Handler{
		applications: applications,
		gate:         gate,
		identities:   identities,
		files:        files,
		logger:       logger,
		verifier:     verifier,
	}
}

// Register mounts all application routes behind the auth middleware.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.verifier, h.logger))
		r.Post("/api/applications", h.handleSubmit)
		r.Get("/api/applications/me", h.handleGetStatus)
		r.Post("/api/applications/me", h.handleEdit)
		r.Get("/api/admin/applications", h.handleListAll)
		r.Post("/api/admin/applications/{uid}/review", h.handleReview)
	})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := requestcontext.SubjectID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form"))
		return
	}

	fullName := strings.TrimSpace(r.FormValue("fullName"))
	dob := strings.TrimSpace(r.FormValue("dob"))
	address := strings.TrimSpace(r.FormValue("address"))
	photo, photoHeader, photoErr := r.FormFile("photo")
	document, documentHeader, documentErr := r.FormFile("document")
	if photoErr == nil {
		defer photo.Close()
	}
	if documentErr == nil {
		defer document.Close()
	}

	if err := validateSubmission(fullName, dob, address, photoErr == nil, documentErr == nil); err != nil {
		shared.WriteError(w, err)
		return
	}

	// The subject is now known to the system even if review never happens.
	if err := h.identities.Ensure(ctx, uid, requestcontext.Email(ctx)); err != nil {
		h.logError(ctx, "failed to record identity", err)
		shared.WriteError(w, err)
		return
	}

	photoRef, err := h.files.Save(ctx, "photo", uid, photoHeader.Filename, photo)
	if err != nil {
		h.logError(ctx, "failed to store photo", err)
		shared.WriteError(w, dErrors.New(dErrors.CodeIO, "failed to store upload"))
		return
	}
	documentRef, err := h.files.Save(ctx, "document", uid, documentHeader.Filename, document)
	if err != nil {
		h.logError(ctx, "failed to store document", err)
		shared.WriteError(w, dErrors.New(dErrors.CodeIO, "failed to store upload"))
		return
	}

	app, err := h.applications.Submit(ctx, uid, models.Submission{
		FullName:    fullName,
		DOB:         dob,
		Address:     address,
		PhotoRef:    photoRef,
		DocumentRef: documentRef,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, toStatusView(app))
}

func (h *Handler) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	app, err := h.applications.GetStatus(ctx, requestcontext.SubjectID(ctx))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toStatusView(app))
}

type editRequest struct {
	FullName string `json:"fullName"`
	DOB      string `json:"dob"`
	Address  string `json:"address"`
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	// Absent fields decode to "" and overwrite to empty. That is the edit
	// contract: the payload is the new value of all three personal fields.
	app, err := h.applications.Edit(ctx, requestcontext.SubjectID(ctx), req.FullName, req.DOB, req.Address)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toStatusView(app))
}

func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.gate.RequireSuperuser(ctx, requestcontext.SubjectID(ctx)); err != nil {
		shared.WriteError(w, err)
		return
	}

	apps, err := h.applications.ListAll(ctx)
	if err != nil {
		h.logError(ctx, "failed to list applications", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, apps)
}

type reviewRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.gate.RequireSuperuser(ctx, requestcontext.SubjectID(ctx)); err != nil {
		shared.WriteError(w, err)
		return
	}

	uid := chi.URLParam(r, "uid")
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	app, err := h.applications.Review(ctx, uid, req.Status)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    app.Status,
		"qrCodeURL": nullable(app.ArtifactRef),
	})
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"error", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	)
}

func validateSubmission(fullName, dob, address string, hasPhoto, hasDocument bool) error {
	var missing []string
	if fullName == "" {
		missing = append(missing, "fullName")
	}
	if dob == "" {
		missing = append(missing, "dob")
	}
	if address == "" {
		missing = append(missing, "address")
	}
	if !hasPhoto {
		missing = append(missing, "photo")
	}
	if !hasDocument {
		missing = append(missing, "document")
	}
	if len(missing) > 0 {
		return dErrors.New(dErrors.CodeValidation, "missing required fields: "+strings.Join(missing, ", "))
	}
	if !govalidator.StringLength(fullName, "1", "255") {
		return dErrors.New(dErrors.CodeValidation, "invalid fullName")
	}
	if !govalidator.StringLength(address, "1", "1024") {
		return dErrors.New(dErrors.CodeValidation, "invalid address")
	}
	return nil
}

// statusView is the public snapshot of an application.
type statusView struct {
	UID       string        `json:"uid"`
	FullName  string        `json:"fullName"`
	DOB       string        `json:"dob"`
	Address   string        `json:"address"`
	Status    models.Status `json:"status"`
	QRCodeURL *string       `json:"qrCodeURL"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func toStatusView(app *models.Application) statusView {
	return statusView{
		UID:       app.UID,
		FullName:  app.FullName,
		DOB:       app.DOB,
		Address:   app.Address,
		Status:    app.Status,
		QRCodeURL: nullable(app.ArtifactRef),
		UpdatedAt: app.UpdatedAt,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package certificate

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civreg/internal/application/models"
	"civreg/internal/jwtverify"
)

func newDownloadRouter(t *testing.T, apps map[string]*models.Application) (http.Handler, *jwtverify.Service) {
	t.Helper()
	tokens := jwtverify.NewService("test-key", "civreg-test")
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	svc := newTestCertService(apps)

	r := chi.NewRouter()
	NewHandler(svc, logger, tokens).Register(r)
	return r, tokens
}

func TestDownloadEndpoint(t *testing.T) {
	apps := map[string]*models.Application{
		"u1": application("u1", models.StatusApproved),
		"u2": application("u2", models.StatusPending),
	}

	download := func(t *testing.T, router http.Handler, tokens *jwtverify.Service, uid, caller string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/api/applications/"+uid+"/certificate", nil)
		if caller != "" {
			token, err := tokens.Issue(caller, caller+"@example.com", time.Hour)
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("requires authentication", func(t *testing.T) {
		router, tokens := newDownloadRouter(t, apps)
		rec := download(t, router, tokens, "u1", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("serves the PDF for an approved application", func(t *testing.T) {
		router, tokens := newDownloadRouter(t, apps)
		rec := download(t, router, tokens, "u1", "u1")
		require.Equal(t, http.StatusOK, rec.Code)

		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="u1_application.pdf"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "%PDF", rec.Body.String()[:4])
	})

	t.Run("404 for a pending application", func(t *testing.T) {
		router, tokens := newDownloadRouter(t, apps)
		rec := download(t, router, tokens, "u2", "u2")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("404 for an unknown application", func(t *testing.T) {
		router, tokens := newDownloadRouter(t, apps)
		rec := download(t, router, tokens, "ghost", "u1")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civreg/internal/identity/service"
	"civreg/internal/identity/store"
	"civreg/internal/jwtverify"
)

const adminToken = "operator-secret"

type fixture struct {
	router     http.Handler
	tokens     *jwtverify.Service
	identities *service.Service
}

func newFixture(t *testing.T, token string) *fixture {
	t.Helper()
	tokens := jwtverify.NewService("test-key", "civreg-test")
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	identities := service.New(store.NewInMemory())

	r := chi.NewRouter()
	New(identities, logger, tokens, token).Register(r)
	return &fixture{router: r, tokens: tokens, identities: identities}
}

func (f *fixture) bearer(t *testing.T, uid string) string {
	t.Helper()
	token, err := f.tokens.Issue(uid, uid+"@example.com", time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestMeEndpoint(t *testing.T) {
	t.Run("requires authentication", func(t *testing.T) {
		f := newFixture(t, adminToken)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		f := newFixture(t, adminToken)
		token, err := f.tokens.Issue("u1", "u1@example.com", -time.Minute)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("404 for a subject with no identity record", func(t *testing.T) {
		f := newFixture(t, adminToken)
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", f.bearer(t, "u1"))
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("returns the recorded identity", func(t *testing.T) {
		f := newFixture(t, adminToken)
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", f.bearer(t, "u1"))

		require.NoError(t, f.identities.Ensure(req.Context(), "u1", "u1@example.com"))

		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "u1", resp["uid"])
		assert.Equal(t, "u1@example.com", resp["email"])
		assert.Equal(t, "citizen", resp["role"])
	})
}

func TestProvisionSuperuser(t *testing.T) {
	provision := func(t *testing.T, f *fixture, token, body string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/admin/superusers", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("X-Admin-Token", token)
		}
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("requires the operator token", func(t *testing.T) {
		f := newFixture(t, adminToken)
		rec := provision(t, f, "", `{"uid":"admin"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("rejects a wrong token", func(t *testing.T) {
		f := newFixture(t, adminToken)
		rec := provision(t, f, "wrong", `{"uid":"admin"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("disabled entirely when no token is configured", func(t *testing.T) {
		f := newFixture(t, "")
		rec := provision(t, f, "", `{"uid":"admin"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("grants the superuser role", func(t *testing.T) {
		f := newFixture(t, adminToken)
		rec := provision(t, f, adminToken, `{"uid":"admin","email":"admin@example.com"}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "admin", resp["uid"])
		assert.Equal(t, "superuser", resp["role"])
	})

	t.Run("validates the payload", func(t *testing.T) {
		f := newFixture(t, adminToken)
		assert.Equal(t, http.StatusBadRequest, provision(t, f, adminToken, `{"uid":""}`).Code)
		assert.Equal(t, http.StatusBadRequest, provision(t, f, adminToken, `{"uid":"admin","email":"not-an-email"}`).Code)
		assert.Equal(t, http.StatusBadRequest, provision(t, f, adminToken, `not-json`).Code)
	})
}

package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"civreg/pkg/requestcontext"
)

// TokenVerifier is the identity-verifier boundary: given a bearer credential
// it returns the verified subject, or an error when the credential is missing,
// malformed, or expired. The concrete implementation lives in
// internal/jwtverify.
type TokenVerifier interface {
	Verify(token string) (*Subject, error)
}

// Subject is the verified caller identity produced by the TokenVerifier.
type Subject struct {
	UID   string
	Email string
}

// RequireAuth rejects requests without a valid bearer credential and injects
// the verified subject into the request context.
func RequireAuth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			subject, err := verifier.Verify(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithSubjectID(ctx, subject.UID)
			ctx = requestcontext.WithEmail(ctx, subject.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             "unauthorized",
		"error_description": description,
	})
}

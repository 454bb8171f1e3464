// Package jwtverify implements the identity-verifier boundary with HS256
// JWTs. The rest of the system only sees the middleware.TokenVerifier
// interface, so swapping in an external provider (Firebase, OIDC) means
// replacing this package alone.
package jwtverify

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"civreg/internal/platform/middleware"
	dErrors "civreg/pkg/domain-errors"
)

// Claims are the token claims this service issues and accepts. The subject
// identifier is opaque to the rest of the system.
type Claims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Service handles token creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
}

func NewService(signingKey string, issuer string) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
	}
}

// Verify implements middleware.TokenVerifier.
func (s *Service) Verify(tokenString string) (*middleware.Subject, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.UID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	return &middleware.Subject{UID: claims.UID, Email: claims.Email}, nil
}

// Issue mints a token for the given subject. Used by tests and local tooling;
// production deployments verify tokens issued by the external provider.
func (s *Service) Issue(uid, email string, expiresIn time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UID:   uid,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
		},
	})
	return token.SignedString(s.signingKey)
}

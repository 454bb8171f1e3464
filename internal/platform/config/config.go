package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	BaseURL       string
	JWTSigningKey string
	JWTIssuer     string
	AdminToken    string
	DatabaseURL   string
	ArtifactDir   string
	UploadDir     string
	Redis         RedisConfig

	// VerifyCacheTTL bounds how stale a cached public verification lookup
	// may be after an administrative correction.
	VerifyCacheTTL time.Duration
}

// RedisConfig holds connection settings for the verification cache.
// An empty URL disables Redis entirely.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := envOr("CIVREG_ADDR", ":8080")

	// BaseURL is baked into every issued verification artifact, so it must be
	// stable across redeploys for previously issued QR codes to stay valid.
	baseURL := strings.TrimRight(envOr("CIVREG_BASE_URL", "http://localhost:8080"), "/")

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:           addr,
		BaseURL:        baseURL,
		JWTSigningKey:  jwtSigningKey,
		JWTIssuer:      envOr("JWT_ISSUER", "civreg"),
		AdminToken:     os.Getenv("CIVREG_ADMIN_TOKEN"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		ArtifactDir:    envOr("CIVREG_ARTIFACT_DIR", "static/qr_codes"),
		UploadDir:      envOr("CIVREG_UPLOAD_DIR", "uploads"),
		VerifyCacheTTL: 5 * time.Minute,
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apphandler "civreg/internal/application/handler"
	appmetrics "civreg/internal/application/metrics"
	appservice "civreg/internal/application/service"
	appstore "civreg/internal/application/store"
	"civreg/internal/certificate"
	identityhandler "civreg/internal/identity/handler"
	identitymetrics "civreg/internal/identity/metrics"
	identityservice "civreg/internal/identity/service"
	identitystore "civreg/internal/identity/store"
	"civreg/internal/jwtverify"
	"civreg/internal/platform/config"
	"civreg/internal/platform/httpserver"
	"civreg/internal/platform/logger"
	"civreg/internal/platform/middleware"
	platformredis "civreg/internal/platform/redis"
	"civreg/internal/upload"
	"civreg/internal/verification"
)

// main wires dependencies and owns the server lifecycle. Business logic lives
// in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	var (
		identities identityservice.IdentityStore
		apps       appservice.ApplicationStore
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to connect to database", "error", err.Error())
			os.Exit(1)
		}
		defer pool.Close()
		identities = identitystore.NewPostgres(pool)
		apps = appstore.NewPostgres(pool)
		log.Info("using postgres stores")
	} else {
		identities = identitystore.NewInMemory()
		apps = appstore.NewInMemory()
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	var statusCache verification.StatusCache = verification.NoopCache{}
	if cfg.Redis.URL != "" {
		redisClient, err := platformredis.New(cfg.Redis)
		if err != nil {
			log.Error("failed to connect to redis", "error", err.Error())
			os.Exit(1)
		}
		defer redisClient.Close()
		statusCache = verification.NewRedisCache(redisClient, cfg.VerifyCacheTTL)
		log.Info("verification cache enabled")
	}

	verifier := jwtverify.NewService(cfg.JWTSigningKey, cfg.JWTIssuer)
	artifacts := verification.NewGenerator(cfg.BaseURL, cfg.ArtifactDir)
	uploads := upload.NewStore(cfg.UploadDir)

	identitySvc := identityservice.New(identities,
		identityservice.WithLogger(log),
		identityservice.WithMetrics(identitymetrics.New()),
	)
	applicationSvc := appservice.New(apps, artifacts,
		appservice.WithLogger(log),
		appservice.WithMetrics(appmetrics.New()),
		appservice.WithCacheInvalidator(statusCache),
	)
	certificateSvc := certificate.New(applicationSvc, certificate.NewRenderer(),
		certificate.WithLogger(log),
		certificate.WithMetrics(certificate.NewMetrics()),
	)

	if cfg.AdminToken == "" {
		log.Warn("CIVREG_ADMIN_TOKEN not set, superuser provisioning disabled")
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.Timeout(30 * time.Second))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Handle("/metrics", promhttp.Handler())

	// Issued QR images are plain files; the URLs baked into them must keep
	// resolving for as long as the artifacts exist.
	router.Handle("/static/qr_codes/*", http.StripPrefix("/static/qr_codes/",
		http.FileServer(http.Dir(cfg.ArtifactDir))))

	identityhandler.New(identitySvc, log, verifier, cfg.AdminToken).Register(router)
	apphandler.New(applicationSvc, identitySvc, identitySvc, uploads, log, verifier).Register(router)
	verification.NewHandler(applicationSvc, statusCache, log).Register(router)
	certificate.NewHandler(certificateSvc, log, verifier).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("server starting", "addr", cfg.Addr, "base_url", cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
}

// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Refera HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Initialize session signing and identity-provider verification.
//  7. Start the audit recorder worker.
//  8. Wire HTTP handlers.
//  9. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/refera/internal/api"
	"github.com/taibuivan/refera/internal/audit"
	"github.com/taibuivan/refera/internal/identity"
	"github.com/taibuivan/refera/internal/intake/referral"
	"github.com/taibuivan/refera/internal/platform/config"
	"github.com/taibuivan/refera/internal/platform/constants"
	"github.com/taibuivan/refera/internal/platform/migration"
	pgstore "github.com/taibuivan/refera/internal/platform/postgres"
	redisstore "github.com/taibuivan/refera/internal/platform/redis"
	"github.com/taibuivan/refera/internal/platform/sec"
	"github.com/taibuivan/refera/internal/tenancy/authz"
	"github.com/taibuivan/refera/internal/tenancy/directory"
	"github.com/taibuivan/refera/internal/tenancy/membership"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "refera"))
	slog.SetDefault(log)

	log.Info("[Refera] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "refera"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Session Signing & Identity Verification ────────────────────────
	tokenService, err := sec.NewTokenService(cfg.SessionPrivKeyPath, cfg.SessionPubKeyPath, constants.SessionIssuer)
	must(log, err, "initialize session token service")

	idpVerifier, err := identity.NewRS256Verifier(cfg.IdentityPubKeyPath, cfg.IdentityIssuer)
	must(log, err, "initialize identity provider verifier")

	// ── 7. Audit Recorder ─────────────────────────────────────────────────
	auditStore := audit.NewStore(pool)
	auditRecorder := audit.NewRecorder(auditStore, log)

	recorderCtx, recorderCancel := context.WithCancel(context.Background())
	go auditRecorder.Run(recorderCtx)
	defer func() {
		auditRecorder.Close()
		recorderCancel()
	}()

	// ── 8. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 9. Domain Wiring ──────────────────────────────────────────────────
	agencyRepository := directory.NewRepository(pool)
	directoryService := directory.NewService(agencyRepository, cfg, log)

	membershipRepository := membership.NewRepository(pool)
	membershipIndex := membership.NewIndex(membershipRepository, log)

	authorizer := authz.NewAuthorizer(cfg.PlatformAdminEmail, membershipIndex, auditRecorder, log)

	sessionRegistry := identity.NewSessionRegistry(rdb)
	identityService := identity.NewService(
		tokenService, idpVerifier, sessionRegistry,
		membershipIndex, agencyRepository, auditRecorder,
		cfg.PlatformAdminEmail, log,
	)

	referralRepository := referral.NewPostgresRepository(pool)
	referralService := referral.NewService(referralRepository, directoryService, authorizer, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Session:   identity.NewHandler(identityService),
		Agency:    directory.NewHandler(directoryService, membershipIndex, authorizer),
		Referral:  referral.NewHandler(referralService),
	}

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, identityService, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}

// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

// Command api is the entry point for the Medora HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis (token revocation store).
//  5. Run database migrations (idempotent).
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
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
	"strconv"
	"syscall"
	"time"

	"github.com/trankieu/medora/internal/api"
	"github.com/trankieu/medora/internal/billing/payment"
	"github.com/trankieu/medora/internal/clinic/appointment"
	"github.com/trankieu/medora/internal/clinic/doctor"
	"github.com/trankieu/medora/internal/clinic/patient"
	"github.com/trankieu/medora/internal/platform/config"
	"github.com/trankieu/medora/internal/platform/constants"
	"github.com/trankieu/medora/internal/platform/metrics"
	"github.com/trankieu/medora/internal/platform/migration"
	pgstore "github.com/trankieu/medora/internal/platform/postgres"
	redisstore "github.com/trankieu/medora/internal/platform/redis"
	"github.com/trankieu/medora/internal/platform/sec"
	"github.com/trankieu/medora/internal/users/admin"
	"github.com/trankieu/medora/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Medora] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
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

	// ── 6. Token Service ──────────────────────────────────────────────────
	codec, err := sec.NewTokenCodec(cfg.JWTSecret, constants.AuthIssuer)
	must(log, err, "initialize token codec")

	revocationRepository := auth.NewRedisRevocationRepository(rdb)
	tokenService := auth.NewTokenService(codec, revocationRepository, cfg.AccessTokenTTL)

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckRevocationStore: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	principalRepository := auth.NewPrincipalRepository(pool)
	authService := auth.NewService(principalRepository, tokenService)
	authHandler := auth.NewHandler(authService)

	must(log, authService.EnsureSuperAdmin(startupCtx, cfg.SuperAdminEmail, cfg.SuperAdminPassword), "bootstrap super admin")

	adminService := admin.NewService(principalRepository)
	adminHandler := admin.NewHandler(adminService)

	doctorRepository := doctor.NewProfileRepository(pool)
	doctorService := doctor.NewService(doctorRepository, principalRepository)
	doctorHandler := doctor.NewHandler(doctorService)

	patientRepository := patient.NewProfileRepository(pool)
	patientService := patient.NewService(patientRepository, principalRepository)
	patientHandler := patient.NewHandler(patientService)

	appointmentRepository := appointment.NewRepository(pool)
	appointmentService := appointment.NewService(appointmentRepository, doctorRepository)
	appointmentHandler := appointment.NewHandler(appointmentService)

	paymentGateway := payment.NewPaymobGateway(
		cfg.PaymobBaseURL,
		cfg.PaymobAPIKey,
		strconv.Itoa(cfg.PaymobIntegrationID),
	)
	paymentRepository := payment.NewRepository(pool)
	paymentService := payment.NewService(paymentRepository, appointmentRepository, principalRepository, paymentGateway)
	paymentHandler := payment.NewHandler(paymentService)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	collector := metrics.NewCollector()

	handlers := api.Handlers{
		Liveness:    liveness,
		Readiness:   readiness,
		Auth:        authHandler,
		Admin:       adminHandler,
		Doctor:      doctorHandler,
		Patient:     patientHandler,
		Appointment: appointmentHandler,
		Payment:     paymentHandler,
	}

	// serverCtx outlives startup; it stops the rate limiter's cleanup loop.
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, tokenService, collector, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
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

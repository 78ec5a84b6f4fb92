// Package main is the entry point for the finbooks API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"finbooks/internal/config"
	"finbooks/internal/core/fiscal"
	"finbooks/internal/core/security"
	"finbooks/internal/domain/auth"
	v1 "finbooks/internal/infrastructure/http/v1"
	"finbooks/internal/infrastructure/numerator"
	"finbooks/internal/infrastructure/storage/postgres"
	"finbooks/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting finbooks server")

	// --- Migrations ---
	if err := runMigrations(cfg.DB.DSN()); err != nil {
		log.Fatalw("failed to apply migrations", "error", err)
	}
	log.Info("migrations up to date")

	// --- Database pool ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DB.DSN())
	poolCfg.MaxConns = cfg.DB.MaxConns
	poolCfg.MinConns = cfg.DB.MinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalw("failed to ping database", "error", err)
	}
	log.Info("database connection established")

	// --- JWT validation ---
	jwtService := auth.NewJWTService(auth.JWTConfig{
		Secret:         cfg.JWT.Secret,
		Issuer:         cfg.JWT.Issuer,
		AccessTokenTTL: cfg.JWT.AccessTokenTTL,
	})

	// --- Document numbering ---
	calendar := fiscal.NewCalendar(time.Month(cfg.Fiscal.YearStartMonth))
	alloc := numerator.New(calendar)

	// --- Audit trail ---
	auditService, err := postgres.NewAuditService()
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:           pool,
		Logger:         log,
		JWTValidator:   jwtService,
		Numerator:      alloc,
		PostingPolicy:  security.OpenPolicy{},
		Audit:          auditService,
		IdempotencyTTL: cfg.Idempotency.TTL,
	})

	// --- HTTP server ---
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func runMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Package main is the entry point for the finbooks background worker.
// It relays outbox events and purges expired idempotency keys.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"finbooks/internal/config"
	"finbooks/internal/core/tenant"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting finbooks worker")

	poolCfg := postgres.DefaultPoolConfig(cfg.DB.DSN())
	poolCfg.MaxConns = cfg.DB.MaxConns
	poolCfg.MinConns = cfg.DB.MinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	// Background jobs carry the TxManager in context the same way HTTP
	// requests do, so the storage layer works unchanged.
	txManager := postgres.NewTxManager(pool)
	ctx = tenant.WithTxManager(ctx, txManager)
	ctx = logger.WithLogger(ctx, log)

	relay := postgres.NewOutboxRelay(pool.Unwrap(), cfg.Outbox.BatchSize, &logHandler{log: log})
	store := postgres.NewIdempotencyStore(cfg.Idempotency.TTL)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		runRelay(ctx, relay, cfg.Outbox.PollInterval, log)
	}()
	go func() {
		defer wg.Done()
		runCleanup(ctx, store, cfg.Outbox.CleanupInterval, log)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// runRelay drains the outbox until the context is cancelled.
func runRelay(ctx context.Context, relay *postgres.OutboxRelay, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			processed, err := relay.ProcessBatch(ctx)
			if err != nil {
				log.Warnw("outbox batch failed", "error", err)
				continue
			}
			if processed > 0 {
				log.Infow("outbox batch processed", "count", processed)
			}
		}
	}
}

// runCleanup purges expired idempotency keys on a slow cadence.
func runCleanup(ctx context.Context, store *postgres.IdempotencyStore, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := store.CleanupExpired(ctx)
			if err != nil {
				log.Warnw("idempotency cleanup failed", "error", err)
				continue
			}
			if deleted > 0 {
				log.Infow("idempotency keys purged", "count", deleted)
			}
		}
	}
}

// logHandler delivers events to the log stream. External consumers
// (webhooks, message brokers) plug in by implementing OutboxHandler.
type logHandler struct {
	log *logger.Logger
}

func (h *logHandler) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	h.log.Infow("event delivered",
		"event_type", msg.EventType,
		"aggregate_type", msg.AggregateType,
		"aggregate_id", msg.AggregateID,
		"tenant_id", msg.TenantID,
	)
	return nil
}

// Package main provides a CLI tool for seeding a tenant with initial data:
// the default chart of accounts and a head-office branch.
package main

import (
	"context"
	"fmt"
	"os"

	"finbooks/internal/config"
	"finbooks/internal/core/apperror"
	"finbooks/internal/core/id"
	"finbooks/internal/core/tenant"
	"finbooks/internal/domain/catalogs/account"
	"finbooks/internal/domain/catalogs/branch"
	"finbooks/internal/infrastructure/storage/postgres"
	"finbooks/internal/infrastructure/storage/postgres/catalog_repo"
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
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	rawTenantID := os.Getenv("FINBOOKS_SEED_TENANT_ID")
	if rawTenantID == "" {
		log.Fatal("FINBOOKS_SEED_TENANT_ID environment variable is required")
	}
	tenantID, err := id.Parse(rawTenantID)
	if err != nil {
		log.Fatalw("invalid tenant id", "value", rawTenantID, "error", err)
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.DSN()))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	// Seeding runs with the same context plumbing as a request.
	txManager := postgres.NewTxManager(pool)
	ctx = tenant.WithTxManager(ctx, txManager)
	ctx = tenant.WithScope(ctx, tenant.Scope{TenantID: tenantID})
	ctx = logger.WithLogger(ctx, log)

	err = txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := seedChartOfAccounts(ctx, log); err != nil {
			return err
		}
		return seedDefaultBranch(ctx, log)
	})
	if err != nil {
		log.Fatalw("seeding failed", "error", err)
	}

	log.Infow("seeding complete", "tenant_id", tenantID)
}

// seedChartOfAccounts inserts the default chart, skipping accounts that
// already exist so reruns are safe.
func seedChartOfAccounts(ctx context.Context, log *logger.Logger) error {
	repo := catalog_repo.NewAccountRepo()

	var created int
	for _, seed := range account.DefaultChart() {
		_, err := repo.GetByCode(ctx, seed.Code)
		if err == nil {
			continue
		}
		if !apperror.IsNotFound(err) {
			return fmt.Errorf("look up account %s: %w", seed.Code, err)
		}

		acc := account.NewAccount(seed.Code, seed.Name, seed.Type)
		acc.Subtype = seed.Subtype
		acc.IsSystem = true
		acc.TenantID = tenant.TenantID(ctx)

		if err := repo.Create(ctx, acc); err != nil {
			return fmt.Errorf("create account %s: %w", seed.Code, err)
		}
		created++
	}

	log.Infow("chart of accounts seeded", "created", created)
	return nil
}

// seedDefaultBranch creates the head-office branch unless one exists.
func seedDefaultBranch(ctx context.Context, log *logger.Logger) error {
	repo := catalog_repo.NewBranchRepo()

	code := os.Getenv("FINBOOKS_SEED_BRANCH_CODE")
	if code == "" {
		code = "HO"
	}
	name := os.Getenv("FINBOOKS_SEED_BRANCH_NAME")
	if name == "" {
		name = "Head Office"
	}

	_, err := repo.GetByCode(ctx, code)
	if err == nil {
		log.Infow("default branch already exists", "code", code)
		return nil
	}
	if !apperror.IsNotFound(err) {
		return fmt.Errorf("look up branch %s: %w", code, err)
	}

	b := branch.NewBranch(code, name)
	b.IsDefault = true
	b.TenantID = tenant.TenantID(ctx)

	if err := repo.Create(ctx, b); err != nil {
		return fmt.Errorf("create branch %s: %w", code, err)
	}

	log.Infow("default branch created", "code", code, "name", name)
	return nil
}

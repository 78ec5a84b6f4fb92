// Package v1 provides HTTP API version 1.
package v1

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"finbooks/internal/core/entity"
	"finbooks/internal/core/id"
	"finbooks/internal/core/numerator"
	"finbooks/internal/core/security"
	"finbooks/internal/domain"
	"finbooks/internal/domain/catalogs/account"
	"finbooks/internal/domain/catalogs/branch"
	"finbooks/internal/domain/catalogs/counterparty"
	"finbooks/internal/domain/catalogs/item"
	"finbooks/internal/domain/credit"
	"finbooks/internal/domain/documents/trade"
	"finbooks/internal/domain/ledger"
	"finbooks/internal/domain/payments"
	cpledger "finbooks/internal/domain/registers/counterparty"
	"finbooks/internal/domain/registers/stock"
	"finbooks/internal/domain/reports"
	"finbooks/internal/infrastructure/http/v1/handlers"
	"finbooks/internal/infrastructure/http/v1/middleware"
	"finbooks/internal/infrastructure/storage/postgres"
	"finbooks/internal/infrastructure/storage/postgres/catalog_repo"
	"finbooks/internal/infrastructure/storage/postgres/document_repo"
	"finbooks/internal/infrastructure/storage/postgres/register_repo"
	"finbooks/internal/infrastructure/storage/postgres/report_repo"
	"finbooks/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the shared database connection pool
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Numerator draws document and catalog code numbers
	Numerator numerator.Allocator

	// PostingPolicy gates posting into closed periods; nil means open
	PostingPolicy security.PostingPolicy

	// Audit writes the sys_audit trail; nil disables auditing
	Audit *postgres.AuditService

	// IdempotencyTTL enables the idempotency middleware when positive
	IdempotencyTTL time.Duration
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1 - everything requires a valid token and tenant scope
	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.JWTValidator))
	v1.Use(middleware.TenantScope(cfg.Pool))
	if cfg.IdempotencyTTL > 0 {
		store := postgres.NewIdempotencyStore(cfg.IdempotencyTTL)
		v1.Use(middleware.Idempotency(store))
	}

	registerAPIRoutes(v1, cfg)

	return router
}

// registerAPIRoutes wires repositories, services and handlers.
// Repos take no connection: the querier comes from request context.
func registerAPIRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	// Repositories
	cpRepo := catalog_repo.NewCounterpartyRepo()
	itemRepo := catalog_repo.NewItemRepo()
	branchRepo := catalog_repo.NewBranchRepo()
	accountRepo := catalog_repo.NewAccountRepo()
	tradeRepo := document_repo.NewTradeRepo()
	paymentRepo := document_repo.NewPaymentRepo()
	journalRepo := document_repo.NewJournalRepo()
	stockRepo := register_repo.NewStockRepo()
	cpLedgerRepo := register_repo.NewCounterpartyLedgerRepo()
	advanceRepo := register_repo.NewAdvanceRepo()
	reportRepo := report_repo.NewReportRepo()

	// Catalog services
	cpSvc := counterparty.NewService(cpRepo, cfg.Numerator)
	itemSvc := item.NewService(itemRepo, cfg.Numerator)
	branchSvc := branch.NewService(branchRepo)
	accountSvc := account.NewService(accountRepo)

	if cfg.Audit != nil {
		registerAuditHooks(cpSvc.CatalogService, cfg.Audit, "counterparty",
			func(e *counterparty.Counterparty) id.ID { return e.ID })
		registerAuditHooks(itemSvc.CatalogService, cfg.Audit, "item",
			func(e *item.Item) id.ID { return e.ID })
		registerAuditHooks(branchSvc.CatalogService, cfg.Audit, "branch",
			func(e *branch.Branch) id.ID { return e.ID })
		registerAuditHooks(accountSvc.CatalogService, cfg.Audit, "account",
			func(e *account.Account) id.ID { return e.ID })
	}

	// Registers and posting services
	cpLedgerSvc := cpledger.NewService(cpLedgerRepo)
	stockSvc := stock.NewService(stockRepo)
	bridge := trade.NewPaymentBridge(tradeRepo)
	creditCtrl := credit.NewController(cpRepo, cpLedgerSvc, bridge)
	journalSvc := ledger.NewService(journalRepo, accountRepo, cfg.Numerator, branchSvc, cfg.PostingPolicy, nil)
	tradeSvc := trade.NewService(tradeRepo, creditCtrl, journalSvc, accountRepo,
		cpLedgerSvc, stockSvc, cfg.Numerator, branchSvc, nil)
	paymentSvc := payments.NewService(paymentRepo, advanceRepo, bridge, cpLedgerSvc,
		journalSvc, accountRepo, cfg.Numerator, branchSvc, nil)
	reportSvc := reports.NewService(reportRepo)

	// Posted documents and payments land in the outbox for the relay worker.
	events := postgres.NewEventSink()
	tradeSvc.SetEventPublisher(events)
	paymentSvc.SetEventPublisher(events)

	// --- CATALOGS ---
	{
		handler := handlers.NewCounterpartyHandler(baseHandler, cpSvc, cpLedgerSvc, creditCtrl, paymentSvc)
		group := rg.Group("/counterparties")
		RegisterCatalogRoutes(group, handler)
		group.GET("/:id/statement", handler.Statement)
		group.GET("/:id/credit-status", handler.CreditStatus)
		group.GET("/:id/advance", handler.Advance)
	}
	{
		handler := handlers.NewItemHandler(baseHandler, itemSvc, stockSvc)
		group := rg.Group("/items")
		RegisterCatalogRoutes(group, handler)
		group.GET("/:id/stock-history", handler.StockHistory)
	}
	{
		handler := handlers.NewBranchHandler(baseHandler, branchSvc)
		RegisterCatalogRoutes(rg.Group("/branches"), handler)
	}
	{
		handler := handlers.NewAccountHandler(baseHandler, accountSvc, journalSvc)
		group := rg.Group("/accounts")
		RegisterCatalogRoutes(group, handler)
		group.GET("/by-type", handler.ListByType)
		group.GET("/:id/activity", handler.Activity)
	}

	// --- DOCUMENTS ---
	{
		handler := handlers.NewTradeHandler(baseHandler, tradeSvc)
		group := rg.Group("/documents")
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.GET("/:id", handler.Get)
		group.POST("/:id/issue", handler.Issue)
		group.POST("/:id/cancel", handler.Cancel)
	}
	{
		handler := handlers.NewPaymentHandler(baseHandler, paymentSvc)
		group := rg.Group("/payments")
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.GET("/:id", handler.Get)
		group.POST("/:id/cancel", handler.Cancel)
	}
	{
		handler := handlers.NewJournalHandler(baseHandler, journalSvc)
		group := rg.Group("/journal-entries")
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.GET("/:id", handler.Get)
		group.PUT("/:id", handler.Update)
		group.POST("/:id/post", handler.Post)
		group.POST("/:id/cancel", handler.Cancel)
	}

	// --- REPORTS ---
	{
		handler := handlers.NewReportsHandler(baseHandler, reportSvc)
		group := rg.Group("/reports")
		group.GET("/trial-balance", handler.TrialBalance)
		group.GET("/balance-sheet", handler.BalanceSheet)
		group.GET("/profit-loss", handler.ProfitLoss)
		group.GET("/cash-flow", handler.CashFlow)
	}

	// --- AUDIT TRAIL ---
	if cfg.Audit != nil {
		handler := handlers.NewAuditHandler(baseHandler, cfg.Audit)
		rg.GET("/audit/:entityType/:id", handler.EntityHistory)
	}
}

// registerAuditHooks records catalog mutations in the audit trail.
// Hooks run inside the service transaction, so the trail commits with
// the change.
func registerAuditHooks[T entity.Validatable](
	svc *domain.CatalogService[T],
	audit *postgres.AuditService,
	entityType string,
	idOf func(T) id.ID,
) {
	svc.Hooks().On(domain.AfterCreate, func(ctx context.Context, e T) error {
		return audit.LogChange(ctx, entityType, idOf(e), postgres.AuditActionCreate, map[string]any{"after": e})
	})
	svc.Hooks().On(domain.AfterUpdate, func(ctx context.Context, e T) error {
		return audit.LogChange(ctx, entityType, idOf(e), postgres.AuditActionUpdate, map[string]any{"after": e})
	})
	svc.Hooks().On(domain.AfterDelete, func(ctx context.Context, e T) error {
		return audit.LogChange(ctx, entityType, idOf(e), postgres.AuditActionDelete, nil)
	})
}

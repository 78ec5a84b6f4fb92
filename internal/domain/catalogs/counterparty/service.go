package counterparty

import (
	"context"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/id"
	"finbooks/internal/core/numerator"
	"finbooks/internal/domain"
)

// Service provides business logic for Counterparty catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Counterparty] // Embedded for delegation
	repo Repository
}

// NewService creates a new Counterparty service.
// TxManager is obtained from context.
func NewService(repo Repository, alloc numerator.Allocator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Counterparty]{
		Repo:       repo,
		TxManager:  nil, // Obtained from context
		Numerator:  alloc,
		EntityName: "counterparty",
		CodePrefix: "CP-",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	// Register hooks for entity-specific logic
	base.Hooks().On(domain.BeforeCreate, svc.prepareForCreate)
	base.Hooks().On(domain.BeforeUpdate, svc.prepareForUpdate)

	return svc
}

// prepareForCreate handles code generation and uniqueness checks before create.
func (s *Service) prepareForCreate(ctx context.Context, cp *Counterparty) error {
	if cp.Code == "" {
		code, err := s.NextCode(ctx)
		if err != nil {
			return err
		}
		cp.Code = code
	}

	return s.checkGSTINUnique(ctx, cp)
}

// prepareForUpdate handles uniqueness checks before update.
func (s *Service) prepareForUpdate(ctx context.Context, cp *Counterparty) error {
	return s.checkGSTINUnique(ctx, cp)
}

// FindByGSTIN retrieves counterparty by GSTIN.
func (s *Service) FindByGSTIN(ctx context.Context, gstin string) (*Counterparty, error) {
	return s.repo.FindByGSTIN(ctx, gstin)
}

// checkGSTINUnique rejects a second counterparty with the same GSTIN.
func (s *Service) checkGSTINUnique(ctx context.Context, cp *Counterparty) error {
	if cp.GSTIN == nil || *cp.GSTIN == "" {
		return nil
	}
	existing, err := s.repo.FindByGSTIN(ctx, *cp.GSTIN)
	if err != nil {
		// Not found is OK; other errors must be propagated (DB errors, timeouts, etc.).
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != cp.ID {
		return apperror.NewDuplicate("counterparty", "gstin", *cp.GSTIN)
	}
	return nil
}

// GetForUpdate retrieves counterparty with a row lock.
func (s *Service) GetForUpdate(ctx context.Context, cpID id.ID) (*Counterparty, error) {
	return s.repo.GetForUpdate(ctx, cpID)
}

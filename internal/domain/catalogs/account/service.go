package account

import (
	"context"

	"finbooks/internal/core/apperror"
	"finbooks/internal/domain"
)

// Service provides business logic for the chart of accounts.
type Service struct {
	*domain.CatalogService[*Account]
	repo Repository
}

// NewService creates a new Account service.
func NewService(repo Repository) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Account]{
		Repo:       repo,
		TxManager:  nil, // Obtained from context
		EntityName: "account",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().On(domain.BeforeCreate, svc.checkCodeUnique)
	base.Hooks().On(domain.BeforeDelete, svc.guardSystemAccount)

	return svc
}

func (s *Service) checkCodeUnique(ctx context.Context, a *Account) error {
	if a.Code == "" {
		return apperror.NewValidation("account code is required").
			WithDetail("field", "code")
	}
	existing, err := s.repo.GetByCode(ctx, a.Code)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != a.ID {
		return apperror.NewDuplicate("account", "code", a.Code)
	}
	return nil
}

// guardSystemAccount prevents deletion of accounts the engine posts to.
func (s *Service) guardSystemAccount(ctx context.Context, a *Account) error {
	if a.IsSystem {
		return apperror.NewBusinessRule("SYSTEM_ACCOUNT", "system account cannot be deleted").
			WithDetail("code", a.Code)
	}
	return nil
}

// ListByType retrieves accounts by type for reporting.
func (s *Service) ListByType(ctx context.Context, types ...Type) ([]*Account, error) {
	return s.repo.ListByType(ctx, types...)
}

package branch

import (
	"context"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/id"
	"finbooks/internal/domain"
)

// Service provides business logic for Branch catalog.
type Service struct {
	*domain.CatalogService[*Branch]
	repo Repository
}

// NewService creates a new Branch service.
func NewService(repo Repository) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Branch]{
		Repo:       repo,
		TxManager:  nil, // Obtained from context
		EntityName: "branch",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().On(domain.BeforeCreate, svc.checkCodeUnique)

	return svc
}

// checkCodeUnique rejects a second branch with the same code: the code is a
// number-series prefix and two branches sharing it would interleave their
// document numbers.
func (s *Service) checkCodeUnique(ctx context.Context, b *Branch) error {
	existing, err := s.repo.GetByCode(ctx, b.Code)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != b.ID {
		return apperror.NewDuplicate("branch", "code", b.Code)
	}
	return nil
}

// GetDefault retrieves the tenant's default branch.
func (s *Service) GetDefault(ctx context.Context) (*Branch, error) {
	return s.repo.GetDefault(ctx)
}

// NumberPrefix resolves the number-series prefix for a branch ID.
func (s *Service) NumberPrefix(ctx context.Context, branchID id.ID) (string, error) {
	b, err := s.GetByID(ctx, branchID)
	if err != nil {
		return "", err
	}
	return b.NumberPrefix(), nil
}

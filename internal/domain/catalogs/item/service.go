package item

import (
	"context"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/numerator"
	"finbooks/internal/domain"
)

// Service provides business logic for Item catalog.
type Service struct {
	*domain.CatalogService[*Item]
	repo Repository
}

// NewService creates a new Item service.
func NewService(repo Repository, alloc numerator.Allocator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Item]{
		Repo:       repo,
		TxManager:  nil, // Obtained from context
		Numerator:  alloc,
		EntityName: "item",
		CodePrefix: "ITM-",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().On(domain.BeforeCreate, svc.prepareForCreate)
	base.Hooks().On(domain.BeforeUpdate, svc.checkSKUUnique)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, it *Item) error {
	if it.Code == "" {
		code, err := s.NextCode(ctx)
		if err != nil {
			return err
		}
		it.Code = code
	}
	return s.checkSKUUnique(ctx, it)
}

func (s *Service) checkSKUUnique(ctx context.Context, it *Item) error {
	if it.SKU == nil || *it.SKU == "" {
		return nil
	}
	existing, err := s.repo.FindBySKU(ctx, *it.SKU)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != it.ID {
		return apperror.NewDuplicate("item", "sku", *it.SKU)
	}
	return nil
}

// FindBySKU retrieves item by SKU.
func (s *Service) FindBySKU(ctx context.Context, sku string) (*Item, error) {
	return s.repo.FindBySKU(ctx, sku)
}

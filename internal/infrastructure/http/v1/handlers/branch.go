package handlers

import (
	"finbooks/internal/domain/catalogs/branch"
	"finbooks/internal/infrastructure/http/v1/dto"
)

// BranchHTTPHandler is the catalog handler specialization for branches.
type BranchHTTPHandler = CatalogHandler[
	*branch.Branch,
	dto.CreateBranchRequest,
	dto.UpdateBranchRequest,
]

// NewBranchHandler creates the branch handler.
func NewBranchHandler(base *BaseHandler, service *branch.Service) *BranchHTTPHandler {
	config := CatalogHandlerConfig[
		*branch.Branch,
		dto.CreateBranchRequest,
		dto.UpdateBranchRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "branch",
		MapCreateDTO: func(req dto.CreateBranchRequest) *branch.Branch {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateBranchRequest, existing *branch.Branch) *branch.Branch {
			req.ApplyTo(existing)
			return existing
		},
	}

	return NewCatalogHandler(base, config)
}

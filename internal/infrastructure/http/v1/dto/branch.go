package dto

import (
	"finbooks/internal/domain/catalogs/branch"
)

// CreateBranchRequest for creating branches.
type CreateBranchRequest struct {
	Code      string  `json:"code" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	GSTIN     *string `json:"gstin"`
	State     *string `json:"state"`
	Address   *string `json:"address"`
	IsDefault bool    `json:"isDefault"`
}

// ToEntity converts the request to a domain entity.
func (r CreateBranchRequest) ToEntity() *branch.Branch {
	b := branch.NewBranch(r.Code, r.Name)
	b.GSTIN = r.GSTIN
	b.State = r.State
	b.Address = r.Address
	b.IsDefault = r.IsDefault
	return b
}

// UpdateBranchRequest for updating branches.
// Code is immutable once documents are numbered with it.
type UpdateBranchRequest struct {
	Name      *string `json:"name"`
	GSTIN     *string `json:"gstin"`
	State     *string `json:"state"`
	Address   *string `json:"address"`
	IsDefault *bool   `json:"isDefault"`
	Version   int     `json:"version" binding:"required,min=1"`
}

// ApplyTo maps supplied fields onto the existing entity.
func (r UpdateBranchRequest) ApplyTo(b *branch.Branch) {
	if r.Name != nil {
		b.Name = *r.Name
	}
	if r.GSTIN != nil {
		b.GSTIN = r.GSTIN
	}
	if r.State != nil {
		b.State = r.State
	}
	if r.Address != nil {
		b.Address = r.Address
	}
	if r.IsDefault != nil {
		b.IsDefault = *r.IsDefault
	}
	b.Version = r.Version
}

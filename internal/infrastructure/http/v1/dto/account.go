package dto

import (
	"finbooks/internal/domain/catalogs/account"
)

// CreateAccountRequest for creating chart-of-accounts entries.
type CreateAccountRequest struct {
	Code        string          `json:"code" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	Type        account.Type    `json:"accountType" binding:"required"`
	Subtype     account.Subtype `json:"accountSubtype"`
	Description *string         `json:"description"`
}

// ToEntity converts the request to a domain entity.
func (r CreateAccountRequest) ToEntity() *account.Account {
	a := account.NewAccount(r.Code, r.Name, r.Type)
	if r.Subtype != "" {
		a.Subtype = r.Subtype
	}
	a.Description = r.Description
	return a
}

// UpdateAccountRequest for updating accounts. Code and type of system
// accounts are immutable; the service rejects such changes.
type UpdateAccountRequest struct {
	Name        *string          `json:"name"`
	Subtype     *account.Subtype `json:"accountSubtype"`
	Description *string          `json:"description"`
	Version     int              `json:"version" binding:"required,min=1"`
}

// ApplyTo maps supplied fields onto the existing entity.
func (r UpdateAccountRequest) ApplyTo(a *account.Account) {
	if r.Name != nil {
		a.Name = *r.Name
	}
	if r.Subtype != nil {
		a.Subtype = *r.Subtype
	}
	if r.Description != nil {
		a.Description = r.Description
	}
	a.Version = r.Version
}

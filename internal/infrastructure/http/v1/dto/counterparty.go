package dto

import (
	"finbooks/internal/core/types"
	"finbooks/internal/domain/catalogs/counterparty"
)

// CreateCounterpartyRequest for creating counterparties.
type CreateCounterpartyRequest struct {
	Code            string                        `json:"code"`
	Name            string                        `json:"name" binding:"required"`
	Type            counterparty.CounterpartyType `json:"type" binding:"required"`
	LegalName       *string                       `json:"legalName"`
	GSTIN           *string                       `json:"gstin"`
	PAN             *string                       `json:"pan"`
	BillingState    *string                       `json:"billingState"`
	BillingAddress  *string                       `json:"billingAddress"`
	ShippingAddress *string                       `json:"shippingAddress"`
	Phone           *string                       `json:"phone"`
	Email           *string                       `json:"email"`
	ContactPerson   *string                       `json:"contactPerson"`
	CreditLimit     types.Money                   `json:"creditLimit"`
	CreditOverride  bool                          `json:"creditOverride"`
	OpeningBalance  types.Money                   `json:"openingBalance"`
	Comment         *string                       `json:"comment"`
}

// ToEntity converts the request to a domain entity.
func (r CreateCounterpartyRequest) ToEntity() *counterparty.Counterparty {
	cp := counterparty.NewCounterparty(r.Code, r.Name, r.Type)
	cp.LegalName = r.LegalName
	cp.GSTIN = r.GSTIN
	cp.PAN = r.PAN
	cp.BillingState = r.BillingState
	cp.BillingAddress = r.BillingAddress
	cp.ShippingAddress = r.ShippingAddress
	cp.Phone = r.Phone
	cp.Email = r.Email
	cp.ContactPerson = r.ContactPerson
	cp.CreditLimit = r.CreditLimit
	cp.CreditOverride = r.CreditOverride
	cp.OpeningBalance = r.OpeningBalance
	cp.Comment = r.Comment
	return cp
}

// UpdateCounterpartyRequest for updating counterparties.
// Only supplied fields change; Version carries the optimistic lock.
type UpdateCounterpartyRequest struct {
	Name            *string                        `json:"name"`
	Type            *counterparty.CounterpartyType `json:"type"`
	LegalName       *string                        `json:"legalName"`
	GSTIN           *string                        `json:"gstin"`
	PAN             *string                        `json:"pan"`
	BillingState    *string                        `json:"billingState"`
	BillingAddress  *string                        `json:"billingAddress"`
	ShippingAddress *string                        `json:"shippingAddress"`
	Phone           *string                        `json:"phone"`
	Email           *string                        `json:"email"`
	ContactPerson   *string                        `json:"contactPerson"`
	CreditLimit     *types.Money                   `json:"creditLimit"`
	CreditOverride  *bool                          `json:"creditOverride"`
	Comment         *string                        `json:"comment"`
	Version         int                            `json:"version" binding:"required,min=1"`
}

// ApplyTo maps supplied fields onto the existing entity.
func (r UpdateCounterpartyRequest) ApplyTo(cp *counterparty.Counterparty) {
	if r.Name != nil {
		cp.Name = *r.Name
	}
	if r.Type != nil {
		cp.Type = *r.Type
	}
	if r.LegalName != nil {
		cp.LegalName = r.LegalName
	}
	if r.GSTIN != nil {
		cp.GSTIN = r.GSTIN
	}
	if r.PAN != nil {
		cp.PAN = r.PAN
	}
	if r.BillingState != nil {
		cp.BillingState = r.BillingState
	}
	if r.BillingAddress != nil {
		cp.BillingAddress = r.BillingAddress
	}
	if r.ShippingAddress != nil {
		cp.ShippingAddress = r.ShippingAddress
	}
	if r.Phone != nil {
		cp.Phone = r.Phone
	}
	if r.Email != nil {
		cp.Email = r.Email
	}
	if r.ContactPerson != nil {
		cp.ContactPerson = r.ContactPerson
	}
	if r.CreditLimit != nil {
		cp.CreditLimit = *r.CreditLimit
	}
	if r.CreditOverride != nil {
		cp.CreditOverride = *r.CreditOverride
	}
	if r.Comment != nil {
		cp.Comment = r.Comment
	}
	cp.Version = r.Version
}

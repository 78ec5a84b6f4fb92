package dto

import (
	"finbooks/internal/core/types"
	"finbooks/internal/domain/catalogs/item"
)

// CreateItemRequest for creating items.
type CreateItemRequest struct {
	Code          string        `json:"code"`
	Name          string        `json:"name" binding:"required"`
	Type          item.ItemType `json:"type" binding:"required"`
	SKU           *string       `json:"sku"`
	HSNCode       *string       `json:"hsnCode"`
	Unit          string        `json:"unit"`
	SalesPrice    types.Money   `json:"salesPrice"`
	PurchasePrice types.Money   `json:"purchasePrice"`
	GSTRate       types.Money   `json:"gstRate"`
	TrackStock    bool          `json:"trackStock"`
	Description   *string       `json:"description"`
}

// ToEntity converts the request to a domain entity.
func (r CreateItemRequest) ToEntity() *item.Item {
	it := item.NewItem(r.Code, r.Name, r.Type)
	it.SKU = r.SKU
	it.HSNCode = r.HSNCode
	if r.Unit != "" {
		it.Unit = r.Unit
	}
	it.SalesPrice = r.SalesPrice
	it.PurchasePrice = r.PurchasePrice
	it.GSTRate = r.GSTRate
	it.TrackStock = r.TrackStock
	it.Description = r.Description
	return it
}

// UpdateItemRequest for updating items.
type UpdateItemRequest struct {
	Name          *string        `json:"name"`
	Type          *item.ItemType `json:"type"`
	SKU           *string        `json:"sku"`
	HSNCode       *string        `json:"hsnCode"`
	Unit          *string        `json:"unit"`
	SalesPrice    *types.Money   `json:"salesPrice"`
	PurchasePrice *types.Money   `json:"purchasePrice"`
	GSTRate       *types.Money   `json:"gstRate"`
	TrackStock    *bool          `json:"trackStock"`
	Description   *string        `json:"description"`
	Version       int            `json:"version" binding:"required,min=1"`
}

// ApplyTo maps supplied fields onto the existing entity.
func (r UpdateItemRequest) ApplyTo(it *item.Item) {
	if r.Name != nil {
		it.Name = *r.Name
	}
	if r.Type != nil {
		it.Type = *r.Type
	}
	if r.SKU != nil {
		it.SKU = r.SKU
	}
	if r.HSNCode != nil {
		it.HSNCode = r.HSNCode
	}
	if r.Unit != nil {
		it.Unit = *r.Unit
	}
	if r.SalesPrice != nil {
		it.SalesPrice = *r.SalesPrice
	}
	if r.PurchasePrice != nil {
		it.PurchasePrice = *r.PurchasePrice
	}
	if r.GSTRate != nil {
		it.GSTRate = *r.GSTRate
	}
	if r.TrackStock != nil {
		it.TrackStock = *r.TrackStock
	}
	if r.Description != nil {
		it.Description = r.Description
	}
	it.Version = r.Version
}

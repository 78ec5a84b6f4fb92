// Package item provides the Item catalog.
// Items represent the goods and services sold or purchased on documents.
package item

import (
	"context"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/entity"
	"finbooks/internal/core/types"
)

// ItemType defines the item category.
type ItemType string

const (
	TypeGoods   ItemType = "goods"
	TypeService ItemType = "service"
)

// Item represents a product or service.
type Item struct {
	entity.Catalog

	// Type defines item category; services never move stock
	Type ItemType `db:"type" json:"type"`

	// SKU is the stock-keeping unit
	SKU *string `db:"sku" json:"sku,omitempty"`

	// HSNCode is the HSN/SAC classification printed on tax invoices
	HSNCode *string `db:"hsn_code" json:"hsnCode,omitempty"`

	// Unit is the unit of measure ("pcs", "kg", "hrs")
	Unit string `db:"unit" json:"unit"`

	// SalesPrice is the default tax-inclusive selling price
	SalesPrice types.Money `db:"sales_price" json:"salesPrice"`

	// PurchasePrice is the default buying price
	PurchasePrice types.Money `db:"purchase_price" json:"purchasePrice"`

	// GSTRate is the default combined GST rate percent; the calculator
	// splits it evenly into CGST+SGST for intrastate supplies
	GSTRate types.Money `db:"gst_rate" json:"gstRate"`

	// TrackStock enables stock movements for this item
	TrackStock bool `db:"track_stock" json:"trackStock"`

	// Description is a detailed description
	Description *string `db:"description" json:"description,omitempty"`
}

// NewItem creates a new Item with required fields.
func NewItem(code, name string, itemType ItemType) *Item {
	return &Item{
		Catalog: entity.NewCatalog(code, name),
		Type:    itemType,
		Unit:    "pcs",
	}
}

// Validate implements entity.Validatable interface.
func (i *Item) Validate(ctx context.Context) error {
	if err := i.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidItemType(i.Type) {
		return apperror.NewValidation("invalid item type").
			WithDetail("field", "type").
			WithDetail("value", string(i.Type))
	}

	if i.SalesPrice.IsNegative() {
		return apperror.NewValidation("sales price cannot be negative").
			WithDetail("field", "salesPrice")
	}
	if i.PurchasePrice.IsNegative() {
		return apperror.NewValidation("purchase price cannot be negative").
			WithDetail("field", "purchasePrice")
	}
	if i.GSTRate.IsNegative() || i.GSTRate.GreaterThan(types.Hundred) {
		return apperror.NewValidation("GST rate must be between 0 and 100").
			WithDetail("field", "gstRate").
			WithDetail("value", i.GSTRate.String())
	}

	// Services have no physical stock
	if i.Type == TypeService && i.TrackStock {
		return apperror.NewValidation("services cannot track stock").
			WithDetail("field", "trackStock")
	}

	return nil
}

func isValidItemType(t ItemType) bool {
	switch t {
	case TypeGoods, TypeService:
		return true
	}
	return false
}

// IsPhysical returns true if the item can sit in stock.
func (i *Item) IsPhysical() bool {
	return i.Type == TypeGoods
}

// MovesStock returns true when posting a document line for this item
// should record a stock movement.
func (i *Item) MovesStock() bool {
	return i.IsPhysical() && i.TrackStock
}

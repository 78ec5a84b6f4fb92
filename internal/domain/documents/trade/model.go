// Package trade provides the financial trade documents: invoices, bills,
// credit/debit notes, orders, goods receipt notes and quotations.
package trade

import (
	"context"
	"time"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/entity"
	"finbooks/internal/core/id"
	"finbooks/internal/core/types"
	"finbooks/internal/domain/tax"
)

// DocumentType identifies the kind of trade document.
type DocumentType string

const (
	TypeInvoice       DocumentType = "invoice"
	TypeBill          DocumentType = "bill"
	TypeCreditNote    DocumentType = "credit_note"
	TypeDebitNote     DocumentType = "debit_note"
	TypeSalesOrder    DocumentType = "sales_order"
	TypePurchaseOrder DocumentType = "purchase_order"
	TypeGRN           DocumentType = "grn"
	TypeQuotation     DocumentType = "quotation"
)

// PaymentStatus tracks settlement of payable document types.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// numberSeries maps each document type to its number-series prefix.
var numberSeries = map[DocumentType]string{
	TypeInvoice:       "INV-",
	TypeBill:          "BIL-",
	TypeCreditNote:    "CRN-",
	TypeDebitNote:     "DBN-",
	TypeSalesOrder:    "SO-",
	TypePurchaseOrder: "PO-",
	TypeGRN:           "GRN-",
	TypeQuotation:     "QTN-",
}

// Line is one line item of a trade document. The tax breakdown fields are
// either supplied by the caller (and validated) or derived from the input
// fields.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	// ItemID is optional; free-text lines carry only a description
	ItemID      *id.ID `db:"item_id" json:"itemId,omitempty"`
	Description string `db:"description" json:"description"`

	Quantity    types.Money `db:"quantity" json:"quantity"`
	Rate        types.Money `db:"rate" json:"rate"`
	DiscountPct types.Money `db:"discount_pct" json:"discountPct"`

	CGSTRate types.Money `db:"cgst_rate" json:"cgstRate"`
	SGSTRate types.Money `db:"sgst_rate" json:"sgstRate"`
	IGSTRate types.Money `db:"igst_rate" json:"igstRate"`

	// RateExclusive marks the rate as pre-tax
	RateExclusive bool `db:"rate_exclusive" json:"rateExclusive"`

	// Derived amounts, full precision
	TaxableAmount types.Money `db:"taxable_amount" json:"taxableAmount"`
	CGSTAmount    types.Money `db:"cgst_amount" json:"cgstAmount"`
	SGSTAmount    types.Money `db:"sgst_amount" json:"sgstAmount"`
	IGSTAmount    types.Money `db:"igst_amount" json:"igstAmount"`
	LineTotal     types.Money `db:"line_total" json:"lineTotal"`
}

// TaxInput converts the line to the calculator's input shape.
func (l Line) TaxInput() tax.LineInput {
	return tax.LineInput{
		Quantity:      l.Quantity,
		Rate:          l.Rate,
		DiscountPct:   l.DiscountPct,
		CGSTRate:      l.CGSTRate,
		SGSTRate:      l.SGSTRate,
		IGSTRate:      l.IGSTRate,
		RateExclusive: l.RateExclusive,
	}
}

// HasBreakdown reports whether the caller supplied a tax breakdown.
func (l Line) HasBreakdown() bool {
	return !l.TaxableAmount.IsZero() || !l.LineTotal.IsZero()
}

func (l *Line) applyResult(r tax.LineResult) {
	l.TaxableAmount = r.TaxableAmount
	l.CGSTAmount = r.CGST
	l.SGSTAmount = r.SGST
	l.IGSTAmount = r.IGST
	l.LineTotal = r.LineTotal
}

func (l Line) result() tax.LineResult {
	return tax.LineResult{
		TaxableAmount: l.TaxableAmount,
		CGST:          l.CGSTAmount,
		SGST:          l.SGSTAmount,
		IGST:          l.IGSTAmount,
		LineTotal:     l.LineTotal,
	}
}

// TradeDocument is a financial document: an invoice, bill, note, order,
// GRN or quotation.
type TradeDocument struct {
	entity.Document

	Type           DocumentType `db:"type" json:"type"`
	CounterpartyID id.ID        `db:"counterparty_id" json:"counterpartyId"`

	// Reference is the counterparty's own document number, if any
	Reference *string `db:"reference" json:"reference,omitempty"`

	// Document-level discount: percent takes precedence over flat
	DiscountPercent types.Money `db:"discount_percent" json:"discountPercent"`
	DiscountFlat    types.Money `db:"discount_flat" json:"discountFlat"`

	// Totals, rounded to the currency's minor unit
	Subtotal       types.Money `db:"subtotal" json:"subtotal"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	CGSTAmount     types.Money `db:"cgst_amount" json:"cgstAmount"`
	SGSTAmount     types.Money `db:"sgst_amount" json:"sgstAmount"`
	IGSTAmount     types.Money `db:"igst_amount" json:"igstAmount"`
	TaxAmount      types.Money `db:"tax_amount" json:"taxAmount"`
	TotalAmount    types.Money `db:"total_amount" json:"totalAmount"`

	// Settlement state, maintained by the payment allocator
	PaidAmount    types.Money   `db:"paid_amount" json:"paidAmount"`
	BalanceAmount types.Money   `db:"balance_amount" json:"balanceAmount"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"paymentStatus"`

	Cancelled bool `db:"cancelled" json:"cancelled"`

	Lines []Line `db:"-" json:"lines"`
}

// NewTradeDocument creates a document of the given type.
func NewTradeDocument(docType DocumentType, branchID, counterpartyID id.ID, date time.Time) *TradeDocument {
	doc := &TradeDocument{
		Document:       entity.NewDocument(branchID),
		Type:           docType,
		CounterpartyID: counterpartyID,
		PaymentStatus:  PaymentUnpaid,
	}
	doc.Date = date
	return doc
}

// Validate implements entity.Validatable.
func (d *TradeDocument) Validate(ctx context.Context) error {
	if err := d.Document.Validate(ctx); err != nil {
		return err
	}

	if _, ok := numberSeries[d.Type]; !ok {
		return apperror.NewValidation("invalid document type").
			WithDetail("field", "type").
			WithDetail("value", string(d.Type))
	}

	if id.IsNil(d.CounterpartyID) {
		return apperror.NewValidation("counterparty is required").
			WithDetail("field", "counterpartyId")
	}

	if len(d.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range d.Lines {
		if line.Quantity.IsNegative() {
			return apperror.NewValidation("line quantity cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// IsSales reports whether the document increases customer exposure.
func (d *TradeDocument) IsSales() bool {
	switch d.Type {
	case TypeInvoice, TypeSalesOrder, TypeQuotation:
		return true
	}
	return false
}

// IsPayable reports whether the document carries a settleable balance.
func (d *TradeDocument) IsPayable() bool {
	switch d.Type {
	case TypeInvoice, TypeBill, TypeCreditNote, TypeDebitNote:
		return true
	}
	return false
}

// Receivable reports whether settlement money flows inbound.
func (d *TradeDocument) Receivable() bool {
	return d.Type == TypeInvoice || d.Type == TypeDebitNote
}

// SeriesPrefix returns the number-series prefix for the document type.
func (d *TradeDocument) SeriesPrefix() string {
	return numberSeries[d.Type]
}

// RefreshPaymentStatus re-derives balance and status from paid amount.
// Holds the invariant balance = total - paid after every mutation.
func (d *TradeDocument) RefreshPaymentStatus() {
	d.BalanceAmount = d.TotalAmount.Sub(d.PaidAmount)
	switch {
	case d.BalanceAmount.Abs().LessThan(types.Epsilon):
		d.PaymentStatus = PaymentPaid
	case d.PaidAmount.IsPositive():
		d.PaymentStatus = PaymentPartial
	default:
		d.PaymentStatus = PaymentUnpaid
	}
}

// CanModify extends the posted-document guard with the cancelled state.
func (d *TradeDocument) CanModify() error {
	if d.Cancelled {
		return apperror.NewBusinessRule("DOCUMENT_CANCELLED", "Cannot modify cancelled document.").
			WithDetail("document_id", d.ID.String())
	}
	return d.Document.CanModify()
}

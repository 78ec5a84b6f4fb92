package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/id"
	"finbooks/internal/core/tenant"
	"finbooks/internal/core/types"
	"finbooks/internal/domain"
	"finbooks/internal/domain/documents/trade"
	"finbooks/internal/infrastructure/storage/postgres"
)

const (
	tradeTable      = "doc_trade"
	tradeLinesTable = "doc_trade_lines"
)

var _ trade.Repository = (*TradeRepo)(nil)

// TradeRepo implements trade.Repository.
type TradeRepo struct {
	*BaseDocumentRepo[*trade.TradeDocument]
}

// NewTradeRepo creates a new trade document repository.
func NewTradeRepo() *TradeRepo {
	return &TradeRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*trade.TradeDocument](
			tradeTable,
			postgres.ExtractDBColumns[trade.TradeDocument](),
			func() *trade.TradeDocument { return &trade.TradeDocument{} },
		),
	}
}

// Create inserts the document with its lines.
func (r *TradeRepo) Create(ctx context.Context, d *trade.TradeDocument) error {
	if err := r.BaseDocumentRepo.Create(ctx, d); err != nil {
		return err
	}
	return r.insertLines(ctx, d.ID, d.Lines)
}

// GetByID retrieves the document with lines.
func (r *TradeRepo) GetByID(ctx context.Context, documentID id.ID) (*trade.TradeDocument, error) {
	d, err := r.BaseDocumentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if d.Lines, err = r.getLines(ctx, d.ID); err != nil {
		return nil, err
	}
	return d, nil
}

// GetForUpdate retrieves the document with a row lock on the header.
func (r *TradeRepo) GetForUpdate(ctx context.Context, documentID id.ID) (*trade.TradeDocument, error) {
	d, err := r.BaseDocumentRepo.GetForUpdate(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if d.Lines, err = r.getLines(ctx, d.ID); err != nil {
		return nil, err
	}
	return d, nil
}

// UpdateHeader persists header fields with optimistic locking.
func (r *TradeRepo) UpdateHeader(ctx context.Context, d *trade.TradeDocument) error {
	return r.BaseDocumentRepo.Update(ctx, d)
}

// ApplyPayment increments paid_amount by delta and re-derives
// balance_amount and payment_status in the same statement.
func (r *TradeRepo) ApplyPayment(ctx context.Context, documentID id.ID, delta types.Money) error {
	sql := `
		UPDATE ` + tradeTable + ` SET
			paid_amount    = paid_amount + $1,
			balance_amount = total_amount - (paid_amount + $1),
			payment_status = CASE
				WHEN abs(total_amount - (paid_amount + $1)) < 0.01 THEN 'paid'
				WHEN paid_amount + $1 > 0 THEN 'partial'
				ELSE 'unpaid'
			END,
			updated_at = NOW(),
			version    = version + 1
		WHERE id = $2 AND tenant_id = $3`

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, delta, documentID, tenant.TenantID(ctx))
	if err != nil {
		return fmt.Errorf("apply payment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("document", documentID.String())
	}
	return nil
}

// List retrieves documents matching the filter, newest first.
func (r *TradeRepo) List(ctx context.Context, f trade.ListFilter) (domain.ListResult[*trade.TradeDocument], error) {
	result := domain.ListResult[*trade.TradeDocument]{
		Limit:  f.Limit,
		Offset: f.Offset,
	}

	q := r.baseSelect(ctx)

	if !f.IncludeCancelled {
		q = q.Where(squirrel.Eq{"cancelled": false})
	}
	if f.Type != nil {
		q = q.Where(squirrel.Eq{"type": *f.Type})
	}
	if f.CounterpartyID != nil {
		q = q.Where(squirrel.Eq{"counterparty_id": *f.CounterpartyID})
	}
	if f.BranchID != nil {
		q = q.Where(squirrel.Eq{"branch_id": *f.BranchID})
	}
	if f.PaymentStatus != nil {
		q = q.Where(squirrel.Eq{"payment_status": *f.PaymentStatus})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"date": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.LtOrEq{"date": *f.To})
	}

	total, err := r.CountOf(ctx, q)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	q = q.OrderBy("date DESC", "number DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	items, err := r.FindAll(ctx, q)
	if err != nil {
		return result, err
	}
	result.Items = items

	return result, nil
}

// UnpaidReceivableTotal sums balance_amount over issued, uncancelled
// receivable documents of one counterparty.
func (r *TradeRepo) UnpaidReceivableTotal(ctx context.Context, counterpartyID id.ID) (types.Money, error) {
	q := r.Builder().
		Select("COALESCE(SUM(balance_amount), 0)").
		From(tradeTable).
		Where(r.tenantEq(ctx)).
		Where(squirrel.Eq{"counterparty_id": counterpartyID}).
		Where(squirrel.Eq{"posted": true}).
		Where(squirrel.Eq{"cancelled": false}).
		Where(squirrel.Eq{"type": []trade.DocumentType{trade.TypeInvoice, trade.TypeDebitNote}})

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build query: %w", err)
	}

	var total types.Money
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("unpaid receivable total: %w", err)
	}

	return total, nil
}

func (r *TradeRepo) getLines(ctx context.Context, docID id.ID) ([]trade.Line, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "item_id", "description",
			"quantity", "rate", "discount_pct",
			"cgst_rate", "sgst_rate", "igst_rate", "rate_exclusive",
			"taxable_amount", "cgst_amount", "sgst_amount", "igst_amount", "line_total",
		).
		From(tradeLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []trade.Line
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

func (r *TradeRepo) insertLines(ctx context.Context, docID id.ID, lines []trade.Line) error {
	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(tradeLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "item_id", "description",
			"quantity", "rate", "discount_pct",
			"cgst_rate", "sgst_rate", "igst_rate", "rate_exclusive",
			"taxable_amount", "cgst_amount", "sgst_amount", "igst_amount", "line_total",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.ItemID, line.Description,
			line.Quantity, line.Rate, line.DiscountPct,
			line.CGSTRate, line.SGSTRate, line.IGSTRate, line.RateExclusive,
			line.TaxableAmount, line.CGSTAmount, line.SGSTAmount, line.IGSTAmount, line.LineTotal,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"finbooks/internal/core/id"
	"finbooks/internal/domain"
	"finbooks/internal/domain/payments"
	"finbooks/internal/infrastructure/storage/postgres"
)

const (
	paymentTable     = "doc_payments"
	allocationsTable = "doc_payment_allocations"
)

var _ payments.Repository = (*PaymentRepo)(nil)

// PaymentRepo implements payments.Repository.
type PaymentRepo struct {
	*BaseDocumentRepo[*payments.Payment]
}

// NewPaymentRepo creates a new payment repository.
func NewPaymentRepo() *PaymentRepo {
	return &PaymentRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*payments.Payment](
			paymentTable,
			postgres.ExtractDBColumns[payments.Payment](),
			func() *payments.Payment { return &payments.Payment{} },
		),
	}
}

// Create inserts the payment header and its allocations.
func (r *PaymentRepo) Create(ctx context.Context, p *payments.Payment) error {
	if err := r.BaseDocumentRepo.Create(ctx, p); err != nil {
		return err
	}
	return r.insertAllocations(ctx, p.ID, p.Allocations)
}

// GetByID retrieves a payment with allocations.
func (r *PaymentRepo) GetByID(ctx context.Context, paymentID id.ID) (*payments.Payment, error) {
	p, err := r.BaseDocumentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Allocations, err = r.getAllocations(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// GetForUpdate retrieves a payment with a row lock on the header.
func (r *PaymentRepo) GetForUpdate(ctx context.Context, paymentID id.ID) (*payments.Payment, error) {
	p, err := r.BaseDocumentRepo.GetForUpdate(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Allocations, err = r.getAllocations(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// MarkCancelled flags the payment with optimistic-lock check.
func (r *PaymentRepo) MarkCancelled(ctx context.Context, p *payments.Payment) error {
	p.Cancelled = true
	p.MarkUnposted()
	return r.BaseDocumentRepo.Update(ctx, p)
}

// List retrieves payments matching the filter, newest first.
func (r *PaymentRepo) List(ctx context.Context, f payments.ListFilter) (domain.ListResult[*payments.Payment], error) {
	result := domain.ListResult[*payments.Payment]{
		Limit:  f.Limit,
		Offset: f.Offset,
	}

	q := r.baseSelect(ctx)

	if f.CounterpartyID != nil {
		q = q.Where(squirrel.Eq{"counterparty_id": *f.CounterpartyID})
	}
	if f.Direction != nil {
		q = q.Where(squirrel.Eq{"direction": *f.Direction})
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

func (r *PaymentRepo) getAllocations(ctx context.Context, paymentID id.ID) ([]payments.Allocation, error) {
	q := r.Builder().
		Select("id", "payment_id", "document_id", "document_number", "amount", "from_advance").
		From(allocationsTable).
		Where(squirrel.Eq{"payment_id": paymentID}).
		OrderBy("document_number")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var allocations []payments.Allocation
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &allocations, sql, args...); err != nil {
		return nil, fmt.Errorf("get allocations: %w", err)
	}

	return allocations, nil
}

func (r *PaymentRepo) insertAllocations(ctx context.Context, paymentID id.ID, allocations []payments.Allocation) error {
	if len(allocations) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(allocationsTable).
		Columns("id", "payment_id", "document_id", "document_number", "amount", "from_advance")

	for _, a := range allocations {
		allocID := a.ID
		if id.IsNil(allocID) {
			allocID = id.New()
		}
		q = q.Values(allocID, paymentID, a.DocumentID, a.DocumentNumber, a.Amount, a.FromAdvance)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert allocations: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert allocations: %w", err)
	}

	return nil
}

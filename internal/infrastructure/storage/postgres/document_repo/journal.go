package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/id"
	"finbooks/internal/core/tenant"
	"finbooks/internal/domain"
	"finbooks/internal/domain/ledger"
	"finbooks/internal/infrastructure/storage/postgres"
)

const (
	journalTable      = "journal_entries"
	journalLinesTable = "journal_lines"
)

var _ ledger.Repository = (*JournalRepo)(nil)

// JournalRepo implements ledger.Repository.
type JournalRepo struct {
	*BaseDocumentRepo[*ledger.JournalEntry]
}

// NewJournalRepo creates a new journal repository.
func NewJournalRepo() *JournalRepo {
	return &JournalRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*ledger.JournalEntry](
			journalTable,
			postgres.ExtractDBColumns[ledger.JournalEntry](),
			func() *ledger.JournalEntry { return &ledger.JournalEntry{} },
		),
	}
}

// CreateEntry inserts the entry header and its lines.
func (r *JournalRepo) CreateEntry(ctx context.Context, entry *ledger.JournalEntry) error {
	if err := r.BaseDocumentRepo.Create(ctx, entry); err != nil {
		return err
	}
	return r.insertLines(ctx, entry.ID, entry.Lines)
}

// GetByID retrieves an entry with its lines.
func (r *JournalRepo) GetByID(ctx context.Context, entryID id.ID) (*ledger.JournalEntry, error) {
	e, err := r.BaseDocumentRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if e.Lines, err = r.getLines(ctx, e.ID); err != nil {
		return nil, err
	}
	return e, nil
}

// GetForUpdate retrieves an entry with a row lock on the header.
func (r *JournalRepo) GetForUpdate(ctx context.Context, entryID id.ID) (*ledger.JournalEntry, error) {
	e, err := r.BaseDocumentRepo.GetForUpdate(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if e.Lines, err = r.getLines(ctx, e.ID); err != nil {
		return nil, err
	}
	return e, nil
}

// ReplaceLines deletes and re-inserts the lines of a draft entry.
func (r *JournalRepo) ReplaceLines(ctx context.Context, entry *ledger.JournalEntry) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + journalLinesTable + " WHERE entry_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, entry.ID); err != nil {
		return fmt.Errorf("delete lines: %w", err)
	}

	return r.insertLines(ctx, entry.ID, entry.Lines)
}

// UpdateHeader updates header fields with optimistic-lock check.
func (r *JournalRepo) UpdateHeader(ctx context.Context, entry *ledger.JournalEntry) error {
	return r.BaseDocumentRepo.Update(ctx, entry)
}

// Transition moves the entry from one status to another with an
// optimistic-lock check on entry.Version. The header (number, posted
// flags) is persisted in the same update.
func (r *JournalRepo) Transition(ctx context.Context, entry *ledger.JournalEntry, from, to ledger.Status) error {
	q := r.Builder().
		Update(journalTable).
		Set("status", to).
		Set("number", entry.Number).
		Set("posted", entry.Posted).
		Set("posted_version", entry.PostedVersion).
		Set("total_debit", entry.TotalDebit).
		Set("total_credit", entry.TotalCredit).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": entry.ID}).
		Where(squirrel.Eq{"tenant_id": tenant.TenantID(ctx)}).
		Where(squirrel.Eq{"status": from}).
		Where(squirrel.Eq{"version": entry.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build transition: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("transition %s -> %s: %w", from, to, err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("journal_entry", entry.ID)
	}

	entry.Status = to
	entry.Version++
	return nil
}

// List retrieves entries matching the filter, newest first.
func (r *JournalRepo) List(ctx context.Context, f ledger.EntryFilter) (domain.ListResult[*ledger.JournalEntry], error) {
	result := domain.ListResult[*ledger.JournalEntry]{
		Limit:  f.Limit,
		Offset: f.Offset,
	}

	q := r.baseSelect(ctx)

	if f.Status != nil {
		q = q.Where(squirrel.Eq{"status": *f.Status})
	}
	if f.SourceType != nil {
		q = q.Where(squirrel.Eq{"source_type": *f.SourceType})
	}
	if f.BranchID != nil {
		q = q.Where(squirrel.Eq{"branch_id": *f.BranchID})
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

// FindBySource retrieves the entries produced by a document or payment.
func (r *JournalRepo) FindBySource(ctx context.Context, sourceType ledger.SourceType, sourceID id.ID) ([]*ledger.JournalEntry, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"source_type": sourceType}).
		Where(squirrel.Eq{"source_id": sourceID}).
		OrderBy("date", "number")

	entries, err := r.FindAll(ctx, q)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if e.Lines, err = r.getLines(ctx, e.ID); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

// AccountTurnover aggregates posted debits and credits per account.
func (r *JournalRepo) AccountTurnover(ctx context.Context, from, to time.Time) ([]ledger.AccountMovement, error) {
	sql := `
		SELECT l.account_id,
		       COALESCE(SUM(l.debit), 0)  AS total_debit,
		       COALESCE(SUM(l.credit), 0) AS total_credit
		FROM ` + journalLinesTable + ` l
		JOIN ` + journalTable + ` e ON e.id = l.entry_id
		WHERE e.tenant_id = $1
		  AND e.status = $2
		  AND e.date >= $3 AND e.date <= $4
		GROUP BY l.account_id`

	var movements []ledger.AccountMovement
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	err := pgxscan.Select(ctx, querier, &movements, sql,
		tenant.TenantID(ctx), ledger.StatusPosted, from, to)
	if err != nil {
		return nil, fmt.Errorf("account turnover: %w", err)
	}

	return movements, nil
}

// AccountActivity returns posted lines touching an account in the period.
func (r *JournalRepo) AccountActivity(ctx context.Context, accountID id.ID, from, to time.Time) ([]ledger.ActivityLine, error) {
	sql := `
		SELECT e.id     AS entry_id,
		       e.number AS entry_number,
		       e.date,
		       l.debit,
		       l.credit,
		       l.description
		FROM ` + journalLinesTable + ` l
		JOIN ` + journalTable + ` e ON e.id = l.entry_id
		WHERE e.tenant_id = $1
		  AND e.status = $2
		  AND l.account_id = $3
		  AND e.date >= $4 AND e.date <= $5
		ORDER BY e.date, e.number, l.line_no`

	var lines []ledger.ActivityLine
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	err := pgxscan.Select(ctx, querier, &lines, sql,
		tenant.TenantID(ctx), ledger.StatusPosted, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("account activity: %w", err)
	}

	return lines, nil
}

func (r *JournalRepo) getLines(ctx context.Context, entryID id.ID) ([]ledger.JournalLine, error) {
	q := r.Builder().
		Select("id", "entry_id", "line_no", "account_id", "debit", "credit", "description").
		From(journalLinesTable).
		Where(squirrel.Eq{"entry_id": entryID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []ledger.JournalLine
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

func (r *JournalRepo) insertLines(ctx context.Context, entryID id.ID, lines []ledger.JournalLine) error {
	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(journalLinesTable).
		Columns("id", "entry_id", "line_no", "account_id", "debit", "credit", "description")

	for _, line := range lines {
		lineID := line.ID
		if id.IsNil(lineID) {
			lineID = id.New()
		}
		q = q.Values(lineID, entryID, line.LineNo, line.AccountID, line.Debit, line.Credit, line.Description)
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

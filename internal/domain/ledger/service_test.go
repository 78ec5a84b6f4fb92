package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/id"
	"finbooks/internal/core/numerator"
	"finbooks/internal/core/security"
	"finbooks/internal/core/tenant"
	"finbooks/internal/core/types"
	"finbooks/internal/domain"
	"finbooks/internal/domain/catalogs/account"
)

// --- in-memory fakes ---

type noopTxManager struct{}

func (noopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeEntryRepo struct {
	entries map[id.ID]*JournalEntry
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{entries: make(map[id.ID]*JournalEntry)}
}

func (r *fakeEntryRepo) CreateEntry(ctx context.Context, e *JournalEntry) error {
	cp := *e
	cp.Lines = append([]JournalLine(nil), e.Lines...)
	r.entries[e.ID] = &cp
	return nil
}

func (r *fakeEntryRepo) GetByID(ctx context.Context, entryID id.ID) (*JournalEntry, error) {
	e, ok := r.entries[entryID]
	if !ok {
		return nil, apperror.NewNotFound("journal_entry", entryID.String())
	}
	cp := *e
	cp.Lines = append([]JournalLine(nil), e.Lines...)
	return &cp, nil
}

func (r *fakeEntryRepo) GetForUpdate(ctx context.Context, entryID id.ID) (*JournalEntry, error) {
	return r.GetByID(ctx, entryID)
}

func (r *fakeEntryRepo) ReplaceLines(ctx context.Context, e *JournalEntry) error {
	stored, ok := r.entries[e.ID]
	if !ok {
		return apperror.NewNotFound("journal_entry", e.ID.String())
	}
	stored.Lines = append([]JournalLine(nil), e.Lines...)
	return nil
}

func (r *fakeEntryRepo) UpdateHeader(ctx context.Context, e *JournalEntry) error {
	stored, ok := r.entries[e.ID]
	if !ok {
		return apperror.NewNotFound("journal_entry", e.ID.String())
	}
	lines := stored.Lines
	*stored = *e
	stored.Lines = lines
	return nil
}

func (r *fakeEntryRepo) Transition(ctx context.Context, e *JournalEntry, from, to Status) error {
	stored, ok := r.entries[e.ID]
	if !ok {
		return apperror.NewNotFound("journal_entry", e.ID.String())
	}
	if stored.Status != from || stored.Version != e.Version {
		return apperror.NewConcurrentModification("journal_entry", e.ID.String())
	}
	lines := stored.Lines
	*stored = *e
	stored.Lines = lines
	stored.Status = to
	stored.Version++
	e.Status = to
	e.Version++
	return nil
}

func (r *fakeEntryRepo) List(ctx context.Context, filter EntryFilter) (domain.ListResult[*JournalEntry], error) {
	var out []*JournalEntry
	for _, e := range r.entries {
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		out = append(out, e)
	}
	return domain.ListResult[*JournalEntry]{Items: out, TotalCount: int64(len(out))}, nil
}

func (r *fakeEntryRepo) FindBySource(ctx context.Context, st SourceType, sourceID id.ID) ([]*JournalEntry, error) {
	var out []*JournalEntry
	for _, e := range r.entries {
		if e.SourceType == st && e.SourceID != nil && *e.SourceID == sourceID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) AccountTurnover(ctx context.Context, from, to time.Time) ([]AccountMovement, error) {
	return nil, nil
}

func (r *fakeEntryRepo) AccountActivity(ctx context.Context, accountID id.ID, from, to time.Time) ([]ActivityLine, error) {
	return nil, nil
}

type fakeAccountRepo struct {
	accounts map[id.ID]*account.Account
}

func newFakeAccountRepo(accs ...*account.Account) *fakeAccountRepo {
	r := &fakeAccountRepo{accounts: make(map[id.ID]*account.Account)}
	for _, a := range accs {
		r.accounts[a.ID] = a
	}
	return r
}

func (r *fakeAccountRepo) Create(ctx context.Context, a *account.Account) error {
	r.accounts[a.ID] = a
	return nil
}

func (r *fakeAccountRepo) GetByID(ctx context.Context, accID id.ID) (*account.Account, error) {
	a, ok := r.accounts[accID]
	if !ok {
		return nil, apperror.NewNotFound("account", accID.String())
	}
	return a, nil
}

func (r *fakeAccountRepo) GetByCode(ctx context.Context, code string) (*account.Account, error) {
	for _, a := range r.accounts {
		if a.Code == code {
			return a, nil
		}
	}
	return nil, apperror.NewNotFound("account", code)
}

func (r *fakeAccountRepo) Update(ctx context.Context, a *account.Account) error {
	r.accounts[a.ID] = a
	return nil
}

func (r *fakeAccountRepo) SetDeletionMark(ctx context.Context, accID id.ID, marked bool) error {
	return nil
}

func (r *fakeAccountRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*account.Account], error) {
	return domain.ListResult[*account.Account]{}, nil
}

func (r *fakeAccountRepo) Exists(ctx context.Context, accID id.ID) (bool, error) {
	_, ok := r.accounts[accID]
	return ok, nil
}

func (r *fakeAccountRepo) ListByType(ctx context.Context, types ...account.Type) ([]*account.Account, error) {
	return nil, nil
}

func (r *fakeAccountRepo) ApplyBalanceDelta(ctx context.Context, accID id.ID, delta types.Money) error {
	a, ok := r.accounts[accID]
	if !ok {
		return apperror.NewNotFound("account", accID.String())
	}
	a.Balance = a.Balance.Add(delta)
	return nil
}

type staticPrefix string

func (p staticPrefix) NumberPrefix(ctx context.Context, branchID id.ID) (string, error) {
	return string(p), nil
}

// --- fixture ---

type fixture struct {
	svc        *Service
	repo       *fakeEntryRepo
	accounts   *fakeAccountRepo
	cash       *account.Account
	sales      *account.Account
	receivable *account.Account
	branchID   id.ID
	ctx        context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cash := account.NewAccount(account.CodeCash, "Cash in Hand", account.TypeAsset)
	sales := account.NewAccount(account.CodeSales, "Sales", account.TypeIncome)
	receivable := account.NewAccount(account.CodeAccountsReceivable, "Accounts Receivable", account.TypeAsset)

	repo := newFakeEntryRepo()
	accounts := newFakeAccountRepo(cash, sales, receivable)

	svc := NewService(
		repo,
		accounts,
		numerator.NewMemoryAllocator(),
		staticPrefix("MUM"),
		security.OpenPolicy{},
		noopTxManager{},
	)

	ctx := tenant.WithScope(context.Background(), tenant.Scope{TenantID: id.New()})

	return &fixture{
		svc:        svc,
		repo:       repo,
		accounts:   accounts,
		cash:       cash,
		sales:      sales,
		receivable: receivable,
		branchID:   id.New(),
		ctx:        ctx,
	}
}

func (f *fixture) draft(lines func(e *JournalEntry)) *JournalEntry {
	e := NewJournalEntry(f.branchID, time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC))
	lines(e)
	return e
}

// --- tests ---

func TestService_CreateDraft_HasNoBalanceEffect(t *testing.T) {
	f := newFixture(t)

	e := f.draft(func(e *JournalEntry) {
		e.Debit(f.cash.ID, m("500"))
		e.Credit(f.sales.ID, m("500"))
	})

	require.NoError(t, f.svc.CreateDraft(f.ctx, e))
	assert.True(t, f.cash.Balance.IsZero())
	assert.True(t, f.sales.Balance.IsZero())

	stored, err := f.svc.GetByID(f.ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, stored.Status)
	assert.Empty(t, stored.Number)
}

func TestService_CreateDraft_RejectsUnbalanced(t *testing.T) {
	f := newFixture(t)

	e := f.draft(func(e *JournalEntry) {
		e.Debit(f.cash.ID, m("500"))
		e.Credit(f.sales.ID, m("300"))
	})

	err := f.svc.CreateDraft(f.ctx, e)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeUnbalancedEntry, apperror.GetCode(err))
}

func TestService_Post_AppliesBalanceDeltas(t *testing.T) {
	f := newFixture(t)

	e := f.draft(func(e *JournalEntry) {
		e.Debit(f.cash.ID, m("500"))
		e.Debit(f.receivable.ID, m("100"))
		e.Credit(f.sales.ID, m("600"))
	})
	require.NoError(t, f.svc.CreateDraft(f.ctx, e))

	posted, err := f.svc.Post(f.ctx, e.ID)
	require.NoError(t, err)

	assert.Equal(t, StatusPosted, posted.Status)
	assert.NotEmpty(t, posted.Number)
	assert.Contains(t, posted.Number, "MUM-JV-")

	// Asset accounts grow on debit, income on credit
	assert.True(t, f.cash.Balance.Equal(m("500")), "cash = %s", f.cash.Balance)
	assert.True(t, f.receivable.Balance.Equal(m("100")))
	assert.True(t, f.sales.Balance.Equal(m("600")))
}

func TestService_Post_MixedMovementOnOneAccount(t *testing.T) {
	f := newFixture(t)

	// debit 500 and credit 200 against the same asset account nets to +300
	e := f.draft(func(e *JournalEntry) {
		e.Debit(f.cash.ID, m("500"))
		e.Credit(f.cash.ID, m("200"))
		e.Credit(f.sales.ID, m("300"))
	})
	require.NoError(t, f.svc.CreateDraft(f.ctx, e))

	_, err := f.svc.Post(f.ctx, e.ID)
	require.NoError(t, err)

	assert.True(t, f.cash.Balance.Equal(m("300")), "cash = %s", f.cash.Balance)
	assert.True(t, f.sales.Balance.Equal(m("300")))
}

func TestService_Post_TwiceFails(t *testing.T) {
	f := newFixture(t)

	e := f.draft(func(e *JournalEntry) {
		e.Debit(f.cash.ID, m("100"))
		e.Credit(f.sales.ID, m("100"))
	})
	require.NoError(t, f.svc.CreateDraft(f.ctx, e))

	_, err := f.svc.Post(f.ctx, e.ID)
	require.NoError(t, err)

	_, err = f.svc.Post(f.ctx, e.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeDocumentPosted, apperror.GetCode(err))

	// Balances unchanged by the failed second post
	assert.True(t, f.cash.Balance.Equal(m("100")))
}

func TestService_Post_UnknownAccount(t *testing.T) {
	f := newFixture(t)

	e := f.draft(func(e *JournalEntry) {
		e.Debit(id.New(), m("100"))
		e.Credit(f.sales.ID, m("100"))
	})
	require.NoError(t, f.svc.CreateDraft(f.ctx, e))

	_, err := f.svc.Post(f.ctx, e.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))
}

func TestService_Post_ClosedPeriod(t *testing.T) {
	f := newFixture(t)
	f.svc.policy = security.NewStrictPolicy(time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC))

	e := f.draft(func(e *JournalEntry) {
		e.Debit(f.cash.ID, m("100"))
		e.Credit(f.sales.ID, m("100"))
	})
	require.NoError(t, f.svc.CreateDraft(f.ctx, e))

	_, err := f.svc.Post(f.ctx, e.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.CodePeriodClosed, apperror.GetCode(err))
	assert.True(t, f.cash.Balance.IsZero())
}

func TestService_Cancel_PostedEntryPostsReversal(t *testing.T) {
	f := newFixture(t)

	e := f.draft(func(e *JournalEntry) {
		e.Debit(f.cash.ID, m("250"))
		e.Credit(f.sales.ID, m("250"))
	})
	require.NoError(t, f.svc.CreateDraft(f.ctx, e))
	_, err := f.svc.Post(f.ctx, e.ID)
	require.NoError(t, err)

	reversal, err := f.svc.Cancel(f.ctx, e.ID)
	require.NoError(t, err)
	require.NotNil(t, reversal)

	// Reversal mirrors the lines and restores balances
	assert.Equal(t, SourceReversal, reversal.SourceType)
	require.NotNil(t, reversal.ReversalOf)
	assert.Equal(t, e.ID, *reversal.ReversalOf)
	assert.True(t, f.cash.Balance.IsZero(), "cash = %s", f.cash.Balance)
	assert.True(t, f.sales.Balance.IsZero(), "sales = %s", f.sales.Balance)

	original, err := f.svc.GetByID(f.ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, original.Status)
}

func TestService_Cancel_Draft(t *testing.T) {
	f := newFixture(t)

	e := f.draft(func(e *JournalEntry) {
		e.Debit(f.cash.ID, m("50"))
		e.Credit(f.sales.ID, m("50"))
	})
	require.NoError(t, f.svc.CreateDraft(f.ctx, e))

	reversal, err := f.svc.Cancel(f.ctx, e.ID)
	require.NoError(t, err)
	assert.Nil(t, reversal)

	stored, err := f.svc.GetByID(f.ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, stored.Status)
}

func TestService_Cancel_AlreadyCancelled(t *testing.T) {
	f := newFixture(t)

	e := f.draft(func(e *JournalEntry) {
		e.Debit(f.cash.ID, m("50"))
		e.Credit(f.sales.ID, m("50"))
	})
	require.NoError(t, f.svc.CreateDraft(f.ctx, e))
	_, err := f.svc.Cancel(f.ctx, e.ID)
	require.NoError(t, err)

	_, err = f.svc.Cancel(f.ctx, e.ID)
	require.Error(t, err)
	assert.Equal(t, "ENTRY_CANCELLED", apperror.GetCode(err))
}

func TestService_UpdateDraft_RejectsPosted(t *testing.T) {
	f := newFixture(t)

	e := f.draft(func(e *JournalEntry) {
		e.Debit(f.cash.ID, m("75"))
		e.Credit(f.sales.ID, m("75"))
	})
	require.NoError(t, f.svc.CreateDraft(f.ctx, e))
	_, err := f.svc.Post(f.ctx, e.ID)
	require.NoError(t, err)

	e.Narration = strPtr("edited")
	err = f.svc.UpdateDraft(f.ctx, e)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeDocumentPosted, apperror.GetCode(err))
}

func TestService_VoucherNumbersAreSequential(t *testing.T) {
	f := newFixture(t)

	var numbers []string
	for range 3 {
		e := f.draft(func(e *JournalEntry) {
			e.Debit(f.cash.ID, m("10"))
			e.Credit(f.sales.ID, m("10"))
		})
		require.NoError(t, f.svc.CreateDraft(f.ctx, e))
		posted, err := f.svc.Post(f.ctx, e.ID)
		require.NoError(t, err)
		numbers = append(numbers, posted.Number)
	}

	assert.Equal(t, []string{"MUM-JV-0001/24", "MUM-JV-0002/24", "MUM-JV-0003/24"}, numbers)
}

func strPtr(s string) *string { return &s }

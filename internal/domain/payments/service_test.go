package payments

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
	"finbooks/internal/domain/ledger"
	cpledger "finbooks/internal/domain/registers/counterparty"
)

func m(s string) types.Money { return types.MustMoney(s) }

// --- in-memory fakes ---

type noopTxManager struct{}

func (noopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type staticPrefix string

func (p staticPrefix) NumberPrefix(ctx context.Context, branchID id.ID) (string, error) {
	return string(p), nil
}

type fakePaymentRepo struct {
	payments map[id.ID]*Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[id.ID]*Payment)}
}

func (r *fakePaymentRepo) Create(ctx context.Context, p *Payment) error {
	cp := *p
	cp.Allocations = append([]Allocation(nil), p.Allocations...)
	r.payments[p.ID] = &cp
	return nil
}

func (r *fakePaymentRepo) GetByID(ctx context.Context, paymentID id.ID) (*Payment, error) {
	p, ok := r.payments[paymentID]
	if !ok {
		return nil, apperror.NewNotFound("payment", paymentID.String())
	}
	cp := *p
	cp.Allocations = append([]Allocation(nil), p.Allocations...)
	return &cp, nil
}

func (r *fakePaymentRepo) GetForUpdate(ctx context.Context, paymentID id.ID) (*Payment, error) {
	return r.GetByID(ctx, paymentID)
}

func (r *fakePaymentRepo) MarkCancelled(ctx context.Context, p *Payment) error {
	stored, ok := r.payments[p.ID]
	if !ok {
		return apperror.NewNotFound("payment", p.ID.String())
	}
	if stored.Version != p.Version {
		return apperror.NewConcurrentModification("payment", p.ID)
	}
	stored.Cancelled = true
	stored.Version++
	p.Cancelled = true
	p.Version++
	return nil
}

func (r *fakePaymentRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Payment], error) {
	var out []*Payment
	for _, p := range r.payments {
		out = append(out, p)
	}
	return domain.ListResult[*Payment]{Items: out, TotalCount: int64(len(out))}, nil
}

type fakeAdvanceStore struct {
	balances map[id.ID]types.Money
}

func newFakeAdvanceStore() *fakeAdvanceStore {
	return &fakeAdvanceStore{balances: make(map[id.ID]types.Money)}
}

func (s *fakeAdvanceStore) BalanceForUpdate(ctx context.Context, counterpartyID id.ID) (types.Money, error) {
	return s.balances[counterpartyID], nil
}

func (s *fakeAdvanceStore) Balance(ctx context.Context, counterpartyID id.ID) (types.Money, error) {
	return s.balances[counterpartyID], nil
}

func (s *fakeAdvanceStore) Add(ctx context.Context, counterpartyID id.ID, delta types.Money) error {
	s.balances[counterpartyID] = s.balances[counterpartyID].Add(delta)
	return nil
}

type fakeDocumentPort struct {
	docs map[id.ID]*OpenDocument
}

func newFakeDocumentPort(docs ...*OpenDocument) *fakeDocumentPort {
	p := &fakeDocumentPort{docs: make(map[id.ID]*OpenDocument)}
	for _, d := range docs {
		p.docs[d.ID] = d
	}
	return p
}

func (p *fakeDocumentPort) GetOpenForUpdate(ctx context.Context, documentID id.ID) (*OpenDocument, error) {
	d, ok := p.docs[documentID]
	if !ok {
		return nil, apperror.NewNotFound("document", documentID.String())
	}
	cp := *d
	return &cp, nil
}

func (p *fakeDocumentPort) ApplyPayment(ctx context.Context, documentID id.ID, delta types.Money) error {
	d, ok := p.docs[documentID]
	if !ok {
		return apperror.NewNotFound("document", documentID.String())
	}
	d.PaidAmount = d.PaidAmount.Add(delta)
	d.BalanceAmount = d.TotalAmount.Sub(d.PaidAmount)
	return nil
}

type fakeRegisterRepo struct {
	entries []cpledger.LedgerEntry
}

func (r *fakeRegisterRepo) Append(ctx context.Context, entry *cpledger.LedgerEntry) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeRegisterRepo) latest(counterpartyID id.ID) (types.Money, bool) {
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].CounterpartyID == counterpartyID {
			return r.entries[i].Balance, true
		}
	}
	return types.Zero(), false
}

func (r *fakeRegisterRepo) LatestBalanceForUpdate(ctx context.Context, counterpartyID id.ID) (types.Money, bool, error) {
	b, ok := r.latest(counterpartyID)
	return b, ok, nil
}

func (r *fakeRegisterRepo) LatestBalance(ctx context.Context, counterpartyID id.ID) (types.Money, bool, error) {
	b, ok := r.latest(counterpartyID)
	return b, ok, nil
}

func (r *fakeRegisterRepo) Statement(ctx context.Context, counterpartyID id.ID, from, to time.Time, limit, offset int) ([]cpledger.LedgerEntry, error) {
	var out []cpledger.LedgerEntry
	for _, e := range r.entries {
		if e.CounterpartyID == counterpartyID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeRegisterRepo) FindBySource(ctx context.Context, sourceType cpledger.SourceType, sourceID id.ID) ([]cpledger.LedgerEntry, error) {
	var out []cpledger.LedgerEntry
	for _, e := range r.entries {
		if e.SourceType == sourceType && e.SourceID == sourceID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeEntryRepo struct {
	entries map[id.ID]*ledger.JournalEntry
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{entries: make(map[id.ID]*ledger.JournalEntry)}
}

func (r *fakeEntryRepo) CreateEntry(ctx context.Context, e *ledger.JournalEntry) error {
	cp := *e
	cp.Lines = append([]ledger.JournalLine(nil), e.Lines...)
	r.entries[e.ID] = &cp
	return nil
}

func (r *fakeEntryRepo) GetByID(ctx context.Context, entryID id.ID) (*ledger.JournalEntry, error) {
	e, ok := r.entries[entryID]
	if !ok {
		return nil, apperror.NewNotFound("journal_entry", entryID.String())
	}
	cp := *e
	cp.Lines = append([]ledger.JournalLine(nil), e.Lines...)
	return &cp, nil
}

func (r *fakeEntryRepo) GetForUpdate(ctx context.Context, entryID id.ID) (*ledger.JournalEntry, error) {
	return r.GetByID(ctx, entryID)
}

func (r *fakeEntryRepo) ReplaceLines(ctx context.Context, e *ledger.JournalEntry) error {
	stored, ok := r.entries[e.ID]
	if !ok {
		return apperror.NewNotFound("journal_entry", e.ID.String())
	}
	stored.Lines = append([]ledger.JournalLine(nil), e.Lines...)
	return nil
}

func (r *fakeEntryRepo) UpdateHeader(ctx context.Context, e *ledger.JournalEntry) error {
	stored, ok := r.entries[e.ID]
	if !ok {
		return apperror.NewNotFound("journal_entry", e.ID.String())
	}
	lines := stored.Lines
	*stored = *e
	stored.Lines = lines
	return nil
}

func (r *fakeEntryRepo) Transition(ctx context.Context, e *ledger.JournalEntry, from, to ledger.Status) error {
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

func (r *fakeEntryRepo) List(ctx context.Context, filter ledger.EntryFilter) (domain.ListResult[*ledger.JournalEntry], error) {
	return domain.ListResult[*ledger.JournalEntry]{}, nil
}

func (r *fakeEntryRepo) FindBySource(ctx context.Context, st ledger.SourceType, sourceID id.ID) ([]*ledger.JournalEntry, error) {
	var out []*ledger.JournalEntry
	for _, e := range r.entries {
		if e.SourceType == st && e.SourceID != nil && *e.SourceID == sourceID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) AccountTurnover(ctx context.Context, from, to time.Time) ([]ledger.AccountMovement, error) {
	return nil, nil
}

func (r *fakeEntryRepo) AccountActivity(ctx context.Context, accountID id.ID, from, to time.Time) ([]ledger.ActivityLine, error) {
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

// --- fixture ---

type fixture struct {
	svc      *Service
	repo     *fakePaymentRepo
	advances *fakeAdvanceStore
	docs     *fakeDocumentPort
	register *fakeRegisterRepo
	journal  *fakeEntryRepo

	cash       *account.Account
	bank       *account.Account
	receivable *account.Account
	payable    *account.Account
	custAdv    *account.Account
	vendAdv    *account.Account

	customerID id.ID
	branchID   id.ID
	invoice    *OpenDocument
	ctx        context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repo:       newFakePaymentRepo(),
		advances:   newFakeAdvanceStore(),
		register:   &fakeRegisterRepo{},
		journal:    newFakeEntryRepo(),
		cash:       account.NewAccount(account.CodeCash, "Cash in Hand", account.TypeAsset),
		bank:       account.NewAccount(account.CodeBank, "Bank", account.TypeAsset),
		receivable: account.NewAccount(account.CodeAccountsReceivable, "Accounts Receivable", account.TypeAsset),
		payable:    account.NewAccount(account.CodeAccountsPayable, "Accounts Payable", account.TypeLiability),
		custAdv:    account.NewAccount(account.CodeCustomerAdvances, "Customer Advances", account.TypeLiability),
		vendAdv:    account.NewAccount(account.CodeVendorAdvances, "Vendor Advances", account.TypeAsset),
		customerID: id.New(),
		branchID:   id.New(),
	}

	f.invoice = &OpenDocument{
		ID:             id.New(),
		Number:         "MUM-INV-0001/24",
		CounterpartyID: f.customerID,
		TotalAmount:    m("1000"),
		PaidAmount:     types.Zero(),
		BalanceAmount:  m("1000"),
		Receivable:     true,
	}
	f.docs = newFakeDocumentPort(f.invoice)

	accounts := newFakeAccountRepo(f.cash, f.bank, f.receivable, f.payable, f.custAdv, f.vendAdv)

	journalSvc := ledger.NewService(
		f.journal,
		accounts,
		numerator.NewMemoryAllocator(),
		staticPrefix("MUM"),
		security.OpenPolicy{},
		noopTxManager{},
	)

	f.svc = NewService(
		f.repo,
		f.advances,
		f.docs,
		cpledger.NewService(f.register),
		journalSvc,
		accounts,
		numerator.NewMemoryAllocator(),
		staticPrefix("MUM"),
		noopTxManager{},
	)

	f.ctx = tenant.WithScope(context.Background(), tenant.Scope{TenantID: id.New()})
	return f
}

func (f *fixture) cmd(amount string, allocs ...AllocationRequest) RecordPaymentCommand {
	return RecordPaymentCommand{
		BranchID:       f.branchID,
		CounterpartyID: f.customerID,
		Direction:      DirectionInbound,
		Method:         MethodBank,
		Amount:         m(amount),
		Date:           time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
		Allocations:    allocs,
	}
}

// --- tests ---

func TestService_RecordPayment_FullSettlement(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.RecordPayment(f.ctx, f.cmd("1000",
		AllocationRequest{DocumentID: f.invoice.ID, Amount: m("1000")},
	))
	require.NoError(t, err)

	assert.True(t, f.invoice.BalanceAmount.IsZero(), "balance = %s", f.invoice.BalanceAmount)
	assert.True(t, f.invoice.PaidAmount.Equal(m("1000")))

	assert.True(t, p.AllocatedAmount.Equal(m("1000")))
	assert.True(t, p.UnallocatedAmount.IsZero())
	assert.Equal(t, "MUM-INV-0001/24", p.Allocations[0].DocumentNumber)
	assert.Contains(t, p.Number, "MUM-RCT-")

	// One aggregate movement on the counterparty ledger: credit 1000
	movements, err := f.register.FindBySource(f.ctx, cpledger.SourcePayment, p.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.True(t, movements[0].Credit.Equal(m("1000")))
	assert.True(t, movements[0].Balance.Equal(m("-1000")))

	// Dr Bank 1000 / Cr Receivable 1000
	assert.True(t, f.bank.Balance.Equal(m("1000")), "bank = %s", f.bank.Balance)
	assert.True(t, f.receivable.Balance.Equal(m("-1000")), "ar = %s", f.receivable.Balance)
	assert.True(t, f.custAdv.Balance.IsZero())
}

func TestService_RecordPayment_OverpaymentBecomesAdvance(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.RecordPayment(f.ctx, f.cmd("1500",
		AllocationRequest{DocumentID: f.invoice.ID, Amount: m("1000")},
	))
	require.NoError(t, err)

	assert.True(t, f.invoice.BalanceAmount.IsZero())
	assert.True(t, p.AllocatedAmount.Equal(m("1000")))
	assert.True(t, p.UnallocatedAmount.Equal(m("500")))

	adv, err := f.advances.Balance(f.ctx, f.customerID)
	require.NoError(t, err)
	assert.True(t, adv.Equal(m("500")), "advance = %s", adv)

	// Dr Bank 1500 / Cr Receivable 1000 / Cr Customer Advances 500
	assert.True(t, f.bank.Balance.Equal(m("1500")))
	assert.True(t, f.receivable.Balance.Equal(m("-1000")))
	assert.True(t, f.custAdv.Balance.Equal(m("500")), "custAdv = %s", f.custAdv.Balance)
}

func TestService_RecordPayment_OverAllocationRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RecordPayment(f.ctx, f.cmd("1200",
		AllocationRequest{DocumentID: f.invoice.ID, Amount: m("1200")},
	))
	require.Error(t, err)
	assert.Equal(t, apperror.CodeOverAllocation, apperror.GetCode(err))

	assert.Empty(t, f.repo.payments)
	assert.Empty(t, f.register.entries)
	assert.True(t, f.bank.Balance.IsZero())
}

func TestService_RecordPayment_NoAllocationsIsPureAdvance(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.RecordPayment(f.ctx, f.cmd("800"))
	require.NoError(t, err)

	assert.True(t, p.AllocatedAmount.IsZero())
	assert.True(t, p.UnallocatedAmount.Equal(m("800")))

	adv, err := f.advances.Balance(f.ctx, f.customerID)
	require.NoError(t, err)
	assert.True(t, adv.Equal(m("800")))

	// Dr Bank 800 / Cr Customer Advances 800
	assert.True(t, f.bank.Balance.Equal(m("800")))
	assert.True(t, f.custAdv.Balance.Equal(m("800")))
	assert.True(t, f.invoice.BalanceAmount.Equal(m("1000")))
}

func TestService_RecordPayment_DrawsDownExistingAdvance(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.advances.Add(f.ctx, f.customerID, m("500")))

	cmd := f.cmd("500", AllocationRequest{DocumentID: f.invoice.ID, Amount: m("1000")})
	cmd.UseAdvance = true

	p, err := f.svc.RecordPayment(f.ctx, cmd)
	require.NoError(t, err)

	assert.True(t, p.AdvanceUsed.Equal(m("500")))
	assert.True(t, p.AllocatedAmount.Equal(m("500")))
	assert.True(t, p.UnallocatedAmount.IsZero())
	assert.True(t, f.invoice.BalanceAmount.IsZero())

	adv, err := f.advances.Balance(f.ctx, f.customerID)
	require.NoError(t, err)
	assert.True(t, adv.IsZero(), "advance = %s", adv)

	// The drawdown is a separate, balance-neutral ledger movement
	drawdowns, err := f.register.FindBySource(f.ctx, cpledger.SourceAdvance, p.ID)
	require.NoError(t, err)
	require.Len(t, drawdowns, 1)
	assert.True(t, drawdowns[0].Debit.Equal(m("500")))
	assert.True(t, drawdowns[0].Credit.Equal(m("500")))

	// Receivable clears for the full allocation: 500 fresh + 500 from advance
	assert.True(t, f.receivable.Balance.Equal(m("-1000")), "ar = %s", f.receivable.Balance)
}

func TestService_RecordPayment_AllocationsExceedFunds(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RecordPayment(f.ctx, f.cmd("400",
		AllocationRequest{DocumentID: f.invoice.ID, Amount: m("700")},
	))
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))
	assert.True(t, f.invoice.BalanceAmount.Equal(m("1000")))
}

func TestService_RecordPayment_WrongCounterparty(t *testing.T) {
	f := newFixture(t)

	cmd := f.cmd("100", AllocationRequest{DocumentID: f.invoice.ID, Amount: m("100")})
	cmd.CounterpartyID = id.New()

	_, err := f.svc.RecordPayment(f.ctx, cmd)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))
}

func TestService_RecordPayment_DirectionMismatch(t *testing.T) {
	f := newFixture(t)
	f.invoice.Receivable = false // a vendor bill cannot absorb an inbound receipt

	_, err := f.svc.RecordPayment(f.ctx, f.cmd("100",
		AllocationRequest{DocumentID: f.invoice.ID, Amount: m("100")},
	))
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))
}

func TestService_RecordPayment_Outbound(t *testing.T) {
	f := newFixture(t)

	vendorID := id.New()
	bill := &OpenDocument{
		ID:             id.New(),
		Number:         "MUM-BIL-0001/24",
		CounterpartyID: vendorID,
		TotalAmount:    m("700"),
		PaidAmount:     types.Zero(),
		BalanceAmount:  m("700"),
		Receivable:     false,
	}
	f.docs.docs[bill.ID] = bill

	cmd := f.cmd("700", AllocationRequest{DocumentID: bill.ID, Amount: m("700")})
	cmd.CounterpartyID = vendorID
	cmd.Direction = DirectionOutbound

	p, err := f.svc.RecordPayment(f.ctx, cmd)
	require.NoError(t, err)

	assert.Contains(t, p.Number, "MUM-PAY-")
	assert.True(t, bill.BalanceAmount.IsZero())

	// Dr Payable 700 / Cr Bank 700
	assert.True(t, f.payable.Balance.Equal(m("-700")), "ap = %s", f.payable.Balance)
	assert.True(t, f.bank.Balance.Equal(m("-700")))

	// Outbound money debits the vendor's running ledger
	movements, err := f.register.FindBySource(f.ctx, cpledger.SourcePayment, p.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.True(t, movements[0].Debit.Equal(m("700")))
}

func TestService_CancelPayment_RestoresEverything(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.RecordPayment(f.ctx, f.cmd("1500",
		AllocationRequest{DocumentID: f.invoice.ID, Amount: m("1000")},
	))
	require.NoError(t, err)

	require.NoError(t, f.svc.CancelPayment(f.ctx, p.ID))

	assert.True(t, f.invoice.BalanceAmount.Equal(m("1000")), "balance = %s", f.invoice.BalanceAmount)
	assert.True(t, f.invoice.PaidAmount.IsZero())

	adv, err := f.advances.Balance(f.ctx, f.customerID)
	require.NoError(t, err)
	assert.True(t, adv.IsZero(), "advance = %s", adv)

	stored, err := f.svc.GetByID(f.ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.Cancelled)

	// Counterparty ledger compensates instead of deleting
	bal, ok, err := cpledger.NewService(f.register).Balance(f.ctx, f.customerID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, bal.IsZero(), "balance = %s", bal)

	// Journal reversed, accounts back to zero
	assert.True(t, f.bank.Balance.IsZero(), "bank = %s", f.bank.Balance)
	assert.True(t, f.receivable.Balance.IsZero())
	assert.True(t, f.custAdv.Balance.IsZero())
}

func TestService_CancelPayment_Twice(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.RecordPayment(f.ctx, f.cmd("200"))
	require.NoError(t, err)

	require.NoError(t, f.svc.CancelPayment(f.ctx, p.ID))
	err = f.svc.CancelPayment(f.ctx, p.ID)
	require.Error(t, err)
	assert.Equal(t, "PAYMENT_CANCELLED", apperror.GetCode(err))
}

func TestService_CancelPayment_AdvanceAlreadyConsumed(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.RecordPayment(f.ctx, f.cmd("1500",
		AllocationRequest{DocumentID: f.invoice.ID, Amount: m("1000")},
	))
	require.NoError(t, err)

	// Another process spent the advance before the cancellation
	require.NoError(t, f.advances.Add(f.ctx, f.customerID, m("-500")))

	err = f.svc.CancelPayment(f.ctx, p.ID)
	require.Error(t, err)
	assert.Equal(t, "ADVANCE_CONSUMED", apperror.GetCode(err))
}

func TestService_ReceiptNumbersAreSequential(t *testing.T) {
	f := newFixture(t)

	var numbers []string
	for range 3 {
		p, err := f.svc.RecordPayment(f.ctx, f.cmd("100"))
		require.NoError(t, err)
		numbers = append(numbers, p.Number)
	}

	assert.Equal(t, []string{"MUM-RCT-0001/24", "MUM-RCT-0002/24", "MUM-RCT-0003/24"}, numbers)
}

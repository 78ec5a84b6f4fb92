package trade

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
	"finbooks/internal/domain/catalogs/counterparty"
	"finbooks/internal/domain/credit"
	"finbooks/internal/domain/ledger"
	cpledger "finbooks/internal/domain/registers/counterparty"
	"finbooks/internal/domain/registers/stock"
)

// --- in-memory fakes ---

type noopTxManager struct{}

func (noopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type staticPrefix string

func (p staticPrefix) NumberPrefix(ctx context.Context, branchID id.ID) (string, error) {
	return string(p), nil
}

type fakeTradeRepo struct {
	docs map[id.ID]*TradeDocument
}

func newFakeTradeRepo() *fakeTradeRepo {
	return &fakeTradeRepo{docs: make(map[id.ID]*TradeDocument)}
}

func (r *fakeTradeRepo) Create(ctx context.Context, d *TradeDocument) error {
	cp := *d
	cp.Lines = append([]Line(nil), d.Lines...)
	r.docs[d.ID] = &cp
	return nil
}

func (r *fakeTradeRepo) GetByID(ctx context.Context, documentID id.ID) (*TradeDocument, error) {
	d, ok := r.docs[documentID]
	if !ok {
		return nil, apperror.NewNotFound("document", documentID.String())
	}
	cp := *d
	cp.Lines = append([]Line(nil), d.Lines...)
	return &cp, nil
}

func (r *fakeTradeRepo) GetForUpdate(ctx context.Context, documentID id.ID) (*TradeDocument, error) {
	return r.GetByID(ctx, documentID)
}

func (r *fakeTradeRepo) UpdateHeader(ctx context.Context, d *TradeDocument) error {
	stored, ok := r.docs[d.ID]
	if !ok {
		return apperror.NewNotFound("document", d.ID.String())
	}
	if stored.Version != d.Version {
		return apperror.NewConcurrentModification("document", d.ID)
	}
	lines := stored.Lines
	*stored = *d
	stored.Lines = lines
	stored.Version++
	d.Version++
	return nil
}

func (r *fakeTradeRepo) ApplyPayment(ctx context.Context, documentID id.ID, delta types.Money) error {
	d, ok := r.docs[documentID]
	if !ok {
		return apperror.NewNotFound("document", documentID.String())
	}
	d.PaidAmount = d.PaidAmount.Add(delta)
	d.RefreshPaymentStatus()
	return nil
}

func (r *fakeTradeRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*TradeDocument], error) {
	var out []*TradeDocument
	for _, d := range r.docs {
		if filter.Type != nil && d.Type != *filter.Type {
			continue
		}
		out = append(out, d)
	}
	return domain.ListResult[*TradeDocument]{Items: out, TotalCount: int64(len(out))}, nil
}

func (r *fakeTradeRepo) UnpaidReceivableTotal(ctx context.Context, counterpartyID id.ID) (types.Money, error) {
	total := types.Zero()
	for _, d := range r.docs {
		if d.CounterpartyID == counterpartyID && d.Posted && !d.Cancelled && d.Receivable() {
			total = total.Add(d.BalanceAmount)
		}
	}
	return total, nil
}

type fakeCounterpartyRepo struct {
	parties map[id.ID]*counterparty.Counterparty
}

func (r *fakeCounterpartyRepo) Create(ctx context.Context, cp *counterparty.Counterparty) error {
	r.parties[cp.ID] = cp
	return nil
}

func (r *fakeCounterpartyRepo) GetByID(ctx context.Context, cpID id.ID) (*counterparty.Counterparty, error) {
	cp, ok := r.parties[cpID]
	if !ok {
		return nil, apperror.NewNotFound("counterparty", cpID.String())
	}
	return cp, nil
}

func (r *fakeCounterpartyRepo) GetByCode(ctx context.Context, code string) (*counterparty.Counterparty, error) {
	return nil, apperror.NewNotFound("counterparty", code)
}

func (r *fakeCounterpartyRepo) Update(ctx context.Context, cp *counterparty.Counterparty) error {
	r.parties[cp.ID] = cp
	return nil
}

func (r *fakeCounterpartyRepo) SetDeletionMark(ctx context.Context, cpID id.ID, marked bool) error {
	return nil
}

func (r *fakeCounterpartyRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*counterparty.Counterparty], error) {
	return domain.ListResult[*counterparty.Counterparty]{}, nil
}

func (r *fakeCounterpartyRepo) Exists(ctx context.Context, cpID id.ID) (bool, error) {
	_, ok := r.parties[cpID]
	return ok, nil
}

func (r *fakeCounterpartyRepo) FindByGSTIN(ctx context.Context, gstin string) (*counterparty.Counterparty, error) {
	return nil, apperror.NewNotFound("counterparty", gstin)
}

func (r *fakeCounterpartyRepo) GetForUpdate(ctx context.Context, cpID id.ID) (*counterparty.Counterparty, error) {
	return r.GetByID(ctx, cpID)
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
	return nil, nil
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

type fakeStockRepo struct {
	intents []stock.Intent
}

func (r *fakeStockRepo) CreateIntents(ctx context.Context, intents []stock.Intent) error {
	r.intents = append(r.intents, intents...)
	return nil
}

func (r *fakeStockRepo) GetByRecorder(ctx context.Context, recorderID id.ID) ([]stock.Intent, error) {
	var out []stock.Intent
	for _, i := range r.intents {
		if i.RecorderID == recorderID && !i.Reversed {
			out = append(out, i)
		}
	}
	return out, nil
}

func (r *fakeStockRepo) MarkReversed(ctx context.Context, recorderID id.ID) error {
	for idx := range r.intents {
		if r.intents[idx].RecorderID == recorderID {
			r.intents[idx].Reversed = true
		}
	}
	return nil
}

func (r *fakeStockRepo) History(ctx context.Context, itemID id.ID, from, to time.Time, limit, offset int) ([]stock.Intent, error) {
	return nil, nil
}

// --- fixture ---

type fixture struct {
	svc      *Service
	repo     *fakeTradeRepo
	register *fakeRegisterRepo
	journal  *fakeEntryRepo
	stock    *fakeStockRepo
	accounts map[string]*account.Account

	customer *counterparty.Counterparty
	itemID   id.ID
	branchID id.ID
	ctx      context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	chart := []*account.Account{
		account.NewAccount(account.CodeCash, "Cash in Hand", account.TypeAsset),
		account.NewAccount(account.CodeBank, "Bank", account.TypeAsset),
		account.NewAccount(account.CodeAccountsReceivable, "Accounts Receivable", account.TypeAsset),
		account.NewAccount(account.CodeAccountsPayable, "Accounts Payable", account.TypeLiability),
		account.NewAccount(account.CodeCGSTPayable, "CGST Payable", account.TypeLiability),
		account.NewAccount(account.CodeSGSTPayable, "SGST Payable", account.TypeLiability),
		account.NewAccount(account.CodeIGSTPayable, "IGST Payable", account.TypeLiability),
		account.NewAccount(account.CodeSales, "Sales", account.TypeIncome),
		account.NewAccount(account.CodeSalesReturns, "Sales Returns", account.TypeIncome),
		account.NewAccount(account.CodePurchases, "Purchases", account.TypeExpense),
		account.NewAccount(account.CodeDiscountGiven, "Discount Given", account.TypeExpense),
		account.NewAccount(account.CodeDiscountReceived, "Discount Received", account.TypeIncome),
	}
	byCode := make(map[string]*account.Account, len(chart))
	for _, a := range chart {
		byCode[a.Code] = a
	}

	customer := counterparty.NewCounterparty("CP-0001", "Acme Traders", counterparty.TypeCustomer)

	repo := newFakeTradeRepo()
	register := &fakeRegisterRepo{}
	journal := newFakeEntryRepo()
	stockRepo := &fakeStockRepo{}
	accountRepo := newFakeAccountRepo(chart...)
	cpRepo := &fakeCounterpartyRepo{parties: map[id.ID]*counterparty.Counterparty{customer.ID: customer}}
	cpLedgerSvc := cpledger.NewService(register)

	journalSvc := ledger.NewService(
		journal,
		accountRepo,
		numerator.NewMemoryAllocator(),
		staticPrefix("MUM"),
		security.OpenPolicy{},
		noopTxManager{},
	)

	svc := NewService(
		repo,
		credit.NewController(cpRepo, cpLedgerSvc, NewPaymentBridge(repo)),
		journalSvc,
		accountRepo,
		cpLedgerSvc,
		stock.NewService(stockRepo),
		numerator.NewMemoryAllocator(),
		staticPrefix("MUM"),
		noopTxManager{},
	)

	return &fixture{
		svc:      svc,
		repo:     repo,
		register: register,
		journal:  journal,
		stock:    stockRepo,
		accounts: byCode,
		customer: customer,
		itemID:   id.New(),
		branchID: id.New(),
		ctx:      tenant.WithScope(context.Background(), tenant.Scope{TenantID: id.New()}),
	}
}

func (f *fixture) invoiceCmd() CreateDocumentCommand {
	return CreateDocumentCommand{
		Type:           TypeInvoice,
		BranchID:       f.branchID,
		CounterpartyID: f.customer.ID,
		Date:           time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
		Lines: []LineCommand{{
			ItemID:   &f.itemID,
			Quantity: m("2"),
			Rate:     m("118"),
			CGSTRate: m("9"),
			SGSTRate: m("9"),
		}},
		Issue: true,
	}
}

func (f *fixture) balance(code string) types.Money {
	return f.accounts[code].Balance
}

// --- tests ---

func TestService_CreateDocument_ComputesTotals(t *testing.T) {
	f := newFixture(t)
	cmd := f.invoiceCmd()
	cmd.Issue = false

	doc, err := f.svc.CreateDocument(f.ctx, cmd)
	require.NoError(t, err)

	// 2 x 118 inclusive of 9+9 percent: taxable 200, tax 36, total 236
	assert.True(t, doc.Subtotal.Equal(m("200")), "subtotal = %s", doc.Subtotal)
	assert.True(t, doc.CGSTAmount.Equal(m("18")))
	assert.True(t, doc.SGSTAmount.Equal(m("18")))
	assert.True(t, doc.TotalAmount.Equal(m("236")), "total = %s", doc.TotalAmount)
	assert.True(t, doc.BalanceAmount.Equal(m("236")))
	assert.Equal(t, PaymentUnpaid, doc.PaymentStatus)

	// draft: no number, no postings
	assert.False(t, doc.Posted)
	assert.Empty(t, doc.Number)
	assert.Empty(t, f.register.entries)
	assert.Empty(t, f.journal.entries)
}

func TestService_CreateDocument_ValidatesSuppliedBreakdown(t *testing.T) {
	f := newFixture(t)
	cmd := f.invoiceCmd()
	cmd.Lines[0].TaxableAmount = m("200")
	cmd.Lines[0].CGSTAmount = m("18")
	cmd.Lines[0].SGSTAmount = m("18")
	cmd.Lines[0].LineTotal = m("236")

	doc, err := f.svc.CreateDocument(f.ctx, cmd)
	require.NoError(t, err)
	assert.True(t, doc.TotalAmount.Equal(m("236")))

	// Drifted figures are rejected, not corrected
	bad := f.invoiceCmd()
	bad.Lines[0].TaxableAmount = m("150")
	bad.Lines[0].CGSTAmount = m("18")
	bad.Lines[0].SGSTAmount = m("18")
	bad.Lines[0].LineTotal = m("236")

	_, err = f.svc.CreateDocument(f.ctx, bad)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))
}

func TestService_CreateDocument_IssueInvoice(t *testing.T) {
	f := newFixture(t)

	doc, err := f.svc.CreateDocument(f.ctx, f.invoiceCmd())
	require.NoError(t, err)

	assert.True(t, doc.Posted)
	assert.Equal(t, "MUM-INV-0001/24", doc.Number)

	// Journal: Dr AR 236 / Cr Sales 200, CGST 18, SGST 18
	assert.True(t, f.balance(account.CodeAccountsReceivable).Equal(m("236")))
	assert.True(t, f.balance(account.CodeSales).Equal(m("200")))
	assert.True(t, f.balance(account.CodeCGSTPayable).Equal(m("18")))
	assert.True(t, f.balance(account.CodeSGSTPayable).Equal(m("18")))

	// Counterparty owes 236 more
	movements, err := f.register.FindBySource(f.ctx, cpledger.SourceDocument, doc.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.True(t, movements[0].Debit.Equal(m("236")))
	assert.True(t, movements[0].Balance.Equal(m("236")))

	// Stock intent: 2 units out
	intents, err := f.stock.GetByRecorder(f.ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, stock.DirectionOut, intents[0].Direction)
	assert.True(t, intents[0].Quantity.Equal(m("2")))
}

func TestService_CreateDocument_IssueBill(t *testing.T) {
	f := newFixture(t)
	cmd := f.invoiceCmd()
	cmd.Type = TypeBill

	doc, err := f.svc.CreateDocument(f.ctx, cmd)
	require.NoError(t, err)

	assert.Equal(t, "MUM-BIL-0001/24", doc.Number)

	// Journal: Dr Purchases 200, CGST 18, SGST 18 / Cr AP 236
	assert.True(t, f.balance(account.CodePurchases).Equal(m("200")))
	assert.True(t, f.balance(account.CodeAccountsPayable).Equal(m("236")))
	// Input tax debits reduce the payable balance
	assert.True(t, f.balance(account.CodeCGSTPayable).Equal(m("-18")))

	// We owe the vendor: credit movement
	movements, err := f.register.FindBySource(f.ctx, cpledger.SourceDocument, doc.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.True(t, movements[0].Credit.Equal(m("236")))

	// Goods come in
	intents, err := f.stock.GetByRecorder(f.ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, stock.DirectionIn, intents[0].Direction)
}

func TestService_CreateDocument_DocumentDiscount(t *testing.T) {
	f := newFixture(t)
	cmd := f.invoiceCmd()
	cmd.DiscountPercent = m("10")

	doc, err := f.svc.CreateDocument(f.ctx, cmd)
	require.NoError(t, err)

	// 10% off the tax-inclusive 236: discount 23.60, total 212.40
	assert.True(t, doc.DiscountAmount.Equal(m("23.60")), "discount = %s", doc.DiscountAmount)
	assert.True(t, doc.TotalAmount.Equal(m("212.40")), "total = %s", doc.TotalAmount)

	// Journal stays balanced with the discount leg
	assert.True(t, f.balance(account.CodeAccountsReceivable).Equal(m("212.40")))
	assert.True(t, f.balance(account.CodeDiscountGiven).Equal(m("23.60")))
	assert.True(t, f.balance(account.CodeSales).Equal(m("200")))
}

func TestService_CreateDocument_BillDiscountIsIncome(t *testing.T) {
	f := newFixture(t)
	cmd := f.invoiceCmd()
	cmd.Type = TypeBill
	cmd.DiscountPercent = m("10")

	doc, err := f.svc.CreateDocument(f.ctx, cmd)
	require.NoError(t, err)
	assert.True(t, doc.DiscountAmount.Equal(m("23.60")), "discount = %s", doc.DiscountAmount)

	// Dr Purchases 200, CGST 18, SGST 18 / Cr AP 212.40, Discount Received 23.60
	assert.True(t, f.balance(account.CodePurchases).Equal(m("200")))
	assert.True(t, f.balance(account.CodeAccountsPayable).Equal(m("212.40")))
	assert.True(t, f.balance(account.CodeDiscountReceived).Equal(m("23.60")))
	// A vendor discount is income earned, not an expense
	assert.True(t, f.balance(account.CodeDiscountGiven).IsZero())
}

func TestService_CreateDocument_QuotationHasNoPostings(t *testing.T) {
	f := newFixture(t)
	cmd := f.invoiceCmd()
	cmd.Type = TypeQuotation

	doc, err := f.svc.CreateDocument(f.ctx, cmd)
	require.NoError(t, err)

	assert.True(t, doc.Posted)
	assert.Equal(t, "MUM-QTN-0001/24", doc.Number)
	assert.Empty(t, f.journal.entries)
	assert.Empty(t, f.register.entries)
	assert.Empty(t, f.stock.intents)
}

func TestService_CreateDocument_CreditGate(t *testing.T) {
	f := newFixture(t)
	f.customer.CreditLimit = m("100")

	_, err := f.svc.CreateDocument(f.ctx, f.invoiceCmd())
	require.Error(t, err)
	assert.Equal(t, apperror.CodeCreditLimitExceeded, apperror.GetCode(err))

	// Gate rejects before any posting happens
	assert.Empty(t, f.journal.entries)
	assert.Empty(t, f.register.entries)
}

func TestService_CreateDocument_CreditGateOverride(t *testing.T) {
	f := newFixture(t)
	f.customer.CreditLimit = m("100")

	cmd := f.invoiceCmd()
	cmd.CreditOverride = true

	doc, err := f.svc.CreateDocument(f.ctx, cmd)
	require.NoError(t, err)
	assert.True(t, doc.Posted)
}

func TestService_CreditGate_SeesPriorInvoices(t *testing.T) {
	f := newFixture(t)
	f.customer.CreditLimit = m("400")

	_, err := f.svc.CreateDocument(f.ctx, f.invoiceCmd())
	require.NoError(t, err)

	// 236 outstanding on the ledger; another 236 breaks the 400 limit
	_, err = f.svc.CreateDocument(f.ctx, f.invoiceCmd())
	require.Error(t, err)
	assert.Equal(t, apperror.CodeCreditLimitExceeded, apperror.GetCode(err))
}

func TestService_IssueDocument_Draft(t *testing.T) {
	f := newFixture(t)
	cmd := f.invoiceCmd()
	cmd.Issue = false

	draft, err := f.svc.CreateDocument(f.ctx, cmd)
	require.NoError(t, err)

	issued, err := f.svc.IssueDocument(f.ctx, draft.ID, false)
	require.NoError(t, err)
	assert.True(t, issued.Posted)
	assert.Equal(t, "MUM-INV-0001/24", issued.Number)

	// Second issue is rejected
	_, err = f.svc.IssueDocument(f.ctx, draft.ID, false)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeDocumentPosted, apperror.GetCode(err))
}

func TestService_SequentialNumbersPerType(t *testing.T) {
	f := newFixture(t)

	var numbers []string
	for range 3 {
		doc, err := f.svc.CreateDocument(f.ctx, f.invoiceCmd())
		require.NoError(t, err)
		numbers = append(numbers, doc.Number)
	}
	assert.Equal(t, []string{"MUM-INV-0001/24", "MUM-INV-0002/24", "MUM-INV-0003/24"}, numbers)

	// A different type starts its own series
	cmd := f.invoiceCmd()
	cmd.Type = TypeBill
	bill, err := f.svc.CreateDocument(f.ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, "MUM-BIL-0001/24", bill.Number)
}

func TestService_CancelDocument(t *testing.T) {
	f := newFixture(t)

	doc, err := f.svc.CreateDocument(f.ctx, f.invoiceCmd())
	require.NoError(t, err)

	require.NoError(t, f.svc.CancelDocument(f.ctx, doc.ID))

	stored, err := f.svc.GetByID(f.ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, stored.Cancelled)

	// Journal reversed: all accounts restored
	assert.True(t, f.balance(account.CodeAccountsReceivable).IsZero())
	assert.True(t, f.balance(account.CodeSales).IsZero())

	// Counterparty ledger compensated back to zero
	bal, ok, err := f.register.LatestBalance(f.ctx, f.customer.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, bal.IsZero(), "balance = %s", bal)

	// Stock intents reversed
	open, err := f.stock.GetByRecorder(f.ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestService_CancelDocument_Twice(t *testing.T) {
	f := newFixture(t)

	doc, err := f.svc.CreateDocument(f.ctx, f.invoiceCmd())
	require.NoError(t, err)

	require.NoError(t, f.svc.CancelDocument(f.ctx, doc.ID))
	err = f.svc.CancelDocument(f.ctx, doc.ID)
	require.Error(t, err)
	assert.Equal(t, "DOCUMENT_CANCELLED", apperror.GetCode(err))
}

func TestService_CancelDocument_WithSettlements(t *testing.T) {
	f := newFixture(t)

	doc, err := f.svc.CreateDocument(f.ctx, f.invoiceCmd())
	require.NoError(t, err)

	require.NoError(t, f.repo.ApplyPayment(f.ctx, doc.ID, m("100")))

	err = f.svc.CancelDocument(f.ctx, doc.ID)
	require.Error(t, err)
	assert.Equal(t, "DOCUMENT_SETTLED", apperror.GetCode(err))
}

func TestPaymentBridge_OpenDocument(t *testing.T) {
	f := newFixture(t)
	bridge := NewPaymentBridge(f.repo)

	doc, err := f.svc.CreateDocument(f.ctx, f.invoiceCmd())
	require.NoError(t, err)

	open, err := bridge.GetOpenForUpdate(f.ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Number, open.Number)
	assert.True(t, open.BalanceAmount.Equal(m("236")))
	assert.True(t, open.Receivable)

	require.NoError(t, bridge.ApplyPayment(f.ctx, doc.ID, m("236")))
	stored, err := f.svc.GetByID(f.ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, stored.PaymentStatus)
}

func TestPaymentBridge_RejectsDraftAndCancelled(t *testing.T) {
	f := newFixture(t)
	bridge := NewPaymentBridge(f.repo)

	cmd := f.invoiceCmd()
	cmd.Issue = false
	draft, err := f.svc.CreateDocument(f.ctx, cmd)
	require.NoError(t, err)

	_, err = bridge.GetOpenForUpdate(f.ctx, draft.ID)
	require.Error(t, err)
	assert.Equal(t, "DOCUMENT_NOT_OPEN", apperror.GetCode(err))
}

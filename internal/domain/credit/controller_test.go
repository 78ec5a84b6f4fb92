package credit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/id"
	"finbooks/internal/core/tenant"
	"finbooks/internal/core/types"
	"finbooks/internal/domain"
	"finbooks/internal/domain/catalogs/counterparty"
	cpledger "finbooks/internal/domain/registers/counterparty"
)

func m(s string) types.Money { return types.MustMoney(s) }

type fakeCounterpartyRepo struct {
	parties map[id.ID]*counterparty.Counterparty
}

func newFakeCounterpartyRepo(parties ...*counterparty.Counterparty) *fakeCounterpartyRepo {
	r := &fakeCounterpartyRepo{parties: make(map[id.ID]*counterparty.Counterparty)}
	for _, p := range parties {
		r.parties[p.ID] = p
	}
	return r
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
	for _, cp := range r.parties {
		if cp.Code == code {
			return cp, nil
		}
	}
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
	return nil, nil
}

type staticUnpaid struct{ total types.Money }

func (s staticUnpaid) UnpaidReceivableTotal(ctx context.Context, counterpartyID id.ID) (types.Money, error) {
	return s.total, nil
}

type fixture struct {
	ctrl     *Controller
	register *fakeRegisterRepo
	customer *counterparty.Counterparty
	ctx      context.Context
}

func newFixture(t *testing.T, limit string, opts ...func(*counterparty.Counterparty)) *fixture {
	t.Helper()

	customer := counterparty.NewCounterparty("CP-0001", "Acme Traders", counterparty.TypeCustomer)
	customer.CreditLimit = m(limit)
	for _, opt := range opts {
		opt(customer)
	}

	register := &fakeRegisterRepo{}
	ctrl := NewController(newFakeCounterpartyRepo(customer), cpledger.NewService(register), nil)

	return &fixture{
		ctrl:     ctrl,
		register: register,
		customer: customer,
		ctx:      tenant.WithScope(context.Background(), tenant.Scope{TenantID: id.New()}),
	}
}

func (f *fixture) withBalance(balance string) {
	f.register.entries = append(f.register.entries, cpledger.LedgerEntry{
		ID:             id.New(),
		CounterpartyID: f.customer.ID,
		Balance:        m(balance),
	})
}

func TestController_CheckExposure_WithinLimit(t *testing.T) {
	f := newFixture(t, "10000")
	f.withBalance("4000")

	require.NoError(t, f.ctrl.CheckExposure(f.ctx, f.customer.ID, m("5000"), false))
}

func TestController_CheckExposure_ExactlyAtLimit(t *testing.T) {
	f := newFixture(t, "10000")
	f.withBalance("4000")

	require.NoError(t, f.ctrl.CheckExposure(f.ctx, f.customer.ID, m("6000"), false))
}

func TestController_CheckExposure_OverLimit(t *testing.T) {
	f := newFixture(t, "10000")
	f.withBalance("8000")

	err := f.ctrl.CheckExposure(f.ctx, f.customer.ID, m("3000"), false)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeCreditLimitExceeded, apperror.GetCode(err))
}

func TestController_CheckExposure_ZeroLimitIsUnlimited(t *testing.T) {
	f := newFixture(t, "0")
	f.withBalance("999999")

	require.NoError(t, f.ctrl.CheckExposure(f.ctx, f.customer.ID, m("500000"), false))
}

func TestController_CheckExposure_CallerOverride(t *testing.T) {
	f := newFixture(t, "10000")
	f.withBalance("9500")

	require.NoError(t, f.ctrl.CheckExposure(f.ctx, f.customer.ID, m("3000"), true))
}

func TestController_CheckExposure_PermanentOverride(t *testing.T) {
	f := newFixture(t, "10000", func(cp *counterparty.Counterparty) {
		cp.CreditOverride = true
	})
	f.withBalance("9500")

	require.NoError(t, f.ctrl.CheckExposure(f.ctx, f.customer.ID, m("3000"), false))
}

func TestController_CheckExposure_FallsBackToOpeningBalance(t *testing.T) {
	f := newFixture(t, "10000", func(cp *counterparty.Counterparty) {
		cp.OpeningBalance = m("7000")
	})
	// no ledger entries

	err := f.ctrl.CheckExposure(f.ctx, f.customer.ID, m("4000"), false)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeCreditLimitExceeded, apperror.GetCode(err))
}

func TestController_CheckExposure_FallbackIncludesUnpaidInvoices(t *testing.T) {
	f := newFixture(t, "10000", func(cp *counterparty.Counterparty) {
		cp.OpeningBalance = m("2000")
	})
	f.ctrl.fallback = staticUnpaid{total: m("5000")}

	// 2000 opening + 5000 unpaid = 7000 outstanding; 4000 more breaks 10000
	err := f.ctrl.CheckExposure(f.ctx, f.customer.ID, m("4000"), false)
	require.Error(t, err)

	require.NoError(t, f.ctrl.CheckExposure(f.ctx, f.customer.ID, m("3000"), false))
}

func TestController_CheckExposure_UnknownCounterparty(t *testing.T) {
	f := newFixture(t, "10000")

	err := f.ctrl.CheckExposure(f.ctx, id.New(), m("100"), false)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestController_StatusFor_Bands(t *testing.T) {
	tests := []struct {
		name    string
		limit   string
		balance string
		want    Band
	}{
		{"no limit", "0", "50000", BandUnlimited},
		{"well under", "10000", "5000", BandAvailable},
		{"under eighty percent", "10000", "7999", BandAvailable},
		{"at eighty percent", "10000", "8000", BandLimited},
		{"at limit", "10000", "10000", BandLimited},
		{"over limit", "10000", "10001", BandExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.limit)
			f.withBalance(tt.balance)

			st, err := f.ctrl.StatusFor(f.ctx, f.customer.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, st.Band)
			assert.True(t, st.Outstanding.Equal(m(tt.balance)))
		})
	}
}

func TestController_StatusFor_Available(t *testing.T) {
	f := newFixture(t, "10000")
	f.withBalance("6500")

	st, err := f.ctrl.StatusFor(f.ctx, f.customer.ID)
	require.NoError(t, err)
	assert.True(t, st.Available.Equal(m("3500")), "available = %s", st.Available)
}

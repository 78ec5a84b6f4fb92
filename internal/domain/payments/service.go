package payments

import (
	"context"
	"fmt"
	"time"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/id"
	"finbooks/internal/core/numerator"
	"finbooks/internal/core/tenant"
	"finbooks/internal/core/tx"
	"finbooks/internal/core/types"
	"finbooks/internal/domain"
	"finbooks/internal/domain/audit"
	"finbooks/internal/domain/catalogs/account"
	"finbooks/internal/domain/ledger"
	cpledger "finbooks/internal/domain/registers/counterparty"
	"finbooks/pkg/logger"
)

// AllocationRequest selects one document and the amount settled against it.
type AllocationRequest struct {
	DocumentID id.ID       `json:"documentId"`
	Amount     types.Money `json:"amount"`
}

// RecordPaymentCommand is the typed input for recording a payment.
type RecordPaymentCommand struct {
	BranchID       id.ID               `json:"branchId"`
	CounterpartyID id.ID               `json:"counterpartyId"`
	Direction      Direction           `json:"direction"`
	Method         Method              `json:"method"`
	Amount         types.Money         `json:"amount"`
	Date           time.Time           `json:"date"`
	Reference      *string             `json:"reference,omitempty"`
	Allocations    []AllocationRequest `json:"allocations"`

	// UseAdvance draws down the counterparty's existing advance to cover
	// allocations before consuming the payment amount.
	UseAdvance bool `json:"useAdvance"`
}

// Service records and cancels payments. All mutations of a payment run
// in one transaction: documents, advances, the counterparty ledger and the
// journal either all move or none do.
type Service struct {
	repo      Repository
	advances  AdvanceStore
	docs      DocumentPort
	cpLedger  *cpledger.Service
	journal   *ledger.Service
	accounts  account.Repository
	alloc     numerator.Allocator
	branches  ledger.PrefixResolver
	txManager tx.Manager
	events    domain.EventPublisher
}

// SetEventPublisher enables transactional event emission on record and
// cancel. Optional; without it no events are recorded.
func (s *Service) SetEventPublisher(pub domain.EventPublisher) {
	s.events = pub
}

func (s *Service) emit(ctx context.Context, eventType string, p *Payment) error {
	if s.events == nil {
		return nil
	}
	return s.events.Publish(ctx, domain.Event{
		AggregateType: "payment",
		AggregateID:   p.ID,
		Type:          eventType,
		Payload: map[string]any{
			"paymentId":      p.ID,
			"number":         p.Number,
			"counterpartyId": p.CounterpartyID,
			"direction":      p.Direction,
			"amount":         p.Amount,
		},
	})
}

// NewService creates a new payment service.
func NewService(
	repo Repository,
	advances AdvanceStore,
	docs DocumentPort,
	cpLedger *cpledger.Service,
	journal *ledger.Service,
	accounts account.Repository,
	alloc numerator.Allocator,
	branches ledger.PrefixResolver,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		advances:  advances,
		docs:      docs,
		cpLedger:  cpLedger,
		journal:   journal,
		accounts:  accounts,
		alloc:     alloc,
		branches:  branches,
		txManager: txManager,
	}
}

func (s *Service) getTxManager(ctx context.Context) (tx.Manager, error) {
	if s.txManager != nil {
		return s.txManager, nil
	}
	return tenant.GetTxManager(ctx)
}

// RecordPayment validates and commits a payment: allocations settle
// documents, the remainder becomes an advance, exactly one aggregate
// movement lands on the counterparty ledger and one journal entry posts.
func (s *Service) RecordPayment(ctx context.Context, cmd RecordPaymentCommand) (*Payment, error) {
	p := NewPayment(cmd.BranchID, cmd.CounterpartyID, cmd.Direction, cmd.Method, cmd.Amount, cmd.Date)
	p.TenantID = tenant.TenantID(ctx)
	p.Reference = cmd.Reference
	for _, a := range cmd.Allocations {
		p.Allocations = append(p.Allocations, Allocation{
			ID:         id.New(),
			PaymentID:  p.ID,
			DocumentID: a.DocumentID,
			Amount:     a.Amount,
		})
	}
	if err := p.Validate(ctx); err != nil {
		return nil, err
	}
	if err := audit.EnrichCreatedBy(ctx, p); err != nil {
		return nil, err
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		totalAllocated := p.TotalAllocated()

		// Advance drawdown covers allocations before fresh money does.
		var advanceUsed types.Money
		if cmd.UseAdvance && totalAllocated.IsPositive() {
			available, aerr := s.advances.BalanceForUpdate(ctx, p.CounterpartyID)
			if aerr != nil {
				return fmt.Errorf("lock advance: %w", aerr)
			}
			advanceUsed = decimalMin(available, totalAllocated)
		}

		fresh := totalAllocated.Sub(advanceUsed)
		if fresh.GreaterThan(p.Amount.Add(types.Epsilon)) {
			return apperror.NewValidation("allocations exceed payment amount plus available advance").
				WithDetail("allocated", totalAllocated.String()).
				WithDetail("amount", p.Amount.String()).
				WithDetail("advance_used", advanceUsed.String())
		}
		remainder := p.Amount.Sub(fresh)

		if err := s.applyAllocations(ctx, p); err != nil {
			return err
		}

		p.AllocatedAmount = fresh
		p.UnallocatedAmount = remainder
		p.AdvanceUsed = advanceUsed

		if advanceUsed.IsPositive() {
			if err := s.advances.Add(ctx, p.CounterpartyID, advanceUsed.Neg()); err != nil {
				return fmt.Errorf("draw down advance: %w", err)
			}
		}
		if remainder.IsPositive() {
			if err := s.advances.Add(ctx, p.CounterpartyID, remainder); err != nil {
				return fmt.Errorf("accumulate advance: %w", err)
			}
		}

		key, draw, err := s.numberPayment(ctx, p)
		if err != nil {
			return err
		}
		committed := false
		defer func() {
			if !committed {
				// Compensate the draw so gaps stay rare; uniqueness holds
				// even when the release itself fails.
				if rerr := s.alloc.Release(context.WithoutCancel(ctx), key, draw); rerr != nil {
					logger.Warn(ctx, "failed to release payment number",
						"number", p.Number, "error", rerr)
				}
			}
		}()

		p.MarkPosted()
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		// Exactly one aggregate ledger movement for the cash event.
		cashMove := cpledger.Movement{
			CounterpartyID: p.CounterpartyID,
			EntryDate:      p.Date,
			SourceType:     cpledger.SourcePayment,
			SourceID:       p.ID,
			DocumentNumber: p.Number,
		}
		if p.Direction == DirectionInbound {
			cashMove.Credit = p.Amount
		} else {
			cashMove.Debit = p.Amount
		}
		if _, err := s.cpLedger.Append(ctx, cashMove); err != nil {
			return err
		}

		// The drawdown is a distinct, balance-neutral movement: the cash
		// was already credited when the advance arrived.
		if advanceUsed.IsPositive() {
			_, err := s.cpLedger.Append(ctx, cpledger.Movement{
				CounterpartyID: p.CounterpartyID,
				EntryDate:      p.Date,
				SourceType:     cpledger.SourceAdvance,
				SourceID:       p.ID,
				DocumentNumber: p.Number,
				Debit:          advanceUsed,
				Credit:         advanceUsed,
			})
			if err != nil {
				return err
			}
		}

		if err := s.postJournal(ctx, p); err != nil {
			return err
		}
		if err := s.emit(ctx, domain.EventPaymentRecorded, p); err != nil {
			return err
		}
		committed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment recorded",
		"id", p.ID,
		"number", p.Number,
		"amount", p.Amount,
		"allocated", p.AllocatedAmount,
		"advance_used", p.AdvanceUsed,
	)

	return p, nil
}

// applyAllocations settles each allocation against its document under a
// row lock. Over-allocation aborts the whole transaction.
func (s *Service) applyAllocations(ctx context.Context, p *Payment) error {
	for i := range p.Allocations {
		a := &p.Allocations[i]

		doc, err := s.docs.GetOpenForUpdate(ctx, a.DocumentID)
		if err != nil {
			return err
		}
		if doc.CounterpartyID != p.CounterpartyID {
			return apperror.NewValidation("allocation document belongs to another counterparty").
				WithDetail("document_id", a.DocumentID.String())
		}
		if doc.Receivable != (p.Direction == DirectionInbound) {
			return apperror.NewValidation("allocation document direction does not match payment").
				WithDetail("document_id", a.DocumentID.String())
		}
		if a.Amount.GreaterThan(doc.BalanceAmount.Add(types.Epsilon)) {
			return apperror.NewOverAllocation(doc.Number, a.Amount.String(), doc.BalanceAmount.String())
		}

		if err := s.docs.ApplyPayment(ctx, a.DocumentID, a.Amount); err != nil {
			return fmt.Errorf("apply payment to %s: %w", doc.Number, err)
		}
		a.DocumentNumber = doc.Number
	}
	return nil
}

func (s *Service) numberPayment(ctx context.Context, p *Payment) (numerator.Key, numerator.Draw, error) {
	scope, err := tenant.GetScope(ctx)
	if err != nil {
		return numerator.Key{}, numerator.Draw{}, err
	}
	prefix, err := s.branches.NumberPrefix(ctx, p.BranchID)
	if err != nil {
		return numerator.Key{}, numerator.Draw{}, fmt.Errorf("resolve branch prefix: %w", err)
	}

	typeName, seriesPrefix := "payment_out", "PAY-"
	if p.Direction == DirectionInbound {
		typeName, seriesPrefix = "payment_in", "RCT-"
	}
	key := numerator.Key{
		TenantID:     scope.TenantID,
		BranchID:     p.BranchID,
		DocumentType: typeName,
	}
	draw, err := s.alloc.NextNumber(ctx, key, numerator.DefaultConfig(seriesPrefix), prefix, p.Date)
	if err != nil {
		return numerator.Key{}, numerator.Draw{}, fmt.Errorf("generate payment number: %w", err)
	}
	p.Number = draw.Number
	return key, draw, nil
}

// postJournal posts the aggregate double-entry for the payment. The advance
// drawdown shows up as an internal transfer between the advances account
// and receivables/payables inside the same entry.
func (s *Service) postJournal(ctx context.Context, p *Payment) error {
	cashCode := account.CodeBank
	if p.Method == MethodCash {
		cashCode = account.CodeCash
	}
	cash, err := s.accountByCode(ctx, cashCode)
	if err != nil {
		return err
	}

	entry := ledger.NewJournalEntry(p.BranchID, p.Date)
	entry.TenantID = p.TenantID
	entry.SourceType = ledger.SourcePayment
	entry.SourceID = &p.ID
	narration := "Payment " + p.Number
	entry.Narration = &narration

	if p.Direction == DirectionInbound {
		receivable, err := s.accountByCode(ctx, account.CodeAccountsReceivable)
		if err != nil {
			return err
		}
		advAcc, err := s.accountByCode(ctx, account.CodeCustomerAdvances)
		if err != nil {
			return err
		}

		entry.Debit(cash.ID, p.Amount)
		if p.AllocatedAmount.IsPositive() {
			entry.Credit(receivable.ID, p.AllocatedAmount)
		}
		if p.UnallocatedAmount.IsPositive() {
			entry.Credit(advAcc.ID, p.UnallocatedAmount)
		}
		if p.AdvanceUsed.IsPositive() {
			entry.Debit(advAcc.ID, p.AdvanceUsed)
			entry.Credit(receivable.ID, p.AdvanceUsed)
		}
	} else {
		payable, err := s.accountByCode(ctx, account.CodeAccountsPayable)
		if err != nil {
			return err
		}
		advAcc, err := s.accountByCode(ctx, account.CodeVendorAdvances)
		if err != nil {
			return err
		}

		entry.Credit(cash.ID, p.Amount)
		if p.AllocatedAmount.IsPositive() {
			entry.Debit(payable.ID, p.AllocatedAmount)
		}
		if p.UnallocatedAmount.IsPositive() {
			entry.Debit(advAcc.ID, p.UnallocatedAmount)
		}
		if p.AdvanceUsed.IsPositive() {
			entry.Credit(advAcc.ID, p.AdvanceUsed)
			entry.Debit(payable.ID, p.AdvanceUsed)
		}
	}

	return s.journal.PostEntry(ctx, entry)
}

func (s *Service) accountByCode(ctx context.Context, code string) (*account.Account, error) {
	acc, err := s.accounts.GetByCode(ctx, code)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewInternal(fmt.Errorf("system account %s is not seeded", code))
		}
		return nil, err
	}
	return acc, nil
}

// CancelPayment unwinds a payment: document settlements roll back, advance
// movements compensate, the counterparty ledger and journal reverse.
func (s *Service) CancelPayment(ctx context.Context, paymentID id.ID) error {
	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		if p.Cancelled {
			return apperror.NewBusinessRule("PAYMENT_CANCELLED", "payment is already cancelled")
		}

		for i := range p.Allocations {
			a := &p.Allocations[i]
			if err := s.docs.ApplyPayment(ctx, a.DocumentID, a.Amount.Neg()); err != nil {
				return fmt.Errorf("roll back allocation on %s: %w", a.DocumentNumber, err)
			}
		}

		// The remainder became an advance; cancelling requires it to
		// still be unconsumed.
		if p.UnallocatedAmount.IsPositive() {
			available, aerr := s.advances.BalanceForUpdate(ctx, p.CounterpartyID)
			if aerr != nil {
				return fmt.Errorf("lock advance: %w", aerr)
			}
			if available.LessThan(p.UnallocatedAmount) {
				return apperror.NewBusinessRule("ADVANCE_CONSUMED",
					"advance from this payment was already drawn down").
					WithDetail("available", available.String()).
					WithDetail("required", p.UnallocatedAmount.String())
			}
			if err := s.advances.Add(ctx, p.CounterpartyID, p.UnallocatedAmount.Neg()); err != nil {
				return fmt.Errorf("roll back advance: %w", err)
			}
		}
		if p.AdvanceUsed.IsPositive() {
			if err := s.advances.Add(ctx, p.CounterpartyID, p.AdvanceUsed); err != nil {
				return fmt.Errorf("restore advance: %w", err)
			}
		}

		if err := s.cpLedger.Reverse(ctx, cpledger.SourcePayment, p.ID); err != nil {
			return err
		}
		if err := s.cpLedger.Reverse(ctx, cpledger.SourceAdvance, p.ID); err != nil {
			return err
		}

		entries, err := s.journal.FindBySource(ctx, ledger.SourcePayment, p.ID)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if _, err := s.journal.Cancel(ctx, e.ID); err != nil {
				return err
			}
		}

		if err := s.repo.MarkCancelled(ctx, p); err != nil {
			return err
		}

		logger.Info(ctx, "payment cancelled", "id", p.ID, "number", p.Number)
		return s.emit(ctx, domain.EventPaymentCancelled, p)
	})
}

// GetByID retrieves a payment with allocations.
func (s *Service) GetByID(ctx context.Context, paymentID id.ID) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("payment", paymentID.String())
		}
		return nil, err
	}
	return p, nil
}

// List retrieves payments matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Payment], error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	return s.repo.List(ctx, filter)
}

// AdvanceBalance returns the counterparty's current unapplied advance.
func (s *Service) AdvanceBalance(ctx context.Context, counterpartyID id.ID) (types.Money, error) {
	return s.advances.Balance(ctx, counterpartyID)
}

func decimalMin(a, b types.Money) types.Money {
	if a.LessThan(b) {
		return a
	}
	return b
}

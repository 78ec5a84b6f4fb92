package trade

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
	"finbooks/internal/domain/credit"
	"finbooks/internal/domain/ledger"
	cpledger "finbooks/internal/domain/registers/counterparty"
	"finbooks/internal/domain/registers/stock"
	"finbooks/internal/domain/tax"
	"finbooks/pkg/logger"
)

// LineCommand is one line of a document creation request. The tax
// breakdown fields are optional: when present they are validated against
// a fresh computation, when absent the engine derives them.
type LineCommand struct {
	ItemID      *id.ID `json:"itemId,omitempty"`
	Description string `json:"description"`

	Quantity      types.Money `json:"quantity"`
	Rate          types.Money `json:"rate"`
	DiscountPct   types.Money `json:"discountPct"`
	CGSTRate      types.Money `json:"cgstRate"`
	SGSTRate      types.Money `json:"sgstRate"`
	IGSTRate      types.Money `json:"igstRate"`
	RateExclusive bool        `json:"rateExclusive"`

	TaxableAmount types.Money `json:"taxableAmount"`
	CGSTAmount    types.Money `json:"cgstAmount"`
	SGSTAmount    types.Money `json:"sgstAmount"`
	IGSTAmount    types.Money `json:"igstAmount"`
	LineTotal     types.Money `json:"lineTotal"`
}

// CreateDocumentCommand is the typed input for document creation.
type CreateDocumentCommand struct {
	Type           DocumentType  `json:"type"`
	BranchID       id.ID         `json:"branchId"`
	CounterpartyID id.ID         `json:"counterpartyId"`
	Date           time.Time     `json:"date"`
	Reference      *string       `json:"reference,omitempty"`
	Comment        string        `json:"comment,omitempty"`
	Lines          []LineCommand `json:"lines"`

	DiscountPercent types.Money `json:"discountPercent"`
	DiscountFlat    types.Money `json:"discountFlat"`

	// Issue posts the document in the same call
	Issue bool `json:"issue"`

	// CreditOverride bypasses the credit gate for this document
	CreditOverride bool `json:"creditOverride"`
}

// Service creates, issues and cancels trade documents. Issuing a document
// draws its number, posts the journal entry, emits stock intents and
// appends the counterparty ledger movement in one transaction.
type Service struct {
	repo      Repository
	credit    *credit.Controller
	journal   *ledger.Service
	accounts  account.Repository
	cpLedger  *cpledger.Service
	stock     *stock.Service
	alloc     numerator.Allocator
	branches  ledger.PrefixResolver
	txManager tx.Manager
	events    domain.EventPublisher
}

// SetEventPublisher enables transactional event emission on issue and
// cancel. Optional; without it no events are recorded.
func (s *Service) SetEventPublisher(pub domain.EventPublisher) {
	s.events = pub
}

func (s *Service) emit(ctx context.Context, eventType string, doc *TradeDocument) error {
	if s.events == nil {
		return nil
	}
	return s.events.Publish(ctx, domain.Event{
		AggregateType: "trade_document",
		AggregateID:   doc.ID,
		Type:          eventType,
		Payload: map[string]any{
			"documentId":     doc.ID,
			"type":           doc.Type,
			"number":         doc.Number,
			"counterpartyId": doc.CounterpartyID,
			"totalAmount":    doc.TotalAmount,
		},
	})
}

// NewService creates a trade document service.
func NewService(
	repo Repository,
	creditCtrl *credit.Controller,
	journal *ledger.Service,
	accounts account.Repository,
	cpLedger *cpledger.Service,
	stockSvc *stock.Service,
	alloc numerator.Allocator,
	branches ledger.PrefixResolver,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		credit:    creditCtrl,
		journal:   journal,
		accounts:  accounts,
		cpLedger:  cpLedger,
		stock:     stockSvc,
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

// CreateDocument validates the command, computes totals and persists the
// document as a draft; with cmd.Issue it is posted in the same transaction.
func (s *Service) CreateDocument(ctx context.Context, cmd CreateDocumentCommand) (*TradeDocument, error) {
	doc := NewTradeDocument(cmd.Type, cmd.BranchID, cmd.CounterpartyID, cmd.Date)
	doc.TenantID = tenant.TenantID(ctx)
	doc.Reference = cmd.Reference
	doc.Comment = cmd.Comment
	doc.DiscountPercent = cmd.DiscountPercent
	doc.DiscountFlat = cmd.DiscountFlat

	for i, lc := range cmd.Lines {
		doc.Lines = append(doc.Lines, Line{
			LineID:        id.New(),
			LineNo:        i + 1,
			ItemID:        lc.ItemID,
			Description:   lc.Description,
			Quantity:      lc.Quantity,
			Rate:          lc.Rate,
			DiscountPct:   lc.DiscountPct,
			CGSTRate:      lc.CGSTRate,
			SGSTRate:      lc.SGSTRate,
			IGSTRate:      lc.IGSTRate,
			RateExclusive: lc.RateExclusive,
			TaxableAmount: lc.TaxableAmount,
			CGSTAmount:    lc.CGSTAmount,
			SGSTAmount:    lc.SGSTAmount,
			IGSTAmount:    lc.IGSTAmount,
			LineTotal:     lc.LineTotal,
		})
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.computeTotals(doc); err != nil {
		return nil, err
	}
	if err := audit.EnrichCreatedBy(ctx, doc); err != nil {
		return nil, err
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if cmd.Issue {
			return s.issueLocked(ctx, doc, cmd.CreditOverride)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "document created",
		"id", doc.ID,
		"type", doc.Type,
		"number", doc.Number,
		"total", doc.TotalAmount,
		"issued", doc.Posted,
	)

	return doc, nil
}

// computeTotals derives or validates each line's tax breakdown and fills
// the document totals. Caller-supplied figures stay authoritative when
// they survive validation.
func (s *Service) computeTotals(doc *TradeDocument) error {
	results := make([]tax.LineResult, 0, len(doc.Lines))
	for i := range doc.Lines {
		line := &doc.Lines[i]

		if line.HasBreakdown() {
			if err := tax.ValidateLine(line.TaxInput(), line.result()); err != nil {
				return err
			}
		} else {
			res, err := tax.ComputeLine(line.TaxInput())
			if err != nil {
				return err
			}
			line.applyResult(res)
		}
		results = append(results, line.result())
	}

	totals, err := tax.ComputeDocument(results, tax.DocumentDiscount{
		Percent: doc.DiscountPercent,
		Flat:    doc.DiscountFlat,
	})
	if err != nil {
		return err
	}

	doc.Subtotal = totals.Subtotal
	doc.DiscountAmount = totals.DiscountAmount
	doc.CGSTAmount = totals.CGST
	doc.SGSTAmount = totals.SGST
	doc.IGSTAmount = totals.IGST
	doc.TaxAmount = totals.TaxAmount
	doc.TotalAmount = totals.Total
	doc.RefreshPaymentStatus()

	return nil
}

// IssueDocument posts a draft document: credit gate, number draw, journal
// entry, stock intents and counterparty ledger movement.
func (s *Service) IssueDocument(ctx context.Context, documentID id.ID, creditOverride bool) (*TradeDocument, error) {
	txm, err := s.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	var doc *TradeDocument
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err = s.repo.GetForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		return s.issueLocked(ctx, doc, creditOverride)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) issueLocked(ctx context.Context, doc *TradeDocument, creditOverride bool) error {
	if err := doc.CanModify(); err != nil {
		return err
	}

	if doc.Type == TypeInvoice {
		if err := s.credit.CheckExposure(ctx, doc.CounterpartyID, doc.TotalAmount, creditOverride); err != nil {
			return err
		}
	}

	drawn, err := s.numberDocument(ctx, doc)
	if err != nil {
		return err
	}
	released := false
	defer func() {
		if !doc.Posted && !released {
			released = true
			// Compensate the draw so the gap does not grow; uniqueness
			// is preserved even when this fails.
			if rerr := s.alloc.Release(context.WithoutCancel(ctx), drawn.key, drawn.draw); rerr != nil {
				logger.Warn(ctx, "failed to release document number",
					"number", doc.Number, "error", rerr)
			}
		}
	}()

	if doc.IsPayable() {
		if err := s.postJournal(ctx, doc); err != nil {
			return err
		}
		if err := s.appendLedgerMovement(ctx, doc); err != nil {
			return err
		}
	}
	if err := s.emitStockIntents(ctx, doc); err != nil {
		return err
	}

	doc.MarkPosted()
	if err := s.repo.UpdateHeader(ctx, doc); err != nil {
		doc.MarkUnposted()
		return fmt.Errorf("persist issued document: %w", err)
	}

	return s.emit(ctx, domain.EventDocumentIssued, doc)
}

type numberDraw struct {
	key  numerator.Key
	draw numerator.Draw
}

func (s *Service) numberDocument(ctx context.Context, doc *TradeDocument) (numberDraw, error) {
	scope, err := tenant.GetScope(ctx)
	if err != nil {
		return numberDraw{}, err
	}
	prefix, err := s.branches.NumberPrefix(ctx, doc.BranchID)
	if err != nil {
		return numberDraw{}, fmt.Errorf("resolve branch prefix: %w", err)
	}

	key := numerator.Key{
		TenantID:     scope.TenantID,
		BranchID:     doc.BranchID,
		DocumentType: string(doc.Type),
	}
	draw, err := s.alloc.NextNumber(ctx, key, numerator.DefaultConfig(doc.SeriesPrefix()), prefix, doc.Date)
	if err != nil {
		return numberDraw{}, fmt.Errorf("generate document number: %w", err)
	}
	doc.Number = draw.Number
	return numberDraw{key: key, draw: draw}, nil
}

// postJournal builds and posts the double-entry recording of the document.
// Dropping zero-amount heads keeps every line one-sided and positive.
func (s *Service) postJournal(ctx context.Context, doc *TradeDocument) error {
	entry := ledger.NewJournalEntry(doc.BranchID, doc.Date)
	entry.TenantID = doc.TenantID
	entry.SourceType = ledger.SourceDocument
	entry.SourceID = &doc.ID
	narration := string(doc.Type) + " " + doc.Number
	entry.Narration = &narration

	add := func(debit bool, code string, amount types.Money) error {
		if !amount.IsPositive() {
			return nil
		}
		acc, err := s.accounts.GetByCode(ctx, code)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewInternal(fmt.Errorf("system account %s is not seeded", code))
			}
			return err
		}
		if debit {
			entry.Debit(acc.ID, amount)
		} else {
			entry.Credit(acc.ID, amount)
		}
		return nil
	}

	type posting struct {
		debit  bool
		code   string
		amount types.Money
	}
	var postings []posting

	switch doc.Type {
	case TypeInvoice:
		postings = []posting{
			{true, account.CodeAccountsReceivable, doc.TotalAmount},
			{true, account.CodeDiscountGiven, doc.DiscountAmount},
			{false, account.CodeSales, doc.Subtotal},
			{false, account.CodeCGSTPayable, doc.CGSTAmount},
			{false, account.CodeSGSTPayable, doc.SGSTAmount},
			{false, account.CodeIGSTPayable, doc.IGSTAmount},
		}
	case TypeCreditNote:
		postings = []posting{
			{true, account.CodeSalesReturns, doc.Subtotal},
			{true, account.CodeCGSTPayable, doc.CGSTAmount},
			{true, account.CodeSGSTPayable, doc.SGSTAmount},
			{true, account.CodeIGSTPayable, doc.IGSTAmount},
			{false, account.CodeAccountsReceivable, doc.TotalAmount},
			{false, account.CodeDiscountGiven, doc.DiscountAmount},
		}
	case TypeBill:
		postings = []posting{
			{true, account.CodePurchases, doc.Subtotal},
			{true, account.CodeCGSTPayable, doc.CGSTAmount},
			{true, account.CodeSGSTPayable, doc.SGSTAmount},
			{true, account.CodeIGSTPayable, doc.IGSTAmount},
			{false, account.CodeAccountsPayable, doc.TotalAmount},
			{false, account.CodeDiscountReceived, doc.DiscountAmount},
		}
	case TypeDebitNote:
		postings = []posting{
			{true, account.CodeAccountsPayable, doc.TotalAmount},
			{true, account.CodeDiscountReceived, doc.DiscountAmount},
			{false, account.CodePurchases, doc.Subtotal},
			{false, account.CodeCGSTPayable, doc.CGSTAmount},
			{false, account.CodeSGSTPayable, doc.SGSTAmount},
			{false, account.CodeIGSTPayable, doc.IGSTAmount},
		}
	default:
		return nil
	}

	for _, p := range postings {
		if err := add(p.debit, p.code, p.amount); err != nil {
			return err
		}
	}

	return s.journal.PostEntry(ctx, entry)
}

func (s *Service) appendLedgerMovement(ctx context.Context, doc *TradeDocument) error {
	mv := cpledger.Movement{
		CounterpartyID: doc.CounterpartyID,
		EntryDate:      doc.Date,
		SourceType:     cpledger.SourceDocument,
		SourceID:       doc.ID,
		DocumentNumber: doc.Number,
	}
	// A receivable document raises what the counterparty owes
	if doc.Receivable() {
		mv.Debit = doc.TotalAmount
	} else {
		mv.Credit = doc.TotalAmount
	}
	_, err := s.cpLedger.Append(ctx, mv)
	return err
}

// stockDirection returns the movement direction for stock-moving document
// types; ok is false for purely financial or informational documents.
func stockDirection(t DocumentType) (stock.Direction, bool) {
	switch t {
	case TypeInvoice:
		return stock.DirectionOut, true
	case TypeCreditNote:
		return stock.DirectionIn, true
	case TypeBill, TypeGRN:
		return stock.DirectionIn, true
	case TypeDebitNote:
		return stock.DirectionOut, true
	}
	return "", false
}

func (s *Service) emitStockIntents(ctx context.Context, doc *TradeDocument) error {
	dir, ok := stockDirection(doc.Type)
	if !ok {
		return nil
	}

	var intents []stock.Intent
	for _, line := range doc.Lines {
		if line.ItemID == nil || !line.Quantity.IsPositive() {
			continue
		}
		intent := stock.NewIntent(doc.ID, string(doc.Type), doc.Date, *line.ItemID, line.Quantity, dir)
		intent.TenantID = doc.TenantID
		intent.BranchID = doc.BranchID
		intents = append(intents, intent)
	}
	return s.stock.EmitIntents(ctx, intents)
}

// CancelDocument unwinds an issued document: the journal entry reverses,
// stock intents are compensated and the counterparty ledger movement is
// mirrored. Documents with settlements must have their payments cancelled
// first.
func (s *Service) CancelDocument(ctx context.Context, documentID id.ID) error {
	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		if doc.Cancelled {
			return apperror.NewBusinessRule("DOCUMENT_CANCELLED", "document is already cancelled")
		}
		if doc.PaidAmount.IsPositive() {
			return apperror.NewBusinessRule("DOCUMENT_SETTLED",
				"cancel the payments allocated to this document first").
				WithDetail("paid_amount", doc.PaidAmount.String())
		}

		if doc.Posted {
			entries, err := s.journal.FindBySource(ctx, ledger.SourceDocument, doc.ID)
			if err != nil {
				return err
			}
			for _, e := range entries {
				if _, err := s.journal.Cancel(ctx, e.ID); err != nil {
					return err
				}
			}
			if doc.IsPayable() {
				if err := s.cpLedger.Reverse(ctx, cpledger.SourceDocument, doc.ID); err != nil {
					return err
				}
			}
			if err := s.stock.ReverseIntents(ctx, doc.ID); err != nil {
				return err
			}
		}

		doc.Cancelled = true
		if err := s.repo.UpdateHeader(ctx, doc); err != nil {
			return err
		}

		logger.Info(ctx, "document cancelled", "id", doc.ID, "number", doc.Number)
		return s.emit(ctx, domain.EventDocumentCancelled, doc)
	})
}

// GetByID retrieves a document with lines.
func (s *Service) GetByID(ctx context.Context, documentID id.ID) (*TradeDocument, error) {
	doc, err := s.repo.GetByID(ctx, documentID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("document", documentID.String())
		}
		return nil, err
	}
	return doc, nil
}

// List retrieves documents matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*TradeDocument], error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	return s.repo.List(ctx, filter)
}

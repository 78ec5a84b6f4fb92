package ledger

import (
	"context"
	"fmt"
	"time"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/id"
	"finbooks/internal/core/numerator"
	"finbooks/internal/core/security"
	"finbooks/internal/core/tenant"
	"finbooks/internal/core/tx"
	"finbooks/internal/core/types"
	"finbooks/internal/domain"
	"finbooks/internal/domain/audit"
	"finbooks/internal/domain/catalogs/account"
	"finbooks/pkg/logger"
)

// PrefixResolver resolves the number-series prefix for a branch.
// Satisfied by branch.Service.
type PrefixResolver interface {
	NumberPrefix(ctx context.Context, branchID id.ID) (string, error)
}

// Service posts journal entries and maintains account balances.
// TxManager is obtained from context when nil.
type Service struct {
	repo      Repository
	accounts  account.Repository
	alloc     numerator.Allocator
	branches  PrefixResolver
	policy    security.PostingPolicy
	txManager tx.Manager
}

// NewService creates a new ledger service.
func NewService(
	repo Repository,
	accounts account.Repository,
	alloc numerator.Allocator,
	branches PrefixResolver,
	policy security.PostingPolicy,
	txManager tx.Manager,
) *Service {
	if policy == nil {
		policy = security.OpenPolicy{}
	}
	return &Service{
		repo:      repo,
		accounts:  accounts,
		alloc:     alloc,
		branches:  branches,
		policy:    policy,
		txManager: txManager,
	}
}

func (s *Service) getTxManager(ctx context.Context) (tx.Manager, error) {
	if s.txManager != nil {
		return s.txManager, nil
	}
	return tenant.GetTxManager(ctx)
}

// numberEntry draws a gapless voucher number for the entry. The draw is
// returned so a failed persistence can release it.
func (s *Service) numberEntry(ctx context.Context, entry *JournalEntry) (numerator.Key, numerator.Draw, error) {
	scope, err := tenant.GetScope(ctx)
	if err != nil {
		return numerator.Key{}, numerator.Draw{}, err
	}
	prefix, err := s.branches.NumberPrefix(ctx, entry.BranchID)
	if err != nil {
		return numerator.Key{}, numerator.Draw{}, fmt.Errorf("resolve branch prefix: %w", err)
	}
	key := numerator.Key{
		TenantID:     scope.TenantID,
		BranchID:     entry.BranchID,
		DocumentType: "journal",
	}
	draw, err := s.alloc.NextNumber(ctx, key, numerator.DefaultConfig("JV-"), prefix, entry.Date)
	if err != nil {
		return key, numerator.Draw{}, fmt.Errorf("generate voucher number: %w", err)
	}
	entry.Number = draw.Number
	return key, draw, nil
}

// CreateDraft validates and persists a draft entry. Drafts carry no
// financial effect and hold no voucher number until posted.
func (s *Service) CreateDraft(ctx context.Context, entry *JournalEntry) error {
	if err := entry.Validate(ctx); err != nil {
		return err
	}
	entry.Status = StatusDraft
	if err := audit.EnrichCreatedBy(ctx, entry); err != nil {
		return err
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateEntry(ctx, entry); err != nil {
			return fmt.Errorf("create journal entry: %w", err)
		}
		return nil
	})
}

// UpdateDraft replaces the lines and header of a draft entry.
func (s *Service) UpdateDraft(ctx context.Context, entry *JournalEntry) error {
	if err := entry.Validate(ctx); err != nil {
		return err
	}
	if err := audit.EnrichUpdatedBy(ctx, entry); err != nil {
		return err
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, entry.ID)
		if err != nil {
			return err
		}
		if err := current.CanModify(); err != nil {
			return err
		}
		if err := s.repo.UpdateHeader(ctx, entry); err != nil {
			return fmt.Errorf("update journal entry: %w", err)
		}
		if err := s.repo.ReplaceLines(ctx, entry); err != nil {
			return fmt.Errorf("replace journal lines: %w", err)
		}
		return nil
	})
}

// Post transitions a draft to posted, drawing the voucher number and
// applying balance deltas atomically.
func (s *Service) Post(ctx context.Context, entryID id.ID) (*JournalEntry, error) {
	txm, err := s.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	var entry *JournalEntry
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		entry, err = s.repo.GetForUpdate(ctx, entryID)
		if err != nil {
			return err
		}
		if entry.Status != StatusDraft {
			return apperror.NewBusinessRule(apperror.CodeDocumentPosted,
				"journal entry is not a draft").
				WithDetail("status", string(entry.Status))
		}
		return s.postLocked(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "journal entry posted",
		"id", entry.ID, "number", entry.Number, "total", entry.TotalDebit)
	return entry, nil
}

// PostEntry validates, numbers, persists and posts an entry in one step.
// Document and payment flows call this inside their own transaction; the
// nested RunInTransaction joins it via savepoint.
func (s *Service) PostEntry(ctx context.Context, entry *JournalEntry) error {
	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateEntry(ctx, entry); err != nil {
			return fmt.Errorf("create journal entry: %w", err)
		}
		return s.postLocked(ctx, entry)
	})
}

// postLocked performs the posting work. Caller holds the row lock and the
// transaction.
func (s *Service) postLocked(ctx context.Context, entry *JournalEntry) error {
	if err := entry.Validate(ctx); err != nil {
		return err
	}
	if err := s.policy.CanPost(ctx, entry.Date); err != nil {
		return err
	}

	if entry.Number == "" {
		key, draw, err := s.numberEntry(ctx, entry)
		if err != nil {
			return err
		}
		// Crash-safety note: the draw commits in its own statement, so a
		// failure below leaves a gap unless we compensate.
		defer func() {
			if entry.Status != StatusPosted {
				if rerr := s.alloc.Release(context.WithoutCancel(ctx), key, draw); rerr != nil {
					logger.Warn(ctx, "voucher number release failed",
						"number", draw.Number, "error", rerr)
				}
			}
		}()
	}

	if err := s.applyBalanceDeltas(ctx, entry); err != nil {
		return err
	}

	entry.MarkPosted()
	return s.repo.Transition(ctx, entry, entry.Status, StatusPosted)
}

// Cancel reverses a posted entry by posting a mirror-image reversal, or
// simply marks a draft cancelled.
func (s *Service) Cancel(ctx context.Context, entryID id.ID) (*JournalEntry, error) {
	txm, err := s.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	var reversal *JournalEntry
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		entry, err := s.repo.GetForUpdate(ctx, entryID)
		if err != nil {
			return err
		}

		switch entry.Status {
		case StatusDraft:
			return s.repo.Transition(ctx, entry, StatusDraft, StatusCancelled)

		case StatusPosted:
			if err := s.policy.CanUnpost(ctx, entry.Date); err != nil {
				return err
			}
			reversal = s.buildReversal(entry)
			if err := s.repo.CreateEntry(ctx, reversal); err != nil {
				return fmt.Errorf("create reversal: %w", err)
			}
			if err := s.postLocked(ctx, reversal); err != nil {
				return err
			}
			return s.repo.Transition(ctx, entry, StatusPosted, StatusCancelled)

		default:
			return apperror.NewBusinessRule("ENTRY_CANCELLED", "journal entry is already cancelled")
		}
	})
	if err != nil {
		return nil, err
	}
	return reversal, nil
}

// buildReversal creates the mirror entry: every debit becomes a credit and
// vice versa, dated now so closed periods stay untouched.
func (s *Service) buildReversal(entry *JournalEntry) *JournalEntry {
	rev := NewJournalEntry(entry.BranchID, time.Now())
	rev.TenantID = entry.TenantID
	rev.SourceType = SourceReversal
	rev.ReversalOf = &entry.ID
	if entry.Narration != nil {
		n := "Reversal of " + entry.Number + ": " + *entry.Narration
		rev.Narration = &n
	} else {
		n := "Reversal of " + entry.Number
		rev.Narration = &n
	}
	for _, l := range entry.Lines {
		rev.AddLine(l.AccountID, l.Credit, l.Debit, l.Description)
	}
	return rev
}

// applyBalanceDeltas walks the lines and moves each account's running
// balance by the signed delta on its normal side.
func (s *Service) applyBalanceDeltas(ctx context.Context, entry *JournalEntry) error {
	for _, l := range entry.Lines {
		acc, err := s.accounts.GetByID(ctx, l.AccountID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewValidation("journal line references unknown account").
					WithDetail("account_id", l.AccountID.String())
			}
			return err
		}
		delta := acc.BalanceDelta(l.Debit, l.Credit)
		if delta.IsZero() {
			continue
		}
		if err := s.accounts.ApplyBalanceDelta(ctx, acc.ID, delta); err != nil {
			return fmt.Errorf("apply balance delta to %s: %w", acc.Code, err)
		}
	}
	return nil
}

// GetByID retrieves an entry with lines.
func (s *Service) GetByID(ctx context.Context, entryID id.ID) (*JournalEntry, error) {
	entry, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("journal_entry", entryID.String())
		}
		return nil, err
	}
	return entry, nil
}

// List retrieves entries matching the filter.
func (s *Service) List(ctx context.Context, filter EntryFilter) (domain.ListResult[*JournalEntry], error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	return s.repo.List(ctx, filter)
}

// FindBySource retrieves the entries produced by a document or payment.
func (s *Service) FindBySource(ctx context.Context, st SourceType, sourceID id.ID) ([]*JournalEntry, error) {
	return s.repo.FindBySource(ctx, st, sourceID)
}

// AccountActivity returns posted lines touching an account in the period.
func (s *Service) AccountActivity(ctx context.Context, accountID id.ID, from, to time.Time) ([]ActivityLine, error) {
	return s.repo.AccountActivity(ctx, accountID, from, to)
}

// Balanced is a convenience for validating caller-assembled lines before
// persisting anything.
func Balanced(lines []JournalLine) error {
	var debit, credit types.Money
	for i := range lines {
		if err := lines[i].Validate(); err != nil {
			return err
		}
		debit = debit.Add(lines[i].Debit)
		credit = credit.Add(lines[i].Credit)
	}
	if !types.WithinEpsilon(debit, credit) {
		return apperror.NewUnbalancedEntry(debit.String(), credit.String())
	}
	return nil
}

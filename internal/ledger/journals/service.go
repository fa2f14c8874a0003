package journals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/ledger/balances"
	"github.com/quillbooks/quillbooks/internal/ledger/periods"
	"github.com/quillbooks/quillbooks/internal/ledger/shared"
	internalshared "github.com/quillbooks/quillbooks/internal/shared"
)

// AuditPort records ledger events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log internalshared.AuditLog) error
}

// CacheInvalidator is bumped after every balance-changing commit so cached
// reports stop serving stale totals.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// MetricsPort counts posting activity for observability.
type MetricsPort interface {
	EntryPosted()
	EntryReversed()
}

// Service drives the entry state machine: drafting, posting, reversing, and
// deleting journal entries.
type Service struct {
	repo    Repository
	audit   AuditPort
	cache   CacheInvalidator
	metrics MetricsPort
	now     func() time.Time
}

// NewService constructs the journal entry service.
func NewService(repo Repository, audit AuditPort, cache CacheInvalidator) *Service {
	return &Service{repo: repo, audit: audit, cache: cache, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithMetrics attaches the posting counters.
func (s *Service) WithMetrics(m MetricsPort) {
	s.metrics = m
}

// Get loads an entry with lines.
func (s *Service) Get(ctx context.Context, tenantID, entryID int64) (Entry, error) {
	return s.repo.Get(ctx, tenantID, entryID)
}

// List returns a page of entries plus the total count.
func (s *Service) List(ctx context.Context, tenantID int64, filter ListFilter) ([]Entry, int, error) {
	return s.repo.List(ctx, tenantID, filter)
}

// Create validates and persists a DRAFT entry. The date must fall inside an
// existing period, but the period does not have to be open: only posting
// requires that. Drafts never touch account balances.
func (s *Service) Create(ctx context.Context, in CreateInput) (Entry, error) {
	if err := in.Validate(); err != nil {
		return Entry{}, err
	}
	var entry Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		period, err := tx.GetPeriodByDate(ctx, in.TenantID, in.Date)
		if err != nil {
			return err
		}
		lines := make([]Line, 0, len(in.Lines))
		for idx, li := range in.Lines {
			acc, err := tx.GetPostableAccount(ctx, in.TenantID, li.AccountCode)
			if err != nil {
				return fmt.Errorf("line %d (%s): %w", idx, li.AccountCode, err)
			}
			lines = append(lines, Line{
				AccountID: acc.ID,
				Debit:     li.Debit,
				Credit:    li.Credit,
				Memo:      li.Memo,
				Position:  idx + 1,
			})
		}
		totalDebit, totalCredit := in.Totals()
		refID := in.RefID
		if refID == uuid.Nil {
			refID = uuid.New()
		}
		inserted, err := tx.InsertEntry(ctx, Entry{
			TenantID:    in.TenantID,
			Date:        in.Date,
			Memo:        in.Memo,
			RefType:     in.RefType,
			RefID:       refID,
			PeriodID:    period.ID,
			Status:      EntryStatusDraft,
			CreatedBy:   in.ActorID,
			TotalDebit:  totalDebit,
			TotalCredit: totalCredit,
		})
		if err != nil {
			return err
		}
		if err := tx.InsertLines(ctx, inserted.ID, lines); err != nil {
			return err
		}
		inserted.Lines = withEntryID(inserted.ID, lines)
		entry = inserted
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Post finalizes a draft: re-checks the balance invariant, requires the
// period to be OPEN, applies every line to its account balance, and flips the
// status. Everything happens in one transaction with the period row locked,
// so a concurrent close either sees the post or rejects it, never both.
func (s *Service) Post(ctx context.Context, tenantID, entryID, actorID int64) (Entry, error) {
	if entryID == 0 || actorID == 0 {
		return Entry{}, errors.New("journals: entry id and actor required")
	}
	var entry Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetEntryForUpdate(ctx, tenantID, entryID)
		if err != nil {
			return err
		}
		if err := requireStatus(current.Status, EntryStatusDraft); err != nil {
			return err
		}
		lines, err := tx.GetLines(ctx, current.ID)
		if err != nil {
			return err
		}
		if err := recheckBalance(lines); err != nil {
			return err
		}
		period, err := tx.GetPeriodForUpdate(ctx, tenantID, current.PeriodID)
		if err != nil {
			return err
		}
		if period.Status == periods.PeriodStatusClosed {
			return shared.ErrPeriodClosed
		}
		postedAt := s.now()
		won, err := tx.MarkPosted(ctx, current.ID, actorID, postedAt)
		if err != nil {
			return err
		}
		if !won {
			return shared.ErrEntryAlreadyPosted
		}
		if err := s.applyLines(ctx, tx, tenantID, lines, balances.Post); err != nil {
			return err
		}
		current.Status = EntryStatusPosted
		current.PostedBy = &actorID
		current.PostedAt = &postedAt
		current.Lines = lines
		entry = current
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	if s.metrics != nil {
		s.metrics.EntryPosted()
	}
	s.bump(ctx)
	s.record(ctx, tenantID, actorID, "journal.post", entry.ID, map[string]any{
		"number":       entry.Number,
		"total_debit":  entry.TotalDebit.String(),
		"total_credit": entry.TotalCredit.String(),
	})
	return entry, nil
}

// Reverse cancels a posted entry by posting its mirror: every leg swapped,
// tagged REVERSAL, dated on the original entry unless an explicit date inside
// the same period is supplied. The original becomes REVERSED with a
// back-reference and is terminal. The original's period must still be open.
func (s *Service) Reverse(ctx context.Context, in ReverseInput) (Entry, error) {
	if in.EntryID == 0 || in.ActorID == 0 {
		return Entry{}, errors.New("journals: entry id and actor required")
	}
	var reversal Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		original, err := tx.GetEntryForUpdate(ctx, in.TenantID, in.EntryID)
		if err != nil {
			return err
		}
		if err := requireStatus(original.Status, EntryStatusPosted); err != nil {
			return err
		}
		period, err := tx.GetPeriodForUpdate(ctx, in.TenantID, original.PeriodID)
		if err != nil {
			return err
		}
		if period.Status == periods.PeriodStatusClosed {
			return shared.ErrPeriodClosed
		}
		targetDate := original.Date
		if in.Date != nil {
			if !period.Covers(*in.Date) {
				return fmt.Errorf("journals: reversal date outside period %s: %w", period.Name, shared.ErrNoPeriodForDate)
			}
			targetDate = *in.Date
		}
		originalLines, err := tx.GetLines(ctx, original.ID)
		if err != nil {
			return err
		}
		postedAt := s.now()
		mirror, err := tx.InsertEntry(ctx, Entry{
			TenantID:     in.TenantID,
			Date:         targetDate,
			Memo:         reversalMemo(in.Memo, original.Number),
			RefType:      RefTypeReversal,
			RefID:        uuid.New(),
			PeriodID:     period.ID,
			Status:       EntryStatusPosted,
			CreatedBy:    in.ActorID,
			PostedBy:     &in.ActorID,
			PostedAt:     &postedAt,
			ReversalOfID: &original.ID,
			TotalDebit:   original.TotalCredit,
			TotalCredit:  original.TotalDebit,
		})
		if err != nil {
			return err
		}
		mirrorLines := swapLines(originalLines)
		if err := tx.InsertLines(ctx, mirror.ID, mirrorLines); err != nil {
			return err
		}
		if err := s.applyLines(ctx, tx, in.TenantID, mirrorLines, balances.Post); err != nil {
			return err
		}
		if err := tx.MarkReversed(ctx, original.ID, mirror.ID); err != nil {
			return err
		}
		mirror.Lines = withEntryID(mirror.ID, mirrorLines)
		reversal = mirror
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	if s.metrics != nil {
		s.metrics.EntryReversed()
	}
	s.bump(ctx)
	s.record(ctx, in.TenantID, in.ActorID, "journal.reverse", in.EntryID, map[string]any{
		"reversal_id":     reversal.ID,
		"reversal_number": reversal.Number,
	})
	return reversal, nil
}

// Delete removes a DRAFT entry and its lines. Posted history is never deleted.
func (s *Service) Delete(ctx context.Context, tenantID, entryID, actorID int64) error {
	if entryID == 0 {
		return errors.New("journals: entry id required")
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetEntryForUpdate(ctx, tenantID, entryID)
		if err != nil {
			return err
		}
		if current.Status != EntryStatusDraft {
			return shared.ErrEntryNotDraft
		}
		return tx.DeleteEntry(ctx, tenantID, entryID)
	})
}

// applyLines pushes each leg through the projector into the stored balances.
func (s *Service) applyLines(ctx context.Context, tx TxRepository, tenantID int64, lines []Line, dir balances.Direction) error {
	for _, line := range lines {
		acc, err := tx.GetAccountByID(ctx, tenantID, line.AccountID)
		if err != nil {
			return err
		}
		delta := balances.Delta(acc.Type, line.Debit, line.Credit, dir)
		if err := tx.ApplyBalance(ctx, acc.ID, delta); err != nil {
			return err
		}
	}
	return nil
}

func requireStatus(got, want EntryStatus) error {
	if got == want {
		return nil
	}
	switch got {
	case EntryStatusPosted:
		return shared.ErrEntryAlreadyPosted
	case EntryStatusReversed:
		return shared.ErrEntryReversed
	default:
		return shared.ErrEntryNotPosted
	}
}

// recheckBalance guards against stale or tampered rows between draft and post.
func recheckBalance(lines []Line) error {
	if len(lines) < 2 {
		return shared.ErrTooFewLines
	}
	var debit, credit decimal.Decimal
	for _, line := range lines {
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	if debit.Sub(credit).Abs().GreaterThan(Epsilon) {
		return fmt.Errorf("%w: debit %s vs credit %s", shared.ErrUnbalancedEntry, debit, credit)
	}
	return nil
}

func swapLines(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	for _, line := range lines {
		out = append(out, Line{
			AccountID: line.AccountID,
			Debit:     line.Credit,
			Credit:    line.Debit,
			Memo:      line.Memo,
			Position:  line.Position,
		})
	}
	return out
}

func withEntryID(entryID int64, lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	for i := range out {
		out[i].EntryID = entryID
	}
	return out
}

func reversalMemo(memo string, number int64) string {
	if memo != "" {
		return memo
	}
	return fmt.Sprintf("Reversal of JE %d", number)
}

func (s *Service) bump(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
}

func (s *Service) record(ctx context.Context, tenantID, actorID int64, action string, entryID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, internalshared.AuditLog{
		TenantID: tenantID,
		ActorID:  actorID,
		Action:   action,
		Entity:   "journal_entry",
		EntityID: fmt.Sprintf("%d", entryID),
		Meta:     meta,
		At:       s.now(),
	})
}

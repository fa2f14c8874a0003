package periods

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quillbooks/quillbooks/internal/ledger/shared"
	internalshared "github.com/quillbooks/quillbooks/internal/shared"
)

// AuditPort records period lifecycle events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log internalshared.AuditLog) error
}

// Service orchestrates the fiscal period lifecycle.
type Service struct {
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

// NewService constructs a Service instance.
func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// List returns the tenant's periods ordered by start date.
func (s *Service) List(ctx context.Context, tenantID int64) ([]Period, error) {
	return s.repo.List(ctx, tenantID)
}

// Get returns a single period.
func (s *Service) Get(ctx context.Context, tenantID, id int64) (Period, error) {
	return s.repo.Get(ctx, tenantID, id)
}

// Create inserts a new OPEN period after checking sibling overlap.
func (s *Service) Create(ctx context.Context, in CreateInput) (Period, error) {
	if err := in.Validate(); err != nil {
		return Period{}, err
	}
	conflict, err := s.repo.RangeConflict(ctx, in.TenantID, in.StartDate, in.EndDate)
	if err != nil {
		return Period{}, err
	}
	if conflict {
		return Period{}, shared.ErrPeriodOverlap
	}
	return s.repo.Insert(ctx, in)
}

// ResolveForDate returns the period covering the date, open or closed.
// Callers must create periods covering every date they intend to post against.
func (s *Service) ResolveForDate(ctx context.Context, tenantID int64, date time.Time) (Period, error) {
	return s.repo.FindByDate(ctx, tenantID, date)
}

// Close transitions OPEN -> CLOSED. Remaining drafts inside the period stay
// unpostable until a reopen; the caller is responsible for posting them first.
func (s *Service) Close(ctx context.Context, tenantID, periodID, actorID int64) (Period, error) {
	if actorID == 0 {
		return Period{}, errors.New("periods: actor required")
	}
	var period Period
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, tenantID, periodID)
		if err != nil {
			return err
		}
		if current.Status == PeriodStatusClosed {
			return shared.ErrPeriodAlreadyClosed
		}
		closedAt := s.now()
		period, err = tx.SetStatus(ctx, current.ID, PeriodStatusClosed, &actorID, &closedAt)
		return err
	})
	if err != nil {
		return Period{}, err
	}
	s.record(ctx, tenantID, actorID, "period.close", period.ID, map[string]any{"name": period.Name})
	return period, nil
}

// Reopen transitions CLOSED -> OPEN. The elevated capability is decided by
// the surrounding service and passed down as a flag; the ledger only checks it.
func (s *Service) Reopen(ctx context.Context, tenantID, periodID, actorID int64, allowed bool) (Period, error) {
	if actorID == 0 {
		return Period{}, errors.New("periods: actor required")
	}
	if !allowed {
		return Period{}, shared.ErrReopenNotAllowed
	}
	var period Period
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, tenantID, periodID)
		if err != nil {
			return err
		}
		if current.Status != PeriodStatusClosed {
			return shared.ErrPeriodNotClosed
		}
		period, err = tx.SetStatus(ctx, current.ID, PeriodStatusOpen, nil, nil)
		return err
	})
	if err != nil {
		return Period{}, err
	}
	s.record(ctx, tenantID, actorID, "period.reopen", period.ID, map[string]any{"name": period.Name})
	return period, nil
}

func (s *Service) record(ctx context.Context, tenantID, actorID int64, action string, periodID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, internalshared.AuditLog{
		TenantID: tenantID,
		ActorID:  actorID,
		Action:   action,
		Entity:   "fiscal_period",
		EntityID: fmt.Sprintf("%d", periodID),
		Meta:     meta,
		At:       s.now(),
	})
}

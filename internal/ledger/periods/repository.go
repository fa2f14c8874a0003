package periods

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quillbooks/quillbooks/internal/ledger/shared"
	"github.com/quillbooks/quillbooks/internal/platform/db"
)

// Repository encapsulates DB operations for fiscal periods.
type Repository interface {
	List(ctx context.Context, tenantID int64) ([]Period, error)
	Get(ctx context.Context, tenantID, id int64) (Period, error)
	FindByDate(ctx context.Context, tenantID int64, date time.Time) (Period, error)
	RangeConflict(ctx context.Context, tenantID int64, start, end time.Time) (bool, error)
	Insert(ctx context.Context, in CreateInput) (Period, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the period operations that need row locks.
type TxRepository interface {
	GetForUpdate(ctx context.Context, tenantID, id int64) (Period, error)
	SetStatus(ctx context.Context, id int64, status PeriodStatus, actorID *int64, at *time.Time) (Period, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds the pgx-backed periods repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const periodColumns = `id, tenant_id, name, start_date, end_date, status, closed_at, closed_by, created_at, updated_at`

func scanPeriod(row pgx.Row) (Period, error) {
	var p Period
	err := row.Scan(&p.ID, &p.TenantID, &p.Name, &p.StartDate, &p.EndDate, &p.Status, &p.ClosedAt, &p.ClosedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repository) List(ctx context.Context, tenantID int64) ([]Period, error) {
	rows, err := r.db.Query(ctx, `SELECT `+periodColumns+` FROM fiscal_periods WHERE tenant_id=$1 ORDER BY start_date`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, tenantID, id int64) (Period, error) {
	p, err := scanPeriod(r.db.QueryRow(ctx, `SELECT `+periodColumns+` FROM fiscal_periods WHERE tenant_id=$1 AND id=$2`, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, shared.ErrPeriodNotFound
		}
		return Period{}, err
	}
	return p, nil
}

// FindByDate returns the period covering the date regardless of status.
func (r *repository) FindByDate(ctx context.Context, tenantID int64, date time.Time) (Period, error) {
	p, err := scanPeriod(r.db.QueryRow(ctx, `SELECT `+periodColumns+` FROM fiscal_periods
WHERE tenant_id=$1 AND $2 BETWEEN start_date AND end_date ORDER BY start_date LIMIT 1`, tenantID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, shared.ErrNoPeriodForDate
		}
		return Period{}, err
	}
	return p, nil
}

func (r *repository) RangeConflict(ctx context.Context, tenantID int64, start, end time.Time) (bool, error) {
	var conflict bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (
	SELECT 1 FROM fiscal_periods WHERE tenant_id=$1 AND start_date <= $3 AND end_date >= $2
)`, tenantID, start, end).Scan(&conflict)
	return conflict, err
}

// Insert persists a new OPEN period. The exclusion constraint on the range
// catches an overlapping writer that raced past RangeConflict.
func (r *repository) Insert(ctx context.Context, in CreateInput) (Period, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO fiscal_periods (tenant_id, name, start_date, end_date, status)
VALUES ($1,$2,$3,$4,'OPEN') RETURNING `+periodColumns, in.TenantID, in.Name, in.StartDate, in.EndDate)
	p, err := scanPeriod(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23P01" {
			return Period{}, shared.ErrPeriodOverlap
		}
		return Period{}, err
	}
	return p, nil
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

// GetForUpdate locks the period row, serializing close/reopen against
// in-flight posts that lock the same row.
func (r *txRepository) GetForUpdate(ctx context.Context, tenantID, id int64) (Period, error) {
	p, err := scanPeriod(r.tx.QueryRow(ctx, `SELECT `+periodColumns+` FROM fiscal_periods WHERE tenant_id=$1 AND id=$2 FOR UPDATE`, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, shared.ErrPeriodNotFound
		}
		return Period{}, err
	}
	return p, nil
}

func (r *txRepository) SetStatus(ctx context.Context, id int64, status PeriodStatus, actorID *int64, at *time.Time) (Period, error) {
	row := r.tx.QueryRow(ctx, `UPDATE fiscal_periods SET status=$2, closed_by=$3, closed_at=$4, updated_at=NOW() WHERE id=$1 RETURNING `+periodColumns,
		id, status, actorID, at)
	p, err := scanPeriod(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, shared.ErrPeriodNotFound
		}
		return Period{}, err
	}
	return p, nil
}

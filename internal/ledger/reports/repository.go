package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository loads report inputs. Three framings cover the report surface:
// the stored running balances (since inception), the fold of lines up to a
// cutoff date, and the fold of lines inside a window. Reversed entries keep
// their lines in every fold; the reversal entry's mirrored lines cancel them.
type Repository interface {
	ActivityFromBalances(ctx context.Context, tenantID int64) ([]AccountActivity, error)
	ActivityAsOf(ctx context.Context, tenantID int64, asOf time.Time) ([]AccountActivity, error)
	ActivityInRange(ctx context.Context, tenantID int64, from, to time.Time) ([]AccountActivity, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds the pgx-backed reports repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const activityColumns = `a.id, a.parent_id, a.code, a.name, a.type, a.level`

// naturalSum folds line amounts into the account's natural sign convention:
// debit minus credit for debit-natural types, credit minus debit otherwise.
const naturalSum = `SUM(CASE WHEN a.type IN ('ASSET','EXPENSE') THEN l.debit - l.credit ELSE l.credit - l.debit END)`

func (r *repository) ActivityFromBalances(ctx context.Context, tenantID int64) ([]AccountActivity, error) {
	rows, err := r.db.Query(ctx, `SELECT `+activityColumns+`, a.balance
FROM accounts a WHERE a.tenant_id=$1 AND a.is_active ORDER BY a.code`, tenantID)
	if err != nil {
		return nil, err
	}
	return collectActivity(rows)
}

func (r *repository) ActivityAsOf(ctx context.Context, tenantID int64, asOf time.Time) ([]AccountActivity, error) {
	rows, err := r.db.Query(ctx, `SELECT `+activityColumns+`, COALESCE(`+naturalSum+`, 0)
FROM accounts a
LEFT JOIN (journal_entry_lines l
	JOIN journal_entries e ON e.id = l.entry_id AND e.status <> 'DRAFT' AND e.date <= $2
) ON l.account_id = a.id
WHERE a.tenant_id=$1 AND a.is_active
GROUP BY a.id ORDER BY a.code`, tenantID, asOf)
	if err != nil {
		return nil, err
	}
	return collectActivity(rows)
}

func (r *repository) ActivityInRange(ctx context.Context, tenantID int64, from, to time.Time) ([]AccountActivity, error) {
	rows, err := r.db.Query(ctx, `SELECT `+activityColumns+`, COALESCE(`+naturalSum+`, 0)
FROM accounts a
LEFT JOIN (journal_entry_lines l
	JOIN journal_entries e ON e.id = l.entry_id AND e.status <> 'DRAFT' AND e.date BETWEEN $2 AND $3
) ON l.account_id = a.id
WHERE a.tenant_id=$1 AND a.is_active
GROUP BY a.id ORDER BY a.code`, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	return collectActivity(rows)
}

func collectActivity(rows pgx.Rows) ([]AccountActivity, error) {
	defer rows.Close()
	var out []AccountActivity
	for rows.Next() {
		var row AccountActivity
		if err := rows.Scan(&row.ID, &row.ParentID, &row.Code, &row.Name, &row.Type, &row.Level, &row.Balance); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// MetricsPort counts repairs applied by the reconciler.
type MetricsPort interface {
	ReconcileDrift(n int)
}

// CacheBumper invalidates cached reports after balances change.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// Reconciler replays posted journal lines and compares the result against
// the stored account balances. The stored balance is a denormalized cache;
// if a bug or manual intervention ever desyncs it, this job finds and
// optionally repairs the drift. It also verifies that every fiscal period's
// posted debits equal its credits.
type Reconciler struct {
	db      *pgxpool.Pool
	logger  *slog.Logger
	metrics MetricsPort
	cache   CacheBumper
}

// NewReconciler constructs the reconciliation job handler.
func NewReconciler(db *pgxpool.Pool, logger *slog.Logger, metrics MetricsPort, cache CacheBumper) *Reconciler {
	return &Reconciler{db: db, logger: logger, metrics: metrics, cache: cache}
}

// Handle processes TaskTypeLedgerReconcile tasks.
func (r *Reconciler) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ReconcilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	repaired, err := r.reconcileBalances(ctx, payload)
	if err != nil {
		return err
	}
	if err := r.checkPeriodIntegrity(ctx, payload.TenantID); err != nil {
		return err
	}
	if repaired > 0 {
		if r.metrics != nil {
			r.metrics.ReconcileDrift(repaired)
		}
		if r.cache != nil {
			_ = r.cache.Bump(ctx)
		}
	}
	r.logger.Info("ledger reconciliation finished",
		slog.Int64("tenant_id", payload.TenantID),
		slog.Bool("repair", payload.Repair),
		slog.Int("repaired", repaired))
	return nil
}

type driftRow struct {
	accountID int64
	tenantID  int64
	code      string
	stored    decimal.Decimal
	replayed  decimal.Decimal
}

func (r *Reconciler) reconcileBalances(ctx context.Context, payload ReconcilePayload) (int, error) {
	rows, err := r.db.Query(ctx, `SELECT a.id, a.tenant_id, a.code, a.balance,
COALESCE(SUM(CASE WHEN a.type IN ('ASSET','EXPENSE') THEN l.debit - l.credit ELSE l.credit - l.debit END), 0) AS replayed
FROM accounts a
LEFT JOIN (journal_entry_lines l
	JOIN journal_entries e ON e.id = l.entry_id AND e.status <> 'DRAFT'
) ON l.account_id = a.id
WHERE ($1::bigint = 0 OR a.tenant_id = $1)
GROUP BY a.id
HAVING a.balance <> COALESCE(SUM(CASE WHEN a.type IN ('ASSET','EXPENSE') THEN l.debit - l.credit ELSE l.credit - l.debit END), 0)`,
		payload.TenantID)
	if err != nil {
		return 0, err
	}
	var drifts []driftRow
	for rows.Next() {
		var d driftRow
		if err := rows.Scan(&d.accountID, &d.tenantID, &d.code, &d.stored, &d.replayed); err != nil {
			rows.Close()
			return 0, err
		}
		drifts = append(drifts, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	repaired := 0
	for _, d := range drifts {
		r.logger.Warn("balance drift detected",
			slog.Int64("tenant_id", d.tenantID),
			slog.String("account", d.code),
			slog.String("stored", d.stored.String()),
			slog.String("replayed", d.replayed.String()))
		if !payload.Repair {
			continue
		}
		if _, err := r.db.Exec(ctx, `UPDATE accounts SET balance=$2, updated_at=NOW() WHERE id=$1`,
			d.accountID, d.replayed); err != nil {
			return repaired, err
		}
		repaired++
	}
	return repaired, nil
}

// checkPeriodIntegrity verifies that posted debits equal posted credits in
// every fiscal period. A mismatch cannot be auto-repaired; it means an entry
// escaped the balance invariant and needs a human.
func (r *Reconciler) checkPeriodIntegrity(ctx context.Context, tenantID int64) error {
	rows, err := r.db.Query(ctx, `SELECT e.tenant_id, e.period_id, SUM(l.debit), SUM(l.credit)
FROM journal_entries e
JOIN journal_entry_lines l ON l.entry_id = e.id
WHERE e.status <> 'DRAFT' AND ($1::bigint = 0 OR e.tenant_id = $1)
GROUP BY e.tenant_id, e.period_id
HAVING SUM(l.debit) <> SUM(l.credit)`, tenantID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var tenant, periodID int64
		var debit, credit decimal.Decimal
		if err := rows.Scan(&tenant, &periodID, &debit, &credit); err != nil {
			return err
		}
		r.logger.Error("period debits and credits do not match",
			slog.Int64("tenant_id", tenant),
			slog.Int64("period_id", periodID),
			slog.String("debit", debit.String()),
			slog.String("credit", credit.String()))
	}
	return rows.Err()
}

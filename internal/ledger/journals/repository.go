package journals

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/ledger/accounts"
	"github.com/quillbooks/quillbooks/internal/ledger/periods"
	"github.com/quillbooks/quillbooks/internal/ledger/shared"
	"github.com/quillbooks/quillbooks/internal/platform/db"
)

// Repository encapsulates DB operations for journal entries.
type Repository interface {
	Get(ctx context.Context, tenantID, entryID int64) (Entry, error)
	List(ctx context.Context, tenantID int64, filter ListFilter) ([]Entry, int, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the operations the entry state machine needs inside a
// single transaction. Period and account reads live here too so posting can
// lock and mutate rows without leaving the transaction.
type TxRepository interface {
	InsertEntry(ctx context.Context, e Entry) (Entry, error)
	InsertLines(ctx context.Context, entryID int64, lines []Line) error
	GetEntryForUpdate(ctx context.Context, tenantID, entryID int64) (Entry, error)
	GetLines(ctx context.Context, entryID int64) ([]Line, error)
	MarkPosted(ctx context.Context, entryID, actorID int64, at time.Time) (bool, error)
	MarkReversed(ctx context.Context, entryID, reversedByID int64) error
	DeleteEntry(ctx context.Context, tenantID, entryID int64) error

	GetPeriodByDate(ctx context.Context, tenantID int64, date time.Time) (periods.Period, error)
	GetPeriodForUpdate(ctx context.Context, tenantID, periodID int64) (periods.Period, error)

	GetPostableAccount(ctx context.Context, tenantID int64, code string) (accounts.Account, error)
	GetAccountByID(ctx context.Context, tenantID, accountID int64) (accounts.Account, error)
	ApplyBalance(ctx context.Context, accountID int64, delta decimal.Decimal) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds the pgx-backed journals repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const entryColumns = `id, tenant_id, number, date, memo, ref_type, ref_id, period_id, status, created_by, posted_by, posted_at, reversed_by_id, reversal_of_id, total_debit, total_credit, created_at, updated_at`

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	var refType *string
	err := row.Scan(&e.ID, &e.TenantID, &e.Number, &e.Date, &e.Memo, &refType, &e.RefID, &e.PeriodID, &e.Status, &e.CreatedBy,
		&e.PostedBy, &e.PostedAt, &e.ReversedByID, &e.ReversalOfID, &e.TotalDebit, &e.TotalCredit, &e.CreatedAt, &e.UpdatedAt)
	if refType != nil {
		e.RefType = RefType(*refType)
	}
	return e, err
}

func (r *repository) Get(ctx context.Context, tenantID, entryID int64) (Entry, error) {
	e, err := scanEntry(r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE tenant_id=$1 AND id=$2`, tenantID, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, shared.ErrEntryNotFound
		}
		return Entry{}, err
	}
	lines, err := queryLines(ctx, r.db, entryID)
	if err != nil {
		return Entry{}, err
	}
	e.Lines = lines
	return e, nil
}

func (r *repository) List(ctx context.Context, tenantID int64, filter ListFilter) ([]Entry, int, error) {
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	where := `WHERE tenant_id=$1 AND ($2::bigint = 0 OR period_id=$2) AND ($3::text = '' OR status=$3)`
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM journal_entries `+where, tenantID, filter.PeriodID, string(filter.Status)).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `SELECT `+entryColumns+` FROM journal_entries `+where+` ORDER BY number DESC LIMIT $4 OFFSET $5`,
		tenantID, filter.PeriodID, string(filter.Status), filter.PerPage, (filter.Page-1)*filter.PerPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryLines(ctx context.Context, q querier, entryID int64) ([]Line, error) {
	rows, err := q.Query(ctx, `SELECT id, entry_id, account_id, debit, credit, memo, position, created_at, updated_at
FROM journal_entry_lines WHERE entry_id=$1 ORDER BY position ASC`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.EntryID, &l.AccountID, &l.Debit, &l.Credit, &l.Memo, &l.Position, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

// InsertEntry persists the entry and assigns the next tenant-scoped number.
// The sequence row rolls back with a failed attempt, so numbers never repeat
// across committed entries but gaps can appear.
func (r *txRepository) InsertEntry(ctx context.Context, e Entry) (Entry, error) {
	var number int64
	err := r.tx.QueryRow(ctx, `INSERT INTO entry_sequences (tenant_id, last_number) VALUES ($1, 1)
ON CONFLICT (tenant_id) DO UPDATE SET last_number = entry_sequences.last_number + 1
RETURNING last_number`, e.TenantID).Scan(&number)
	if err != nil {
		return Entry{}, err
	}
	row := r.tx.QueryRow(ctx, `INSERT INTO journal_entries
(tenant_id, number, date, memo, ref_type, ref_id, period_id, status, created_by, posted_by, posted_at, reversal_of_id, total_debit, total_credit)
VALUES ($1,$2,$3,$4,NULLIF($5,''),$6,$7,$8,$9,$10,$11,$12,$13,$14)
RETURNING `+entryColumns,
		e.TenantID, number, e.Date, e.Memo, string(e.RefType), e.RefID, e.PeriodID, e.Status, e.CreatedBy,
		e.PostedBy, e.PostedAt, e.ReversalOfID, e.TotalDebit, e.TotalCredit)
	return scanEntry(row)
}

func (r *txRepository) InsertLines(ctx context.Context, entryID int64, lines []Line) error {
	for _, line := range lines {
		if _, err := r.tx.Exec(ctx, `INSERT INTO journal_entry_lines (entry_id, account_id, debit, credit, memo, position)
VALUES ($1,$2,$3,$4,$5,$6)`, entryID, line.AccountID, line.Debit, line.Credit, line.Memo, line.Position); err != nil {
			return err
		}
	}
	return nil
}

// GetEntryForUpdate locks the entry row so concurrent posts serialize.
func (r *txRepository) GetEntryForUpdate(ctx context.Context, tenantID, entryID int64) (Entry, error) {
	e, err := scanEntry(r.tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE tenant_id=$1 AND id=$2 FOR UPDATE`, tenantID, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, shared.ErrEntryNotFound
		}
		return Entry{}, err
	}
	return e, nil
}

func (r *txRepository) GetLines(ctx context.Context, entryID int64) ([]Line, error) {
	return queryLines(ctx, r.tx, entryID)
}

// MarkPosted flips DRAFT to POSTED. The status guard in the WHERE clause makes
// the flip conditional: of two racing posts exactly one reports true.
func (r *txRepository) MarkPosted(ctx context.Context, entryID, actorID int64, at time.Time) (bool, error) {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET status='POSTED', posted_by=$2, posted_at=$3, updated_at=NOW()
WHERE id=$1 AND status='DRAFT'`, entryID, actorID, at)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *txRepository) MarkReversed(ctx context.Context, entryID, reversedByID int64) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET status='REVERSED', reversed_by_id=$2, updated_at=NOW()
WHERE id=$1 AND status='POSTED'`, entryID, reversedByID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrEntryNotPosted
	}
	return nil
}

func (r *txRepository) DeleteEntry(ctx context.Context, tenantID, entryID int64) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM journal_entry_lines WHERE entry_id=$1`, entryID); err != nil {
		return err
	}
	cmd, err := r.tx.Exec(ctx, `DELETE FROM journal_entries WHERE tenant_id=$1 AND id=$2`, tenantID, entryID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrEntryNotFound
	}
	return nil
}

const periodColumns = `id, tenant_id, name, start_date, end_date, status, closed_at, closed_by, created_at, updated_at`

func scanPeriod(row pgx.Row) (periods.Period, error) {
	var p periods.Period
	err := row.Scan(&p.ID, &p.TenantID, &p.Name, &p.StartDate, &p.EndDate, &p.Status, &p.ClosedAt, &p.ClosedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *txRepository) GetPeriodByDate(ctx context.Context, tenantID int64, date time.Time) (periods.Period, error) {
	p, err := scanPeriod(r.tx.QueryRow(ctx, `SELECT `+periodColumns+` FROM fiscal_periods
WHERE tenant_id=$1 AND $2 BETWEEN start_date AND end_date ORDER BY start_date LIMIT 1`, tenantID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return periods.Period{}, shared.ErrNoPeriodForDate
		}
		return periods.Period{}, err
	}
	return p, nil
}

// GetPeriodForUpdate locks the period row for the duration of the posting
// transaction, making close/reopen mutually exclusive with in-flight posts.
func (r *txRepository) GetPeriodForUpdate(ctx context.Context, tenantID, periodID int64) (periods.Period, error) {
	p, err := scanPeriod(r.tx.QueryRow(ctx, `SELECT `+periodColumns+` FROM fiscal_periods WHERE tenant_id=$1 AND id=$2 FOR UPDATE`, tenantID, periodID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return periods.Period{}, shared.ErrPeriodNotFound
		}
		return periods.Period{}, err
	}
	return p, nil
}

const accountColumns = `id, tenant_id, code, name, name_alt, type, parent_id, level, is_active, is_system, balance, currency, created_at, updated_at`

func scanAccount(row pgx.Row) (accounts.Account, error) {
	var a accounts.Account
	err := row.Scan(&a.ID, &a.TenantID, &a.Code, &a.Name, &a.NameAlt, &a.Type, &a.ParentID, &a.Level, &a.IsActive, &a.IsSystem, &a.Balance, &a.Currency, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// GetPostableAccount resolves a line's account and enforces postability:
// the account must exist in the tenant, be active, and be a leaf node.
func (r *txRepository) GetPostableAccount(ctx context.Context, tenantID int64, code string) (accounts.Account, error) {
	a, err := scanAccount(r.tx.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE tenant_id=$1 AND code=$2`, tenantID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return accounts.Account{}, shared.ErrAccountNotFound
		}
		return accounts.Account{}, err
	}
	if !a.IsActive {
		return accounts.Account{}, shared.ErrAccountInactive
	}
	var hasChildren bool
	if err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE parent_id=$1)`, a.ID).Scan(&hasChildren); err != nil {
		return accounts.Account{}, err
	}
	if hasChildren {
		return accounts.Account{}, shared.ErrAccountNotPostable
	}
	return a, nil
}

func (r *txRepository) GetAccountByID(ctx context.Context, tenantID, accountID int64) (accounts.Account, error) {
	a, err := scanAccount(r.tx.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE tenant_id=$1 AND id=$2`, tenantID, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return accounts.Account{}, shared.ErrAccountNotFound
		}
		return accounts.Account{}, err
	}
	return a, nil
}

// ApplyBalance adds the signed delta to the account's running balance. The
// single UPDATE keeps concurrent posts on different entries from losing
// increments to the same account.
func (r *txRepository) ApplyBalance(ctx context.Context, accountID int64, delta decimal.Decimal) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE accounts SET balance = balance + $2, updated_at=NOW() WHERE id=$1`, accountID, delta)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}

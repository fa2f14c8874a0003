package accounts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quillbooks/quillbooks/internal/ledger/shared"
	"github.com/quillbooks/quillbooks/internal/platform/db"
)

// Repository encapsulates DB operations for the chart of accounts.
type Repository interface {
	List(ctx context.Context, tenantID int64) ([]Account, error)
	GetByCode(ctx context.Context, tenantID int64, code string) (Account, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes account operations available within a transaction.
type TxRepository interface {
	GetByCode(ctx context.Context, tenantID int64, code string) (Account, error)
	Insert(ctx context.Context, acc Account) (Account, error)
	UpdateDetails(ctx context.Context, in UpdateInput) (Account, error)
	Delete(ctx context.Context, tenantID, id int64) error
	HasChildren(ctx context.Context, id int64) (bool, error)
	HasLines(ctx context.Context, accountID int64) (bool, error)
	SubtreeHasLines(ctx context.Context, tenantID, rootID int64) (bool, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds the pgx-backed accounts repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const accountColumns = `id, tenant_id, code, name, name_alt, type, parent_id, level, is_active, is_system, balance, currency, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.TenantID, &a.Code, &a.Name, &a.NameAlt, &a.Type, &a.ParentID, &a.Level, &a.IsActive, &a.IsSystem, &a.Balance, &a.Currency, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *repository) List(ctx context.Context, tenantID int64) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE tenant_id=$1 ORDER BY code`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *repository) GetByCode(ctx context.Context, tenantID int64, code string) (Account, error) {
	return getByCode(ctx, r.db, tenantID, code)
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getByCode(ctx context.Context, q queryRower, tenantID int64, code string) (Account, error) {
	a, err := scanAccount(q.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE tenant_id=$1 AND code=$2`, tenantID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *txRepository) GetByCode(ctx context.Context, tenantID int64, code string) (Account, error) {
	return getByCode(ctx, r.tx, tenantID, code)
}

func (r *txRepository) Insert(ctx context.Context, acc Account) (Account, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO accounts (tenant_id, code, name, name_alt, type, parent_id, level, is_active, is_system, balance, currency)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,0,$10) RETURNING `+accountColumns,
		acc.TenantID, acc.Code, acc.Name, acc.NameAlt, acc.Type, acc.ParentID, acc.Level, acc.IsActive, acc.IsSystem, acc.Currency)
	inserted, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Account{}, shared.ErrDuplicateCode
		}
		return Account{}, err
	}
	return inserted, nil
}

func (r *txRepository) UpdateDetails(ctx context.Context, in UpdateInput) (Account, error) {
	row := r.tx.QueryRow(ctx, `UPDATE accounts
SET code=COALESCE($3, code), type=COALESCE($4, type), name=COALESCE($5, name), name_alt=COALESCE($6, name_alt), is_active=COALESCE($7, is_active), updated_at=NOW()
WHERE tenant_id=$1 AND code=$2 RETURNING `+accountColumns, in.TenantID, in.Code, in.NewCode, in.Type, in.Name, in.NameAlt, in.IsActive)
	updated, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Account{}, shared.ErrDuplicateCode
		}
		return Account{}, err
	}
	return updated, nil
}

func (r *txRepository) Delete(ctx context.Context, tenantID, id int64) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM accounts WHERE tenant_id=$1 AND id=$2`, tenantID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}

func (r *txRepository) HasChildren(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE parent_id=$1)`, id).Scan(&exists)
	return exists, err
}

// HasLines reports whether any journal line references the account itself.
func (r *txRepository) HasLines(ctx context.Context, accountID int64) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM journal_entry_lines WHERE account_id=$1)`, accountID).Scan(&exists)
	return exists, err
}

// SubtreeHasLines reports whether any journal line references the account or
// one of its descendants.
func (r *txRepository) SubtreeHasLines(ctx context.Context, tenantID, rootID int64) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `WITH RECURSIVE subtree AS (
	SELECT id FROM accounts WHERE tenant_id=$1 AND id=$2
	UNION ALL
	SELECT a.id FROM accounts a JOIN subtree s ON a.parent_id = s.id
)
SELECT EXISTS (SELECT 1 FROM journal_entry_lines l JOIN subtree s ON l.account_id = s.id)`, tenantID, rootID).Scan(&exists)
	return exists, err
}

// Package balances turns journal legs into signed balance movements using the
// natural-polarity table. Posting a mirror entry is how reversal works in the
// journal engine, so this table is the single source of truth for both
// directions; Reverse exists for the reconciliation job, which replays lines
// backwards when repairing drift.
package balances

import (
	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/ledger/accounts"
)

// Direction selects whether a line is applied or unwound.
type Direction int

const (
	// Post applies the natural effect of the line.
	Post Direction = iota
	// Reverse applies the inverse of the natural effect.
	Reverse
)

// NaturalDebit reports whether the category grows on the debit side.
// ASSET and EXPENSE are debit-natural; LIABILITY, EQUITY, and REVENUE grow on
// the credit side.
func NaturalDebit(t accounts.AccountType) bool {
	switch t {
	case accounts.AccountTypeAsset, accounts.AccountTypeExpense:
		return true
	default:
		return false
	}
}

// Delta computes the signed movement a line applies to an account's running
// balance. A debit grows a debit-natural account and shrinks a credit-natural
// one; credits do the opposite. Reverse negates the whole effect.
func Delta(t accounts.AccountType, debit, credit decimal.Decimal, dir Direction) decimal.Decimal {
	d := debit.Sub(credit)
	if !NaturalDebit(t) {
		d = d.Neg()
	}
	if dir == Reverse {
		d = d.Neg()
	}
	return d
}

// Columns splits a running balance into trial-balance debit/credit columns in
// the account's natural polarity. Negative balances flip the column.
func Columns(t accounts.AccountType, balance decimal.Decimal) (debit, credit decimal.Decimal) {
	if balance.IsNegative() {
		if NaturalDebit(t) {
			return decimal.Zero, balance.Neg()
		}
		return balance.Neg(), decimal.Zero
	}
	if NaturalDebit(t) {
		return balance, decimal.Zero
	}
	return decimal.Zero, balance
}

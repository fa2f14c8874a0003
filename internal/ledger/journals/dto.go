package journals

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/ledger/shared"
)

// Epsilon is the balance tolerance: one minor currency unit. Totals differing
// by more than this are rejected as unbalanced.
var Epsilon = decimal.New(1, -2)

// LineInput describes one leg of a requested entry. Accounts are addressed by
// code; resolution to ids happens inside the creating transaction.
type LineInput struct {
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Memo        string
}

// CreateInput groups the fields required to draft a journal entry.
type CreateInput struct {
	TenantID int64
	Date     time.Time
	Memo     string
	RefType  RefType
	RefID    uuid.UUID
	ActorID  int64
	Lines    []LineInput
}

// Totals sums the requested legs.
func (in CreateInput) Totals() (debit, credit decimal.Decimal) {
	for _, line := range in.Lines {
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	return debit, credit
}

// Validate ensures the draft meets the double-entry invariants before any row
// is written: at least two lines, each line exactly one of debit/credit > 0,
// and totals balanced within Epsilon.
func (in CreateInput) Validate() error {
	if in.TenantID == 0 {
		return errors.New("journals: tenant required")
	}
	if in.ActorID == 0 {
		return errors.New("journals: actor required")
	}
	if in.Date.IsZero() {
		return errors.New("journals: date required")
	}
	if in.RefType != "" && !in.RefType.Valid() {
		return fmt.Errorf("journals: unknown reference type %q", in.RefType)
	}
	if len(in.Lines) < 2 {
		return shared.ErrTooFewLines
	}
	for idx, line := range in.Lines {
		if strings.TrimSpace(line.AccountCode) == "" {
			return fmt.Errorf("%w: line %d missing account", shared.ErrMalformedLine, idx)
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return fmt.Errorf("%w: line %d negative amount", shared.ErrMalformedLine, idx)
		}
		debitSet := line.Debit.IsPositive()
		creditSet := line.Credit.IsPositive()
		if debitSet == creditSet {
			return fmt.Errorf("%w: line %d", shared.ErrMalformedLine, idx)
		}
	}
	debit, credit := in.Totals()
	if debit.Sub(credit).Abs().GreaterThan(Epsilon) {
		return fmt.Errorf("%w: debit %s vs credit %s", shared.ErrUnbalancedEntry, debit, credit)
	}
	return nil
}

// ReverseInput wraps parameters for reversal. Date is optional; when nil the
// mirror entry lands on the original entry's date.
type ReverseInput struct {
	TenantID int64
	EntryID  int64
	ActorID  int64
	Memo     string
	Date     *time.Time
}

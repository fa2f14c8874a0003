package journals

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryStatus enumerates the journal entry lifecycle. Transitions are
// one-directional: DRAFT -> POSTED -> REVERSED. Drafts may also be deleted.
type EntryStatus string

const (
	EntryStatusDraft    EntryStatus = "DRAFT"
	EntryStatusPosted   EntryStatus = "POSTED"
	EntryStatusReversed EntryStatus = "REVERSED"
)

// RefType tags the producer record an entry originated from. The ledger never
// dereferences these; they exist so producers can find their postings.
type RefType string

const (
	RefTypeInvoice  RefType = "INVOICE"
	RefTypePayment  RefType = "PAYMENT"
	RefTypeExpense  RefType = "EXPENSE"
	RefTypeSalary   RefType = "SALARY"
	RefTypeRefund   RefType = "REFUND"
	RefTypeDiscount RefType = "DISCOUNT"
	RefTypeManual   RefType = "MANUAL"
	RefTypeReversal RefType = "REVERSAL"
)

// Valid reports whether t is a known reference type.
func (t RefType) Valid() bool {
	switch t {
	case RefTypeInvoice, RefTypePayment, RefTypeExpense, RefTypeSalary,
		RefTypeRefund, RefTypeDiscount, RefTypeManual, RefTypeReversal:
		return true
	default:
		return false
	}
}

// Entry is an atomic, balanced transaction. TotalDebit and TotalCredit are
// precomputed from the lines so the balance invariant can be re-checked
// without loading them.
type Entry struct {
	ID           int64
	TenantID     int64
	Number       int64
	Date         time.Time
	Memo         string
	RefType      RefType
	RefID        uuid.UUID
	PeriodID     int64
	Status       EntryStatus
	CreatedBy    int64
	PostedBy     *int64
	PostedAt     *time.Time
	ReversedByID *int64
	ReversalOfID *int64
	TotalDebit   decimal.Decimal
	TotalCredit  decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Lines        []Line
}

// Line is one debit or credit leg of an entry. Exactly one of Debit/Credit is
// non-zero; Position is unique within the entry.
type Line struct {
	ID        int64
	EntryID   int64
	AccountID int64
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Memo      string
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListFilter narrows entry listings.
type ListFilter struct {
	PeriodID int64
	Status   EntryStatus
	Page     int
	PerPage  int
}

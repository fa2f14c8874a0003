// Package shared holds the error taxonomy used across the ledger packages.
package shared

import "errors"

// Validation failures: the caller's input broke an invariant.
var (
	// ErrUnbalancedEntry indicates total debit != total credit.
	ErrUnbalancedEntry = errors.New("ledger: entry debits and credits must balance")
	// ErrTooFewLines indicates fewer than two lines.
	ErrTooFewLines = errors.New("ledger: entry requires at least two lines")
	// ErrMalformedLine indicates a line with both or neither of debit/credit set.
	ErrMalformedLine = errors.New("ledger: line must carry exactly one of debit or credit")
)

// Conflicts: the request collides with existing state.
var (
	// ErrDuplicateCode indicates the account code already exists in the tenant.
	ErrDuplicateCode = errors.New("ledger: account code already exists")
	// ErrPeriodOverlap indicates the period range intersects an existing one.
	ErrPeriodOverlap = errors.New("ledger: period overlaps existing range")
	// ErrEntryAlreadyPosted indicates the entry left DRAFT already.
	ErrEntryAlreadyPosted = errors.New("ledger: entry already posted")
	// ErrEntryReversed indicates the entry is REVERSED and terminal.
	ErrEntryReversed = errors.New("ledger: entry already reversed")
	// ErrPeriodAlreadyClosed indicates a second close attempt.
	ErrPeriodAlreadyClosed = errors.New("ledger: period already closed")
	// ErrPeriodNotClosed indicates reopen on an open period.
	ErrPeriodNotClosed = errors.New("ledger: period is not closed")
)

// State errors: the operation is not valid for the current lifecycle stage.
var (
	// ErrPeriodClosed indicates posting or reversing into a closed period.
	ErrPeriodClosed = errors.New("ledger: period is closed")
	// ErrEntryNotDraft indicates editing or deleting a non-draft entry.
	ErrEntryNotDraft = errors.New("ledger: entry is not a draft")
	// ErrEntryNotPosted indicates reversing an entry that was never posted.
	ErrEntryNotPosted = errors.New("ledger: entry is not posted")
	// ErrReopenNotAllowed indicates the caller lacks the reopen capability.
	ErrReopenNotAllowed = errors.New("ledger: reopen requires elevated privileges")
	// ErrAccountImmutable indicates a code/type change blocked by existing
	// postings or children.
	ErrAccountImmutable = errors.New("ledger: account code and type can no longer change")
	// ErrAccountInactive indicates a line referencing a deactivated account.
	ErrAccountInactive = errors.New("ledger: account is inactive")
	// ErrAccountNotPostable indicates a line referencing an aggregation node.
	ErrAccountNotPostable = errors.New("ledger: account has children and cannot take postings")
)

// Dependency errors: deletion blocked by references.
var (
	// ErrAccountInUse indicates journal lines reference the account or a descendant.
	ErrAccountInUse = errors.New("ledger: account is referenced by journal lines")
	// ErrSystemAccount indicates a seeded, structurally required account.
	ErrSystemAccount = errors.New("ledger: system account cannot be deleted")
)

// Not-found errors.
var (
	// ErrAccountNotFound indicates no account for the tenant and code.
	ErrAccountNotFound = errors.New("ledger: account not found")
	// ErrParentNotFound indicates the requested parent code does not exist.
	ErrParentNotFound = errors.New("ledger: parent account not found")
	// ErrPeriodNotFound indicates no period with the given id.
	ErrPeriodNotFound = errors.New("ledger: period not found")
	// ErrEntryNotFound indicates no journal entry with the given id.
	ErrEntryNotFound = errors.New("ledger: journal entry not found")
	// ErrNoPeriodForDate indicates no period covers the entry date.
	ErrNoPeriodForDate = errors.New("ledger: no fiscal period covers the date")
	// ErrParentTypeMismatch indicates a child category differing from its parent.
	ErrParentTypeMismatch = errors.New("ledger: child account must share its parent's type")
)

package accounts

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType enumerates CoA categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// Valid reports whether t is one of the five categories.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	default:
		return false
	}
}

// Account models a chart of accounts node. Balance is a denormalized cache
// maintained exclusively by journal posting; parents never accumulate their
// children here, rollups happen at report time.
type Account struct {
	ID        int64
	TenantID  int64
	Code      string
	Name      string
	NameAlt   string
	Type      AccountType
	ParentID  *int64
	Level     int
	IsActive  bool
	IsSystem  bool
	Balance   decimal.Decimal
	Currency  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TreeNode is an account with its nested children, ordered by code.
type TreeNode struct {
	Account
	Children []*TreeNode
}

// CreateInput groups fields required to create an account.
type CreateInput struct {
	TenantID   int64
	Code       string
	Name       string
	NameAlt    string
	Type       AccountType
	Currency   string
	ParentCode string
}

// UpdateInput carries the mutable account fields. Nil means leave unchanged.
// NewCode and Type are honoured only while nothing references the account.
type UpdateInput struct {
	TenantID int64
	Code     string
	NewCode  *string
	Type     *AccountType
	Name     *string
	NameAlt  *string
	IsActive *bool
}

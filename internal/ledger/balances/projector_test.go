package balances

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/quillbooks/quillbooks/internal/ledger/accounts"
	_ "github.com/quillbooks/quillbooks/testing"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDelta(t *testing.T) {
	cases := []struct {
		name   string
		typ    accounts.AccountType
		debit  string
		credit string
		dir    Direction
		want   string
	}{
		{"asset debit grows", accounts.AccountTypeAsset, "100", "0", Post, "100"},
		{"asset credit shrinks", accounts.AccountTypeAsset, "0", "40", Post, "-40"},
		{"expense debit grows", accounts.AccountTypeExpense, "25.50", "0", Post, "25.50"},
		{"liability credit grows", accounts.AccountTypeLiability, "0", "100", Post, "100"},
		{"liability debit shrinks", accounts.AccountTypeLiability, "30", "0", Post, "-30"},
		{"equity credit grows", accounts.AccountTypeEquity, "0", "500", Post, "500"},
		{"revenue credit grows", accounts.AccountTypeRevenue, "0", "1000", Post, "1000"},
		{"revenue debit shrinks", accounts.AccountTypeRevenue, "1000", "0", Post, "-1000"},
		{"reverse negates asset debit", accounts.AccountTypeAsset, "100", "0", Reverse, "-100"},
		{"reverse negates revenue credit", accounts.AccountTypeRevenue, "0", "1000", Reverse, "-1000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Delta(tc.typ, dec(tc.debit), dec(tc.credit), tc.dir)
			assert.True(t, got.Equal(dec(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestDeltaReverseCancelsPost(t *testing.T) {
	for _, typ := range []accounts.AccountType{
		accounts.AccountTypeAsset,
		accounts.AccountTypeLiability,
		accounts.AccountTypeEquity,
		accounts.AccountTypeRevenue,
		accounts.AccountTypeExpense,
	} {
		posted := Delta(typ, dec("123.45"), dec("0"), Post)
		reversed := Delta(typ, dec("123.45"), dec("0"), Reverse)
		assert.True(t, posted.Add(reversed).IsZero(), "type %s did not cancel", typ)
	}
}

func TestColumns(t *testing.T) {
	debit, credit := Columns(accounts.AccountTypeAsset, dec("150"))
	assert.True(t, debit.Equal(dec("150")))
	assert.True(t, credit.IsZero())

	debit, credit = Columns(accounts.AccountTypeRevenue, dec("900"))
	assert.True(t, debit.IsZero())
	assert.True(t, credit.Equal(dec("900")))

	// Negative balances flip columns.
	debit, credit = Columns(accounts.AccountTypeAsset, dec("-10"))
	assert.True(t, debit.IsZero())
	assert.True(t, credit.Equal(dec("10")))

	debit, credit = Columns(accounts.AccountTypeLiability, dec("-20"))
	assert.True(t, debit.Equal(dec("20")))
	assert.True(t, credit.IsZero())
}

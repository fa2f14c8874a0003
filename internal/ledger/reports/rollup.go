package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/ledger/accounts"
)

// AccountActivity is the report input: one row per active account with its
// signed balance in the account's natural convention. Depending on the
// requested framing the balance is either the stored running balance or a
// fold of the lines inside a date window; the builders do not care which.
type AccountActivity struct {
	ID       int64
	ParentID *int64
	Code     string
	Name     string
	Type     accounts.AccountType
	Level    int
	Balance  decimal.Decimal
}

// rollup computes, for every account, the sum of its subtree's leaf balances.
// Parents are pure aggregation nodes: their own stored balance is always zero
// (leaf-only posting), so the reported amount of a parent is exactly its
// descendants' total and nothing is ever counted twice.
func rollup(rows []AccountActivity) (amounts map[int64]decimal.Decimal, leaf map[int64]bool) {
	children := make(map[int64][]int64, len(rows))
	byID := make(map[int64]AccountActivity, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
		if row.ParentID != nil {
			children[*row.ParentID] = append(children[*row.ParentID], row.ID)
		}
	}
	amounts = make(map[int64]decimal.Decimal, len(rows))
	leaf = make(map[int64]bool, len(rows))
	var sum func(id int64) decimal.Decimal
	sum = func(id int64) decimal.Decimal {
		if got, ok := amounts[id]; ok {
			return got
		}
		kids := children[id]
		if len(kids) == 0 {
			leaf[id] = true
			amounts[id] = byID[id].Balance
			return amounts[id]
		}
		total := decimal.Zero
		for _, kid := range kids {
			total = total.Add(sum(kid))
		}
		amounts[id] = total
		return total
	}
	for _, row := range rows {
		sum(row.ID)
	}
	return amounts, leaf
}

func sortByCode(rows []AccountActivity) []AccountActivity {
	out := make([]AccountActivity, len(rows))
	copy(out, rows)
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

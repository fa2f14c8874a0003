package reports

import (
	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/ledger/balances"
	"github.com/quillbooks/quillbooks/internal/ledger/journals"
)

// TrialBalanceRow is one account expressed in its natural polarity.
type TrialBalanceRow struct {
	Code    string
	Name    string
	Type    string
	Level   int
	Rollup  bool
	Debit   decimal.Decimal
	Credit  decimal.Decimal
}

// TrialBalance lists every account's balance split into debit/credit columns.
// IsBalanced is the primary consistency check exposed to operators: it must
// hold for any tenant whose entries all went through the posting path.
type TrialBalance struct {
	Rows        []TrialBalanceRow
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	IsBalanced  bool
}

// BuildTrialBalance converts account activity into trial balance rows.
// Parent rows carry their subtree totals and are excluded from the report
// totals so nothing counts twice.
func BuildTrialBalance(rows []AccountActivity) TrialBalance {
	amounts, leaf := rollup(rows)
	result := TrialBalance{}
	for _, row := range sortByCode(rows) {
		debit, credit := balances.Columns(row.Type, amounts[row.ID])
		result.Rows = append(result.Rows, TrialBalanceRow{
			Code:   row.Code,
			Name:   row.Name,
			Type:   string(row.Type),
			Level:  row.Level,
			Rollup: !leaf[row.ID],
			Debit:  debit,
			Credit: credit,
		})
		if leaf[row.ID] {
			result.TotalDebit = result.TotalDebit.Add(debit)
			result.TotalCredit = result.TotalCredit.Add(credit)
		}
	}
	result.IsBalanced = result.TotalDebit.Sub(result.TotalCredit).Abs().LessThanOrEqual(journals.Epsilon)
	return result
}

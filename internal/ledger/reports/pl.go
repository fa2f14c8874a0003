package reports

import (
	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/ledger/accounts"
)

// IncomeStatementRow summarises a revenue or expense account.
type IncomeStatementRow struct {
	Code   string
	Name   string
	Level  int
	Rollup bool
	Amount decimal.Decimal
}

// IncomeStatementSection groups accounts by nature.
type IncomeStatementSection struct {
	Label    string
	Accounts []IncomeStatementRow
	Total    decimal.Decimal
}

// IncomeStatement contains revenue and expense totals and the net result.
type IncomeStatement struct {
	Revenue       IncomeStatementSection
	Expenses      IncomeStatementSection
	TotalRevenue  decimal.Decimal
	TotalExpenses decimal.Decimal
	NetIncome     decimal.Decimal
}

// BuildIncomeStatement aggregates REVENUE and EXPENSE activity. Balances come
// in natural-positive form, so both section totals read as positive numbers
// and net income is simply revenue minus expenses.
func BuildIncomeStatement(rows []AccountActivity) IncomeStatement {
	amounts, leaf := rollup(rows)
	revenue := IncomeStatementSection{Label: "Revenue"}
	expenses := IncomeStatementSection{Label: "Expenses"}
	for _, row := range sortByCode(rows) {
		item := IncomeStatementRow{
			Code:   row.Code,
			Name:   row.Name,
			Level:  row.Level,
			Rollup: !leaf[row.ID],
			Amount: amounts[row.ID],
		}
		switch row.Type {
		case accounts.AccountTypeRevenue:
			revenue.Accounts = append(revenue.Accounts, item)
			if leaf[row.ID] {
				revenue.Total = revenue.Total.Add(item.Amount)
			}
		case accounts.AccountTypeExpense:
			expenses.Accounts = append(expenses.Accounts, item)
			if leaf[row.ID] {
				expenses.Total = expenses.Total.Add(item.Amount)
			}
		}
	}
	return IncomeStatement{
		Revenue:       revenue,
		Expenses:      expenses,
		TotalRevenue:  revenue.Total,
		TotalExpenses: expenses.Total,
		NetIncome:     revenue.Total.Sub(expenses.Total),
	}
}

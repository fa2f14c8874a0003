package reports

import (
	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/ledger/accounts"
	"github.com/quillbooks/quillbooks/internal/ledger/journals"
)

// BalanceSheetRow summarises an account for assets, liabilities, or equity.
type BalanceSheetRow struct {
	Code    string
	Name    string
	Level   int
	Rollup  bool
	Balance decimal.Decimal
}

// BalanceSheetSection contains the accounts and total for a classification.
type BalanceSheetSection struct {
	Label    string
	Accounts []BalanceSheetRow
	Total    decimal.Decimal
}

// BalanceSheet is the structured response for the balance sheet report.
// IsBalanced is the accounting-equation invariant: assets must equal
// liabilities plus equity whenever every posting used the sign table.
type BalanceSheet struct {
	Assets                    BalanceSheetSection
	Liabilities               BalanceSheetSection
	Equity                    BalanceSheetSection
	CurrentEarnings           decimal.Decimal
	TotalAssets               decimal.Decimal
	TotalLiabilities          decimal.Decimal
	TotalEquity               decimal.Decimal
	TotalLiabilitiesAndEquity decimal.Decimal
	IsBalanced                bool
}

// BuildBalanceSheet aggregates balances into the three sections. It takes all
// five categories: revenue and expense balances that have not been closed into
// retained earnings fold into equity as a synthetic current-earnings line,
// which is what makes the accounting equation hold mid-year.
func BuildBalanceSheet(rows []AccountActivity) BalanceSheet {
	amounts, leaf := rollup(rows)
	assets := BalanceSheetSection{Label: "Assets"}
	liabilities := BalanceSheetSection{Label: "Liabilities"}
	equity := BalanceSheetSection{Label: "Equity"}
	earnings := decimal.Zero
	for _, row := range sortByCode(rows) {
		switch row.Type {
		case accounts.AccountTypeRevenue:
			if leaf[row.ID] {
				earnings = earnings.Add(amounts[row.ID])
			}
			continue
		case accounts.AccountTypeExpense:
			if leaf[row.ID] {
				earnings = earnings.Sub(amounts[row.ID])
			}
			continue
		}
		item := BalanceSheetRow{
			Code:    row.Code,
			Name:    row.Name,
			Level:   row.Level,
			Rollup:  !leaf[row.ID],
			Balance: amounts[row.ID],
		}
		var section *BalanceSheetSection
		switch row.Type {
		case accounts.AccountTypeAsset:
			section = &assets
		case accounts.AccountTypeLiability:
			section = &liabilities
		case accounts.AccountTypeEquity:
			section = &equity
		default:
			continue
		}
		section.Accounts = append(section.Accounts, item)
		if leaf[row.ID] {
			section.Total = section.Total.Add(item.Balance)
		}
	}
	totalEquity := equity.Total.Add(earnings)
	liabilitiesAndEquity := liabilities.Total.Add(totalEquity)
	return BalanceSheet{
		Assets:                    assets,
		Liabilities:               liabilities,
		Equity:                    equity,
		CurrentEarnings:           earnings,
		TotalAssets:               assets.Total,
		TotalLiabilities:          liabilities.Total,
		TotalEquity:               totalEquity,
		TotalLiabilitiesAndEquity: liabilitiesAndEquity,
		IsBalanced:                assets.Total.Sub(liabilitiesAndEquity).Abs().LessThanOrEqual(journals.Epsilon),
	}
}

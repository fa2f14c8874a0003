package reports

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// FormatAmount renders a balance with thousands grouping and two decimal
// places for report displays. Calculations stay on decimal.Decimal; this is
// presentation only.
func FormatAmount(d decimal.Decimal) string {
	return printer.Sprintf("%v", number.Decimal(d.InexactFloat64(),
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// TrialBalanceViewModel holds display data for the trial balance report.
type TrialBalanceViewModel struct {
	TenantID    int64        `json:"tenant_id"`
	AsOf        string       `json:"as_of,omitempty"`
	Report      TrialBalance `json:"report"`
	TotalDebit  string       `json:"total_debit"`
	TotalCredit string       `json:"total_credit"`
}

// NewTrialBalanceViewModel decorates a trial balance with formatted totals.
func NewTrialBalanceViewModel(tenantID int64, asOf string, tb TrialBalance) TrialBalanceViewModel {
	return TrialBalanceViewModel{
		TenantID:    tenantID,
		AsOf:        asOf,
		Report:      tb,
		TotalDebit:  FormatAmount(tb.TotalDebit),
		TotalCredit: FormatAmount(tb.TotalCredit),
	}
}

// IncomeStatementViewModel holds display data for the income statement.
type IncomeStatementViewModel struct {
	TenantID  int64           `json:"tenant_id"`
	From      string          `json:"from,omitempty"`
	To        string          `json:"to,omitempty"`
	Report    IncomeStatement `json:"report"`
	NetIncome string          `json:"net_income"`
}

// NewIncomeStatementViewModel decorates an income statement with formatted totals.
func NewIncomeStatementViewModel(tenantID int64, from, to string, pl IncomeStatement) IncomeStatementViewModel {
	return IncomeStatementViewModel{
		TenantID:  tenantID,
		From:      from,
		To:        to,
		Report:    pl,
		NetIncome: FormatAmount(pl.NetIncome),
	}
}

// BalanceSheetViewModel holds display data for the balance sheet.
type BalanceSheetViewModel struct {
	TenantID                  int64        `json:"tenant_id"`
	AsOf                      string       `json:"as_of,omitempty"`
	Report                    BalanceSheet `json:"report"`
	TotalAssets               string       `json:"total_assets"`
	TotalLiabilitiesAndEquity string       `json:"total_liabilities_and_equity"`
}

// NewBalanceSheetViewModel decorates a balance sheet with formatted totals.
func NewBalanceSheetViewModel(tenantID int64, asOf string, bs BalanceSheet) BalanceSheetViewModel {
	return BalanceSheetViewModel{
		TenantID:                  tenantID,
		AsOf:                      asOf,
		Report:                    bs,
		TotalAssets:               FormatAmount(bs.TotalAssets),
		TotalLiabilitiesAndEquity: FormatAmount(bs.TotalLiabilitiesAndEquity),
	}
}

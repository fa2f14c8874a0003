package accounts

// SeedEntry describes one node of the default chart of accounts installed
// during tenant onboarding. ParentCode empty means root.
type SeedEntry struct {
	Code       string
	Name       string
	Type       AccountType
	ParentCode string
	IsSystem   bool
}

// DefaultChart is the chart seeded for every new tenant. The five category
// roots and the nodes other modules rely on are system-protected. Seeding is
// idempotent: codes already present in the tenant are skipped.
var DefaultChart = []SeedEntry{
	// Assets (1xxx)
	{Code: "1000", Name: "Assets", Type: AccountTypeAsset, IsSystem: true},
	{Code: "1100", Name: "Current Assets", Type: AccountTypeAsset, ParentCode: "1000", IsSystem: true},
	{Code: "1110", Name: "Cash", Type: AccountTypeAsset, ParentCode: "1100", IsSystem: true},
	{Code: "1120", Name: "Bank", Type: AccountTypeAsset, ParentCode: "1100"},
	{Code: "1130", Name: "Accounts Receivable", Type: AccountTypeAsset, ParentCode: "1100", IsSystem: true},
	{Code: "1140", Name: "Prepaid Expenses", Type: AccountTypeAsset, ParentCode: "1100"},
	{Code: "1200", Name: "Fixed Assets", Type: AccountTypeAsset, ParentCode: "1000"},
	{Code: "1210", Name: "Property & Equipment", Type: AccountTypeAsset, ParentCode: "1200"},

	// Liabilities (2xxx)
	{Code: "2000", Name: "Liabilities", Type: AccountTypeLiability, IsSystem: true},
	{Code: "2100", Name: "Accounts Payable", Type: AccountTypeLiability, ParentCode: "2000", IsSystem: true},
	{Code: "2200", Name: "Accrued Expenses", Type: AccountTypeLiability, ParentCode: "2000"},
	{Code: "2300", Name: "Tax Payable", Type: AccountTypeLiability, ParentCode: "2000", IsSystem: true},
	{Code: "2400", Name: "Unearned Revenue", Type: AccountTypeLiability, ParentCode: "2000"},

	// Equity (3xxx)
	{Code: "3000", Name: "Equity", Type: AccountTypeEquity, IsSystem: true},
	{Code: "3100", Name: "Capital", Type: AccountTypeEquity, ParentCode: "3000", IsSystem: true},
	{Code: "3200", Name: "Retained Earnings", Type: AccountTypeEquity, ParentCode: "3000", IsSystem: true},

	// Revenue (4xxx)
	{Code: "4000", Name: "Revenue", Type: AccountTypeRevenue, IsSystem: true},
	{Code: "4100", Name: "Tuition Revenue", Type: AccountTypeRevenue, ParentCode: "4000"},
	{Code: "4200", Name: "Fee Income", Type: AccountTypeRevenue, ParentCode: "4000"},
	{Code: "4900", Name: "Other Income", Type: AccountTypeRevenue, ParentCode: "4000"},

	// Expenses (5xxx)
	{Code: "5000", Name: "Expenses", Type: AccountTypeExpense, IsSystem: true},
	{Code: "5100", Name: "Salaries and Wages", Type: AccountTypeExpense, ParentCode: "5000"},
	{Code: "5200", Name: "Rent", Type: AccountTypeExpense, ParentCode: "5000"},
	{Code: "5300", Name: "Utilities", Type: AccountTypeExpense, ParentCode: "5000"},
	{Code: "5400", Name: "Supplies", Type: AccountTypeExpense, ParentCode: "5000"},
	{Code: "5900", Name: "Other Expenses", Type: AccountTypeExpense, ParentCode: "5000"},
}

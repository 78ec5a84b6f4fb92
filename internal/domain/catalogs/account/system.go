package account

// Well-known codes of system accounts seeded for every tenant. The posting
// flows resolve these by code; deleting them is rejected.
const (
	CodeCash               = "1001"
	CodeBank               = "1002"
	CodeAccountsReceivable = "1100"
	CodeInventory          = "1200"
	CodeVendorAdvances     = "1300"
	CodeAccountsPayable    = "2001"
	CodeCGSTPayable        = "2101"
	CodeSGSTPayable        = "2102"
	CodeIGSTPayable        = "2103"
	CodeCustomerAdvances   = "2200"
	CodeOpeningEquity      = "3001"
	CodeSales              = "4001"
	CodeSalesReturns       = "4002"
	CodeDiscountReceived   = "4003"
	CodePurchases          = "5001"
	CodeCOGS               = "5101"
	CodeDiscountGiven      = "6001"
)

// SeedAccount describes one row of the default chart of accounts.
type SeedAccount struct {
	Code    string
	Name    string
	Type    Type
	Subtype Subtype
}

// DefaultChart is the chart of accounts seeded for a new tenant.
func DefaultChart() []SeedAccount {
	return []SeedAccount{
		{CodeCash, "Cash in Hand", TypeAsset, SubtypeCurrent},
		{CodeBank, "Bank Accounts", TypeAsset, SubtypeCurrent},
		{CodeAccountsReceivable, "Accounts Receivable", TypeAsset, SubtypeCurrent},
		{CodeInventory, "Inventory", TypeAsset, SubtypeCurrent},
		{CodeVendorAdvances, "Advances to Vendors", TypeAsset, SubtypeCurrent},
		{CodeAccountsPayable, "Accounts Payable", TypeLiability, SubtypeCurrent},
		{CodeCGSTPayable, "CGST Payable", TypeLiability, SubtypeCurrent},
		{CodeSGSTPayable, "SGST Payable", TypeLiability, SubtypeCurrent},
		{CodeIGSTPayable, "IGST Payable", TypeLiability, SubtypeCurrent},
		{CodeCustomerAdvances, "Advances from Customers", TypeLiability, SubtypeCurrent},
		{CodeOpeningEquity, "Opening Balance Equity", TypeEquity, SubtypeOther},
		{CodeSales, "Sales", TypeIncome, SubtypeOther},
		{CodeSalesReturns, "Sales Returns", TypeIncome, SubtypeOther},
		{CodeDiscountReceived, "Discount Received", TypeIncome, SubtypeOther},
		{CodePurchases, "Purchases", TypeExpense, SubtypeOther},
		{CodeCOGS, "Cost of Goods Sold", TypeCOGS, SubtypeOther},
		{CodeDiscountGiven, "Discount Given", TypeExpense, SubtypeOther},
	}
}

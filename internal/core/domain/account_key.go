package domain

// AccountKey is a stable, display-name independent identifier for an account the
// auto-voucher engine posts to.
type AccountKey string

const (
	KeyCustomerReceivable   AccountKey = "CUSTOMER_RECEIVABLE"
	KeyPlatformReceivable   AccountKey = "PLATFORM_RECEIVABLE"
	KeyVendorBank           AccountKey = "VENDOR_BANK"
	KeyInventory            AccountKey = "INVENTORY"
	KeySalesRevenue         AccountKey = "SALES_REVENUE"
	KeySalesReturns         AccountKey = "SALES_RETURNS"
	KeyCommissionExpense    AccountKey = "COMMISSION_EXPENSE"
	KeyCostOfGoodsSold      AccountKey = "COST_OF_GOODS_SOLD"
	KeyPlatformBank         AccountKey = "PLATFORM_BANK"
	KeyGatewayClearing      AccountKey = "GATEWAY_CLEARING"
	KeyCommissionReceivable AccountKey = "COMMISSION_RECEIVABLE"
	KeyCustomerAdvances     AccountKey = "CUSTOMER_ADVANCES"
	KeyVendorPayable        AccountKey = "VENDOR_PAYABLE"
	KeyCommissionIncome     AccountKey = "COMMISSION_INCOME"
	KeyGatewayFees          AccountKey = "GATEWAY_FEES"
	KeyOwnerEquity          AccountKey = "OWNER_EQUITY"
)

// SystemAccount describes an account created when an entity is provisioned.
type SystemAccount struct {
	Key   AccountKey
	Class AccountClass
	Name  string
}

// AdminSystemAccounts is the platform operator's system chart.
var AdminSystemAccounts = []SystemAccount{
	{KeyPlatformBank, Asset, "Platform Bank"},
	{KeyGatewayClearing, Asset, "Payment Gateway Clearing"},
	{KeyCommissionReceivable, Asset, "Commission Receivable"},
	{KeyCustomerAdvances, Liability, "Customer Advances"},
	{KeyOwnerEquity, Equity, "Owner Equity"},
	{KeyCommissionIncome, Income, "Commission Income"},
	{KeyGatewayFees, Expense, "Payment Gateway Fees"},
}

// VendorSystemAccounts is every vendor's system chart.
var VendorSystemAccounts = []SystemAccount{
	{KeyCustomerReceivable, Asset, "Customer Receivable"},
	{KeyPlatformReceivable, Asset, "Receivable from Platform"},
	{KeyVendorBank, Asset, "Bank"},
	{KeyInventory, Asset, "Inventory"},
	{KeyOwnerEquity, Equity, "Owner Equity"},
	{KeySalesRevenue, Income, "Sales"},
	{KeySalesReturns, Expense, "Sales Returns"},
	{KeyCommissionExpense, Expense, "Marketplace Commission"},
	{KeyCostOfGoodsSold, Expense, "Cost of Goods Sold"},
}

// VendorPayableAccount is the admin-side liability kept per vendor.
func VendorPayableAccount(vendorID string) SystemAccount {
	return SystemAccount{Key: KeyVendorPayable, Class: Liability, Name: "Vendor Payable - " + vendorID}
}

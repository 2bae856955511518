package seed

type businessTypeSeed struct {
	Name        string
	Slug        string
	Description string
	Icon        string
	Color       string
}

var businessTypes = []businessTypeSeed{
	{"Concrete Factory", "concrete-factory", "Ready-mix concrete, precast and construction material manufacturing", "building-office", "#3B82F6"},
	{"Bakery Factory", "bakery-factory", "Bread, cake and bakery product manufacturing", "cake", "#F59E0B"},
	{"Retail & Trade", "retail-trade", "Retail stores and trading of goods", "shopping-bag", "#10B981"},
	{"Construction", "construction", "Construction companies, contractors and developers", "building-library", "#8B5CF6"},
	{"Logistics & Transportation", "logistics-transportation", "Logistics, transportation and distribution companies", "truck", "#EF4444"},
	{"Healthcare", "healthcare", "Hospitals, clinics and healthcare services", "heart", "#EC4899"},
	{"Education", "education", "Schools, universities and education institutions", "academic-cap", "#06B6D4"},
	{"Agriculture", "agriculture", "Plantations, farming and agribusiness", "leaf", "#84CC16"},
	{"Technology", "technology", "Technology, software and IT services companies", "computer-desktop", "#6366F1"},
	{"General Manufacturing", "general-manufacturing", "General manufacturing and goods production", "cog-6-tooth", "#6B7280"},
}

type moduleSeed struct {
	Name        string
	Slug        string
	Description string
	Category    string
	Icon        string
	IsCore      bool
	SortOrder   int
}

var modules = []moduleSeed{
	{"Accounting", "accounting", "General ledger, accounts payable and accounts receivable", "core", "calculator", true, 1},
	{"Inventory", "inventory", "Stock, warehouse and inventory tracking", "core", "archive-box", true, 2},
	{"Sales", "sales", "Sales, customers and CRM", "core", "currency-dollar", true, 3},
	{"Purchasing", "purchase", "Purchasing, suppliers and procurement", "core", "shopping-cart", true, 4},
	{"HR & Payroll", "hr-payroll", "Human resources and payroll", "core", "users", true, 5},
	{"Production", "production", "Production planning, work orders and tracking", "manufacturing", "cog-6-tooth", false, 10},
	{"Quality Control", "quality-control", "Inspection and quality management", "manufacturing", "check-circle", false, 11},
	{"Maintenance", "maintenance", "Maintenance management and equipment tracking", "manufacturing", "wrench-screwdriver", false, 12},
	{"Mix Design", "mix-design", "Concrete mix designs and formulas", "industry", "beaker", false, 20},
	{"Concrete Testing", "concrete-testing", "Concrete testing and quality assurance", "industry", "clipboard-document-check", false, 21},
	{"Delivery Management", "delivery-management", "Concrete delivery and truck tracking", "industry", "truck", false, 22},
	{"Recipe Management", "recipe-management", "Product recipes and formulas", "industry", "book-open", false, 30},
	{"Expiry Tracking", "expiry-tracking", "Expiry dates and FIFO management", "industry", "clock", false, 31},
	{"Batch Management", "batch-management", "Production batches and lot tracking", "industry", "squares-2x2", false, 32},
	{"Point of Sale", "point-of-sale", "Point of sale and cashier", "retail", "computer-desktop", false, 40},
	{"Customer Management", "customer-management", "Customer records and loyalty", "retail", "user-group", false, 41},
	{"Promotions", "promotions", "Discounts and promotional campaigns", "retail", "gift", false, 42},
	{"Project Management", "project-management", "Projects, milestones and budgets", "construction", "clipboard-document-list", false, 50},
	{"Equipment Management", "equipment-management", "Heavy equipment and asset usage", "construction", "wrench", false, 51},
	{"Fleet Management", "fleet-management", "Vehicles, drivers and fuel", "logistics", "truck", false, 60},
	{"Route Optimization", "route-optimization", "Delivery route planning", "logistics", "map", false, 61},
}

type recommendationSeed struct {
	Module     string
	Priority   int
	IsRequired bool
}

var coreRecommendations = []recommendationSeed{
	{"accounting", 1, true},
	{"inventory", 1, true},
	{"sales", 1, true},
	{"purchase", 1, true},
	{"hr-payroll", 1, true},
}

func withCore(extra ...recommendationSeed) []recommendationSeed {
	out := make([]recommendationSeed, 0, len(coreRecommendations)+len(extra))
	out = append(out, coreRecommendations...)
	return append(out, extra...)
}

var recommendations = map[string][]recommendationSeed{
	"concrete-factory": withCore(
		recommendationSeed{"production", 1, false},
		recommendationSeed{"quality-control", 1, false},
		recommendationSeed{"maintenance", 1, false},
		recommendationSeed{"mix-design", 1, false},
		recommendationSeed{"concrete-testing", 1, false},
		recommendationSeed{"delivery-management", 1, false},
		recommendationSeed{"project-management", 2, false},
		recommendationSeed{"fleet-management", 2, false},
	),
	"bakery-factory": withCore(
		recommendationSeed{"production", 1, false},
		recommendationSeed{"quality-control", 1, false},
		recommendationSeed{"maintenance", 1, false},
		recommendationSeed{"recipe-management", 1, false},
		recommendationSeed{"expiry-tracking", 1, false},
		recommendationSeed{"batch-management", 1, false},
		recommendationSeed{"point-of-sale", 2, false},
		recommendationSeed{"customer-management", 2, false},
	),
	"retail-trade": withCore(
		recommendationSeed{"point-of-sale", 1, false},
		recommendationSeed{"customer-management", 1, false},
		recommendationSeed{"promotions", 1, false},
		recommendationSeed{"expiry-tracking", 2, false},
		recommendationSeed{"batch-management", 2, false},
	),
	"construction": withCore(
		recommendationSeed{"project-management", 1, false},
		recommendationSeed{"equipment-management", 1, false},
		recommendationSeed{"maintenance", 1, false},
		recommendationSeed{"quality-control", 2, false},
		recommendationSeed{"fleet-management", 2, false},
	),
	"logistics-transportation": withCore(
		recommendationSeed{"fleet-management", 1, false},
		recommendationSeed{"route-optimization", 1, false},
		recommendationSeed{"customer-management", 2, false},
		recommendationSeed{"maintenance", 2, false},
	),
	"healthcare": withCore(
		recommendationSeed{"customer-management", 1, false},
		recommendationSeed{"batch-management", 1, false},
		recommendationSeed{"expiry-tracking", 1, false},
		recommendationSeed{"quality-control", 2, false},
		recommendationSeed{"project-management", 2, false},
	),
	"education": withCore(
		recommendationSeed{"customer-management", 1, false},
		recommendationSeed{"project-management", 1, false},
		recommendationSeed{"quality-control", 2, false},
		recommendationSeed{"batch-management", 2, false},
	),
	"agriculture": withCore(
		recommendationSeed{"batch-management", 1, false},
		recommendationSeed{"expiry-tracking", 1, false},
		recommendationSeed{"quality-control", 1, false},
		recommendationSeed{"production", 2, false},
		recommendationSeed{"maintenance", 2, false},
	),
	"technology": withCore(
		recommendationSeed{"project-management", 1, false},
		recommendationSeed{"customer-management", 1, false},
		recommendationSeed{"quality-control", 2, false},
		recommendationSeed{"batch-management", 2, false},
	),
	"general-manufacturing": withCore(
		recommendationSeed{"production", 1, false},
		recommendationSeed{"quality-control", 1, false},
		recommendationSeed{"maintenance", 1, false},
		recommendationSeed{"batch-management", 2, false},
		recommendationSeed{"customer-management", 2, false},
	),
}

type accountSeed struct {
	Code          string
	Name          string
	Type          string
	SubType       string
	Parent        string
	NormalBalance string
}

// chartOfAccounts is ordered so every parent precedes its children
var chartOfAccounts = []accountSeed{
	{"1000", "Assets", "asset", "current_asset", "", "debit"},
	{"1100", "Current Assets", "asset", "current_asset", "1000", "debit"},
	{"1110", "Cash and Cash Equivalents", "asset", "current_asset", "1100", "debit"},
	{"1111", "Cash on Hand", "asset", "current_asset", "1110", "debit"},
	{"1112", "Cash in Bank", "asset", "current_asset", "1110", "debit"},
	{"1120", "Accounts Receivable", "asset", "current_asset", "1100", "debit"},
	{"1130", "Inventory", "asset", "current_asset", "1100", "debit"},
	{"1200", "Fixed Assets", "asset", "fixed_asset", "1000", "debit"},
	{"1210", "Equipment", "asset", "fixed_asset", "1200", "debit"},
	{"1211", "Accumulated Depreciation - Equipment", "asset", "fixed_asset", "1210", "credit"},
	{"2000", "Liabilities", "liability", "current_liability", "", "credit"},
	{"2100", "Current Liabilities", "liability", "current_liability", "2000", "credit"},
	{"2110", "Accounts Payable", "liability", "current_liability", "2100", "credit"},
	{"2120", "Accrued Expenses", "liability", "current_liability", "2100", "credit"},
	{"3000", "Equity", "equity", "owner_equity", "", "credit"},
	{"3100", "Owner Equity", "equity", "owner_equity", "3000", "credit"},
	{"3200", "Retained Earnings", "equity", "retained_earnings", "3000", "credit"},
	{"4000", "Revenue", "revenue", "operating_revenue", "", "credit"},
	{"4100", "Sales Revenue", "revenue", "operating_revenue", "4000", "credit"},
	{"5000", "Expenses", "expense", "operating_expense", "", "debit"},
	{"5100", "Cost of Goods Sold", "expense", "operating_expense", "5000", "debit"},
	{"5200", "Operating Expenses", "expense", "operating_expense", "5000", "debit"},
	{"5210", "Salaries and Wages", "expense", "operating_expense", "5200", "debit"},
	{"5220", "Rent Expense", "expense", "operating_expense", "5200", "debit"},
	{"5230", "Utilities Expense", "expense", "operating_expense", "5200", "debit"},
}

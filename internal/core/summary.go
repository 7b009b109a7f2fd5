package core

// CategorySpend is one dashboard row: how much a category spent in the
// month against its configured budget.
type CategorySpend struct {
	Category string
	Spent    Money
	Budget   Money
}

// MonthOverview is the aggregate dashboard view for a specific year+month.
type MonthOverview struct {
	Year        int
	Month       int // 1-12
	TotalSpent  Money
	TotalBudget Money
	Remaining   Money
	OverBudget  bool
	ByCategory  []CategorySpend
}

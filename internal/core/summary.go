package core

import "github.com/shopspring/decimal"

// Summary aggregates a list of expenses for the list page footer.
type Summary struct {
	Count int
	Total decimal.Decimal
}

// Summarize totals amounts across expenses. The sum is kept in decimal so
// it cannot overflow.
func Summarize(expenses []Expense) Summary {
	s := Summary{Count: len(expenses), Total: decimal.Zero}
	for _, e := range expenses {
		s.Total = s.Total.Add(e.Amount.Decimal())
	}
	return s
}

// TotalString formats the total with two fractional digits.
func (s Summary) TotalString() string {
	return s.Total.StringFixed(2)
}

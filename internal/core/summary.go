package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// CategoryTotals is ordered by descending amount; ties keep the order in
// which categories first appear in the table.
type CategoryTotals []CategoryAmount

// SummaryStats is computed over a non-empty table's amount column.
type SummaryStats struct {
	Total  Money
	Count  int
	Mean   float64
	Median float64
	Max    float64
	Min    float64
	StdDev float64 // sample standard deviation, 0 for a single row
}

// Sum adds every category amount.
func (c CategoryTotals) Sum() Money {
	var total Money
	for _, ca := range c {
		total = total.Add(ca.Amount)
	}
	return total
}

// Names returns category labels in order.
func (c CategoryTotals) Names() []string {
	out := make([]string, len(c))
	for i, ca := range c {
		out[i] = ca.Name
	}
	return out
}

// Package aggregate derives summary statistics and per-category totals
// from a table. Every function here is pure.
package aggregate

import (
	"sort"

	"expense-analyzer/internal/core"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summarize computes SummaryStats over the amount column. An empty table
// has no statistics and yields core.ErrEmptyTable.
func Summarize(table core.Table) (core.SummaryStats, error) {
	if len(table) == 0 {
		return core.SummaryStats{}, core.ErrEmptyTable
	}

	var total core.Money
	for _, tx := range table {
		total = total.Add(tx.Amount)
	}

	amounts := table.Amounts()
	stats := core.SummaryStats{
		Total:  total,
		Count:  len(table),
		Mean:   stat.Mean(amounts, nil),
		Median: median(amounts),
		Max:    floats.Max(amounts),
		Min:    floats.Min(amounts),
	}
	if len(amounts) > 1 {
		stats.StdDev = stat.StdDev(amounts, nil)
	}
	return stats, nil
}

// median averages the two middle values for even counts.
func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// ByCategory sums amounts per category and orders groups by descending
// total, keeping first-appearance order for ties.
func ByCategory(table core.Table) core.CategoryTotals {
	index := make(map[string]int)
	var totals core.CategoryTotals
	for _, tx := range table {
		i, ok := index[tx.Category]
		if !ok {
			i = len(totals)
			index[tx.Category] = i
			totals = append(totals, core.CategoryAmount{Name: tx.Category})
		}
		totals[i].Amount = totals[i].Amount.Add(tx.Amount)
	}

	sort.SliceStable(totals, func(a, b int) bool {
		return totals[a].Amount.GreaterThan(totals[b].Amount.Decimal)
	})
	return totals
}

// GroupAmounts returns each category's raw amounts in table order, keyed by
// category name.
func GroupAmounts(table core.Table) map[string][]float64 {
	groups := make(map[string][]float64)
	for _, tx := range table {
		groups[tx.Category] = append(groups[tx.Category], tx.Amount.Float64())
	}
	return groups
}

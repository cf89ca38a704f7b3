// Package report prints the human-readable run output on stdout.
package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"expense-analyzer/internal/chart"
	"expense-analyzer/internal/core"
)

// NoDataMessage is printed when filtering leaves nothing to analyze.
const NoDataMessage = "No data after applying filters."

// writer keeps the first write error so callers can print line by line.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format, args...)
}

// WriteSummary prints the statistics block followed by the per-category
// totals, names left-aligned and amounts right-aligned.
func WriteSummary(w io.Writer, stats core.SummaryStats, totals core.CategoryTotals) error {
	out := &writer{w: w}
	out.printf("Expense Analysis Summary:\n")
	out.printf("Total Spent: $%s\n", stats.Total)
	out.printf("Number of Transactions: %d\n", stats.Count)
	out.printf("Average Expense: $%.2f\n", stats.Mean)
	out.printf("Median Expense: $%.2f\n", stats.Median)
	out.printf("Max Expense: $%.2f\n", stats.Max)
	out.printf("Min Expense: $%.2f\n", stats.Min)
	out.printf("Standard Deviation: $%.2f\n", stats.StdDev)
	out.printf("Spending by Category:\n")

	nameWidth, amountWidth := 0, 0
	for _, ca := range totals {
		nameWidth = max(nameWidth, utf8.RuneCountInString(ca.Name))
		amountWidth = max(amountWidth, len(ca.Amount.String()))
	}
	for _, ca := range totals {
		pad := strings.Repeat(" ", nameWidth-utf8.RuneCountInString(ca.Name))
		out.printf("%s%s   %*s\n", ca.Name, pad, amountWidth, ca.Amount)
	}
	return out.err
}

// WriteExported prints one line per successfully written chart, in the
// order the charts were requested.
func WriteExported(w io.Writer, artifacts []chart.Artifact) error {
	out := &writer{w: w}
	for _, a := range artifacts {
		if a.Err != nil || a.Path == "" {
			continue
		}
		out.printf("%s plot exported to: %s\n", a.Kind.Label(), a.Path)
	}
	return out.err
}

// WriteNoData prints the message for an empty filtered table.
func WriteNoData(w io.Writer) error {
	_, err := fmt.Fprintln(w, NoDataMessage)
	return err
}

// Package chart prepares per-kind series from aggregated data and
// dispatches them to a Renderer, one output file per requested kind.
package chart

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is one of the fixed chart kinds.
type Kind string

const (
	Bar     Kind = "bar"
	Pie     Kind = "pie"
	Line    Kind = "line"
	Box     Kind = "box"
	Scatter Kind = "scatter"
	Polar   Kind = "polar"
)

// Format is the export file format.
type Format string

const (
	PNG Format = "png"
	PDF Format = "pdf"
)

var (
	ErrUnknownKind     = errors.New("unknown chart kind")
	ErrUnknownFormat   = errors.New("unknown export format")
	ErrDegenerateChart = errors.New("degenerate chart")
)

var titles = map[Kind]string{
	Bar:     "Spending by Category (Bar Chart)",
	Pie:     "Spending by Category (Pie Chart)",
	Line:    "Monthly Spending Trend (Line Chart)",
	Box:     "Expense Distribution by Category (Box Plot)",
	Scatter: "Expenses Over Time (Scatter Plot)",
	Polar:   "Spending by Category (Polar Area Chart)",
}

// Kinds returns every kind in default rendering order.
func Kinds() []Kind {
	return []Kind{Bar, Pie, Line, Box, Scatter, Polar}
}

// ParseKind accepts a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := titles[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// ParseKinds parses names in order, dropping repeats so no two requests
// write the same file.
func ParseKinds(names []string) ([]Kind, error) {
	seen := make(map[Kind]bool, len(names))
	out := make([]Kind, 0, len(names))
	for _, n := range names {
		k, err := ParseKind(n)
		if err != nil {
			return nil, err
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out, nil
}

// Title is the heading drawn on the chart.
func (k Kind) Title() string {
	return titles[k]
}

// Label is the capitalized kind name used in console output.
func (k Kind) Label() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// ParseFormat accepts png or pdf.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case PNG, PDF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FileName is the artifact base name for kind k, e.g. spending_bar.png.
func FileName(k Kind, f Format) string {
	return fmt.Sprintf("spending_%s.%s", k, f)
}

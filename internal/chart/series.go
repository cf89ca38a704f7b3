package chart

import (
	"fmt"
	"math"
	"sort"
	"time"

	"expense-analyzer/internal/aggregate"
	"expense-analyzer/internal/core"
)

type (
	// CategoryPoint pairs a category label with its total.
	CategoryPoint struct {
		Label string
		Value float64
	}

	// MonthBucket is the sum of one calendar month, anchored at its last day.
	MonthBucket struct {
		Month core.Date
		Total float64
	}

	// BoxGroup holds one category's raw amounts.
	BoxGroup struct {
		Label  string
		Values []float64
	}

	// Point is one transaction on a time axis.
	Point struct {
		Date   core.Date
		Amount float64
	}

	// PolarPoint places a category at angle 2π·i/n with its total as radius.
	PolarPoint struct {
		Label  string
		Angle  float64
		Radius float64
	}

	// Input is the read-only data every kind is prepared from.
	Input struct {
		Table  core.Table
		Totals core.CategoryTotals
	}

	// Series is the shape handed to a Renderer. Only the fields of Kind are set.
	Series struct {
		Kind       Kind
		Categories []CategoryPoint
		Months     []MonthBucket
		Groups     []BoxGroup
		Points     []Point
		Polar      []PolarPoint
	}
)

// Prepare builds the series a kind needs.
func Prepare(kind Kind, in Input) (Series, error) {
	s := Series{Kind: kind}
	switch kind {
	case Bar:
		s.Categories = CategorySeries(in.Totals)
	case Pie:
		s.Categories = CategorySeries(in.Totals)
		if _, err := Shares(s.Categories); err != nil {
			return Series{}, err
		}
	case Line:
		s.Months = MonthlyTrend(in.Table)
	case Box:
		s.Groups = Distributions(in.Table, in.Totals)
	case Scatter:
		s.Points = ScatterPoints(in.Table)
	case Polar:
		pts, err := PolarSeries(in.Totals)
		if err != nil {
			return Series{}, err
		}
		s.Polar = pts
	default:
		return Series{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return s, nil
}

// CategorySeries keeps CategoryTotals order.
func CategorySeries(totals core.CategoryTotals) []CategoryPoint {
	out := make([]CategoryPoint, len(totals))
	for i, ca := range totals {
		out[i] = CategoryPoint{Label: ca.Name, Value: ca.Amount.Float64()}
	}
	return out
}

// Shares returns each point's fraction of the whole. A pie needs
// non-negative values and a positive whole.
func Shares(points []CategoryPoint) ([]float64, error) {
	var whole float64
	for _, p := range points {
		if p.Value < 0 {
			return nil, fmt.Errorf("%w: pie slice %q is negative (%.2f)", ErrDegenerateChart, p.Label, p.Value)
		}
		whole += p.Value
	}
	if whole <= 0 {
		return nil, fmt.Errorf("%w: pie total is zero", ErrDegenerateChart)
	}
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value / whole
	}
	return out, nil
}

// MonthlyTrend sums amounts per calendar month in chronological order.
// Months without transactions get no bucket.
func MonthlyTrend(table core.Table) []MonthBucket {
	type month struct {
		year  int
		month time.Month
	}
	sums := make(map[month]core.Money)
	for _, tx := range table {
		k := month{tx.Date.Year(), tx.Date.Time.Month()}
		sums[k] = sums[k].Add(tx.Amount)
	}

	out := make([]MonthBucket, 0, len(sums))
	for k, total := range sums {
		anchor := core.NewDate(k.year, int(k.month), 1).EndOfMonth()
		out = append(out, MonthBucket{Month: anchor, Total: total.Float64()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Month.Before(out[j].Month.Time)
	})
	return out
}

// Segments splits buckets into runs of consecutive months, so a missing
// month shows as a gap rather than a zero.
func Segments(buckets []MonthBucket) [][]MonthBucket {
	var out [][]MonthBucket
	start := 0
	for i := 1; i <= len(buckets); i++ {
		if i == len(buckets) || !nextMonth(buckets[i-1].Month, buckets[i].Month) {
			out = append(out, buckets[start:i])
			start = i
		}
	}
	return out
}

func nextMonth(a, b core.Date) bool {
	return core.DateOf(a.AddDate(0, 0, 1)).EndOfMonth().Equal(b.Time)
}

// Distributions groups raw amounts per category in CategoryTotals order.
func Distributions(table core.Table, totals core.CategoryTotals) []BoxGroup {
	groups := aggregate.GroupAmounts(table)
	out := make([]BoxGroup, 0, len(totals))
	for _, ca := range totals {
		out = append(out, BoxGroup{Label: ca.Name, Values: groups[ca.Name]})
	}
	return out
}

// ScatterPoints keeps every transaction in table order.
func ScatterPoints(table core.Table) []Point {
	out := make([]Point, len(table))
	for i, tx := range table {
		out[i] = Point{Date: tx.Date, Amount: tx.Amount.Float64()}
	}
	return out
}

// PolarSeries spreads categories evenly around the circle. Two categories
// give a line through the origin; a single one has no shape at all.
func PolarSeries(totals core.CategoryTotals) ([]PolarPoint, error) {
	n := len(totals)
	if n < 2 {
		return nil, fmt.Errorf("%w: polar chart needs at least 2 categories, got %d", ErrDegenerateChart, n)
	}
	out := make([]PolarPoint, n)
	for i, ca := range totals {
		out[i] = PolarPoint{
			Label:  ca.Name,
			Angle:  2 * math.Pi * float64(i) / float64(n),
			Radius: ca.Amount.Float64(),
		}
	}
	return out, nil
}

package chart

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"expense-analyzer/internal/aggregate"
	"expense-analyzer/internal/core"
)

func tx(id string, y, m, d int, category, amount string) core.Transaction {
	return core.Transaction{
		ID:       id,
		Date:     core.NewDate(y, m, d),
		Category: category,
		Amount:   core.MustParseAmount(amount),
	}
}

func sampleInput() Input {
	table := core.Table{
		tx("1", 2024, 1, 5, "Food", "20.00"),
		tx("2", 2024, 1, 10, "Food", "10.00"),
		tx("3", 2024, 2, 1, "Rent", "500.00"),
		tx("4", 2024, 2, 3, "Fun", "45.50"),
	}
	return Input{Table: table, Totals: aggregate.ByCategory(table)}
}

func TestMonthlyTrend_GapMonths(t *testing.T) {
	table := core.Table{
		tx("3", 2024, 3, 1, "A", "7"),
		tx("1", 2024, 1, 5, "A", "10"),
		tx("2", 2024, 1, 20, "B", "5"),
	}
	buckets := MonthlyTrend(table)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets (Feb is a gap), got %d: %+v", len(buckets), buckets)
	}
	if !buckets[0].Month.Equal(core.NewDate(2024, 1, 31).Time) || buckets[0].Total != 15 {
		t.Fatalf("unexpected January bucket %+v", buckets[0])
	}
	if !buckets[1].Month.Equal(core.NewDate(2024, 3, 31).Time) || buckets[1].Total != 7 {
		t.Fatalf("unexpected March bucket %+v", buckets[1])
	}

	segments := Segments(buckets)
	if len(segments) != 2 || len(segments[0]) != 1 || len(segments[1]) != 1 {
		t.Fatalf("expected the gap to split the line, got %+v", segments)
	}
}

func TestSegments(t *testing.T) {
	mk := func(y, m int) MonthBucket {
		return MonthBucket{Month: core.NewDate(y, m, 1).EndOfMonth()}
	}
	buckets := []MonthBucket{mk(2023, 11), mk(2023, 12), mk(2024, 1), mk(2024, 4), mk(2024, 5)}
	segments := Segments(buckets)
	if len(segments) != 2 || len(segments[0]) != 3 || len(segments[1]) != 2 {
		t.Fatalf("unexpected segments %+v", segments)
	}
	if Segments(nil) != nil {
		t.Fatalf("expected no segments for no buckets")
	}
}

func TestCategorySeries(t *testing.T) {
	got := CategorySeries(sampleInput().Totals)
	want := []CategoryPoint{{"Rent", 500}, {"Fun", 45.5}, {"Food", 30}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestShares(t *testing.T) {
	shares, err := Shares([]CategoryPoint{{"A", 3}, {"B", 1}, {"C", 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(shares, []float64{0.75, 0.25, 0}) {
		t.Fatalf("unexpected shares %v", shares)
	}

	for name, pts := range map[string][]CategoryPoint{
		"negative": {{"A", 3}, {"Refund", -1}},
		"zero":     {{"A", 0}},
		"empty":    nil,
	} {
		if _, err := Shares(pts); !errors.Is(err, ErrDegenerateChart) {
			t.Errorf("%s: expected ErrDegenerateChart, got %v", name, err)
		}
	}
}

func TestPolarSeries(t *testing.T) {
	pts, err := PolarSeries(sampleInput().Totals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, p := range pts {
		want := 2 * math.Pi * float64(i) / 3
		if math.Abs(p.Angle-want) > 1e-12 {
			t.Fatalf("point %d angle %v, want %v", i, p.Angle, want)
		}
	}
	if pts[0].Label != "Rent" || pts[0].Radius != 500 {
		t.Fatalf("unexpected first point %+v", pts[0])
	}

	two := core.CategoryTotals{
		{Name: "Rent", Amount: core.MustParseAmount("500")},
		{Name: "Food", Amount: core.MustParseAmount("30")},
	}
	pts, err = PolarSeries(two)
	if err != nil {
		t.Fatalf("two categories: unexpected error %v", err)
	}
	if len(pts) != 2 || pts[1].Angle != math.Pi || pts[1].Radius != 30 {
		t.Fatalf("two categories should face each other, got %+v", pts)
	}

	one := core.CategoryTotals{{Name: "Food", Amount: core.MustParseAmount("30")}}
	if _, err := PolarSeries(one); !errors.Is(err, ErrDegenerateChart) {
		t.Fatalf("expected ErrDegenerateChart, got %v", err)
	}
}

func TestDistributionsAndScatter(t *testing.T) {
	in := sampleInput()
	groups := Distributions(in.Table, in.Totals)
	if len(groups) != 3 || groups[2].Label != "Food" || !reflect.DeepEqual(groups[2].Values, []float64{20, 10}) {
		t.Fatalf("unexpected groups %+v", groups)
	}

	points := ScatterPoints(in.Table)
	if len(points) != 4 || points[0].Amount != 20 || points[3].Amount != 45.5 {
		t.Fatalf("unexpected points %+v", points)
	}
	if !points[2].Date.Equal(core.NewDate(2024, 2, 1).Time) {
		t.Fatalf("points should keep table order, got %+v", points)
	}
}

func TestPrepare(t *testing.T) {
	in := sampleInput()
	for _, k := range Kinds() {
		s, err := Prepare(k, in)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", k, err)
		}
		if s.Kind != k {
			t.Fatalf("%s: series kind %s", k, s.Kind)
		}
	}
	if _, err := Prepare(Kind("radar"), in); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestParseKinds(t *testing.T) {
	kinds, err := ParseKinds([]string{"Bar", "line", "bar", " PIE "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(kinds, []Kind{Bar, Line, Pie}) {
		t.Fatalf("unexpected kinds %v", kinds)
	}
	if _, err := ParseKinds([]string{"bar", "radar"}); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestNaming(t *testing.T) {
	if got := FileName(Line, PDF); got != "spending_line.pdf" {
		t.Fatalf("unexpected file name %q", got)
	}
	if got := Scatter.Label(); got != "Scatter" {
		t.Fatalf("unexpected label %q", got)
	}
	if Bar.Title() != "Spending by Category (Bar Chart)" {
		t.Fatalf("unexpected title %q", Bar.Title())
	}
	if _, err := ParseFormat("svg"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
	if f, err := ParseFormat("PNG"); err != nil || f != PNG {
		t.Fatalf("expected png, got %q (%v)", f, err)
	}
}

package render

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"expense-analyzer/internal/chart"
	"expense-analyzer/internal/core"
)

func sampleInput() chart.Input {
	table := core.Table{
		{ID: "1", Date: core.NewDate(2024, 1, 5), Category: "Food", Amount: core.MustParseAmount("10.00")},
		{ID: "2", Date: core.NewDate(2024, 1, 20), Category: "Rent", Amount: core.MustParseAmount("500.00")},
		{ID: "3", Date: core.NewDate(2024, 2, 3), Category: "Food", Amount: core.MustParseAmount("20.00")},
		{ID: "4", Date: core.NewDate(2024, 4, 9), Category: "Travel", Amount: core.MustParseAmount("120.50")},
	}
	return chart.Input{
		Table: table,
		Totals: core.CategoryTotals{
			{Name: "Rent", Amount: core.MustParseAmount("500.00")},
			{Name: "Travel", Amount: core.MustParseAmount("120.50")},
			{Name: "Food", Amount: core.MustParseAmount("30.00")},
		},
	}
}

func smallOptions(f chart.Format) chart.Options {
	return chart.Options{Format: f, DPI: 40, Width: 3, Height: 2}
}

func TestRenderEveryKind(t *testing.T) {
	magic := map[chart.Format][]byte{
		chart.PNG: []byte("\x89PNG"),
		chart.PDF: []byte("%PDF"),
	}
	r := New()
	in := sampleInput()

	for _, kind := range chart.Kinds() {
		for format, want := range magic {
			t.Run(string(kind)+"/"+string(format), func(t *testing.T) {
				s, err := chart.Prepare(kind, in)
				if err != nil {
					t.Fatalf("Prepare(%s) error = %v", kind, err)
				}
				var buf bytes.Buffer
				if err := r.Render(context.Background(), s, smallOptions(format), &buf); err != nil {
					t.Fatalf("Render() error = %v", err)
				}
				if !bytes.HasPrefix(buf.Bytes(), want) {
					t.Errorf("output starts with %q, want %q", buf.Bytes()[:min(8, buf.Len())], want)
				}
			})
		}
	}
}

func TestRenderSingleTransaction(t *testing.T) {
	in := chart.Input{
		Table: core.Table{
			{ID: "1", Date: core.NewDate(2024, 3, 1), Category: "Food", Amount: core.MustParseAmount("42.00")},
		},
		Totals: core.CategoryTotals{{Name: "Food", Amount: core.MustParseAmount("42.00")}},
	}
	for _, kind := range []chart.Kind{chart.Bar, chart.Pie, chart.Line, chart.Box, chart.Scatter} {
		t.Run(string(kind), func(t *testing.T) {
			s, err := chart.Prepare(kind, in)
			if err != nil {
				t.Fatalf("Prepare() error = %v", err)
			}
			var buf bytes.Buffer
			if err := New().Render(context.Background(), s, smallOptions(chart.PNG), &buf); err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if buf.Len() == 0 {
				t.Error("Render() wrote nothing")
			}
		})
	}
}

func TestRenderPolarTwoCategories(t *testing.T) {
	in := sampleInput()
	in.Totals = in.Totals[:2]
	s, err := chart.Prepare(chart.Polar, in)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	for _, format := range []chart.Format{chart.PNG, chart.PDF} {
		var buf bytes.Buffer
		if err := New().Render(context.Background(), s, smallOptions(format), &buf); err != nil {
			t.Fatalf("Render(%s) error = %v", format, err)
		}
		if buf.Len() == 0 {
			t.Errorf("Render(%s) wrote nothing", format)
		}
	}
}

func TestRenderDegenerate(t *testing.T) {
	tests := []struct {
		name   string
		series chart.Series
	}{
		{
			name: "polar with one category",
			series: chart.Series{Kind: chart.Polar, Polar: []chart.PolarPoint{
				{Label: "a", Radius: 1},
			}},
		},
		{
			name: "polar without positive radius",
			series: chart.Series{Kind: chart.Polar, Polar: []chart.PolarPoint{
				{Label: "a"}, {Label: "b", Angle: 2}, {Label: "c", Angle: 4, Radius: -1},
			}},
		},
		{
			name: "pie with negative slice",
			series: chart.Series{Kind: chart.Pie, Categories: []chart.CategoryPoint{
				{Label: "a", Value: 5}, {Label: "refund", Value: -2},
			}},
		},
		{
			name:   "box with empty group",
			series: chart.Series{Kind: chart.Box, Groups: []chart.BoxGroup{{Label: "a"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := New().Render(context.Background(), tt.series, smallOptions(chart.PNG), &buf)
			if !errors.Is(err, chart.ErrDegenerateChart) {
				t.Fatalf("Render() error = %v, want ErrDegenerateChart", err)
			}
			if buf.Len() != 0 {
				t.Errorf("Render() wrote %d bytes for a degenerate chart", buf.Len())
			}
		})
	}
}

func TestRenderUnknown(t *testing.T) {
	var buf bytes.Buffer
	err := New().Render(context.Background(), chart.Series{Kind: "radar"}, smallOptions(chart.PNG), &buf)
	if !errors.Is(err, chart.ErrUnknownKind) {
		t.Errorf("unknown kind error = %v, want ErrUnknownKind", err)
	}

	s, _ := chart.Prepare(chart.Bar, sampleInput())
	err = New().Render(context.Background(), s, smallOptions("svg"), &buf)
	if !errors.Is(err, chart.ErrUnknownFormat) {
		t.Errorf("unknown format error = %v, want ErrUnknownFormat", err)
	}
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, _ := chart.Prepare(chart.Bar, sampleInput())
	var buf bytes.Buffer
	if err := New().Render(ctx, s, smallOptions(chart.PNG), &buf); !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}
}

func TestBuildTitles(t *testing.T) {
	in := sampleInput()
	for _, kind := range chart.Kinds() {
		s, err := chart.Prepare(kind, in)
		if err != nil {
			t.Fatalf("Prepare(%s) error = %v", kind, err)
		}
		p, err := Build(s, smallOptions(chart.PNG))
		if err != nil {
			t.Fatalf("Build(%s) error = %v", kind, err)
		}
		if p.Title.Text != kind.Title() {
			t.Errorf("Build(%s) title = %q, want %q", kind, p.Title.Text, kind.Title())
		}
	}
}

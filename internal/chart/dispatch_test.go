package chart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

// textRenderer writes the kind name, failing for the kinds in fail.
func textRenderer(fail map[Kind]bool, calls *atomic.Int32) Renderer {
	return RendererFunc(func(_ context.Context, s Series, opts Options, w io.Writer) error {
		if calls != nil {
			calls.Add(1)
		}
		if _, err := fmt.Fprintf(w, "%s@%d", s.Kind, opts.DPI); err != nil {
			return err
		}
		if fail[s.Kind] {
			return errors.New("boom")
		}
		return nil
	})
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	matches, _ := filepath.Glob(filepath.Join(dir, ".*.tmp"))
	if len(matches) != 0 {
		t.Fatalf("temp files left behind: %v", matches)
	}
}

func TestDispatch_WritesInRequestOrder(t *testing.T) {
	dir := t.TempDir()
	d := NewDispatcher(textRenderer(nil, nil), nil)
	kinds := []Kind{Scatter, Bar, Line}

	artifacts, err := d.Dispatch(context.Background(), sampleInput(), Request{
		Kinds:     kinds,
		Options:   Options{Format: PNG, DPI: 300},
		OutputDir: dir,
		Workers:   3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(artifacts) != len(kinds) {
		t.Fatalf("expected %d artifacts, got %d", len(kinds), len(artifacts))
	}
	for i, a := range artifacts {
		if a.Kind != kinds[i] {
			t.Fatalf("artifact %d is %s, want %s", i, a.Kind, kinds[i])
		}
		want := filepath.Join(dir, FileName(a.Kind, PNG))
		if a.Path != want {
			t.Fatalf("artifact path %q, want %q", a.Path, want)
		}
		if got := readFile(t, a.Path); got != fmt.Sprintf("%s@300", a.Kind) {
			t.Fatalf("unexpected content %q", got)
		}
	}
	assertNoTempFiles(t, dir)
}

func TestDispatch_PartialFailureKeepsGoing(t *testing.T) {
	dir := t.TempDir()
	previous := filepath.Join(dir, FileName(Pie, PDF))
	if err := os.WriteFile(previous, []byte("old"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	d := NewDispatcher(textRenderer(map[Kind]bool{Pie: true}, nil), nil)
	artifacts, err := d.Dispatch(context.Background(), sampleInput(), Request{
		Kinds:     []Kind{Bar, Pie, Box},
		Options:   Options{Format: PDF, DPI: 72},
		OutputDir: dir,
	})
	if err == nil {
		t.Fatalf("expected joined error")
	}
	if artifacts[1].Err == nil || artifacts[1].Path != "" {
		t.Fatalf("pie should have failed: %+v", artifacts[1])
	}
	if artifacts[0].Err != nil || artifacts[2].Err != nil {
		t.Fatalf("bar and box should succeed: %+v", artifacts)
	}
	if got := readFile(t, previous); got != "old" {
		t.Fatalf("failed render clobbered existing file: %q", got)
	}
	assertNoTempFiles(t, dir)
}

func TestDispatch_FailFastSkipsRemaining(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	d := NewDispatcher(textRenderer(map[Kind]bool{Bar: true}, &calls), nil)

	artifacts, err := d.Dispatch(context.Background(), sampleInput(), Request{
		Kinds:     []Kind{Bar, Pie, Line},
		Options:   Options{Format: PNG, DPI: 100},
		OutputDir: dir,
		Workers:   1,
		FailFast:  true,
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single render call, got %d", calls.Load())
	}
	for _, a := range artifacts[1:] {
		if !errors.Is(a.Err, ErrSkipped) {
			t.Fatalf("%s should be skipped, got %v", a.Kind, a.Err)
		}
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected no files, got %d", len(entries))
	}
}

func TestDispatch_DegenerateChartIsReported(t *testing.T) {
	in := sampleInput()
	in.Totals = in.Totals[:1]
	d := NewDispatcher(textRenderer(nil, nil), nil)

	artifacts, err := d.Dispatch(context.Background(), in, Request{
		Kinds:     []Kind{Polar, Bar},
		Options:   Options{Format: PNG, DPI: 100},
		OutputDir: t.TempDir(),
	})
	if !errors.Is(err, ErrDegenerateChart) {
		t.Fatalf("expected ErrDegenerateChart, got %v", err)
	}
	if artifacts[1].Err != nil || artifacts[1].Path == "" {
		t.Fatalf("bar should still render: %+v", artifacts[1])
	}
}

func TestDispatch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := NewDispatcher(textRenderer(nil, nil), nil)

	artifacts, err := d.Dispatch(ctx, sampleInput(), Request{
		Kinds:     []Kind{Bar},
		Options:   Options{Format: PNG, DPI: 100},
		OutputDir: t.TempDir(),
	})
	if err == nil || !errors.Is(artifacts[0].Err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", artifacts[0].Err)
	}
}

func TestDispatch_DefaultsFigureSize(t *testing.T) {
	var got Options
	r := RendererFunc(func(_ context.Context, _ Series, opts Options, _ io.Writer) error {
		got = opts
		return nil
	})
	d := NewDispatcher(r, nil)
	_, err := d.Dispatch(context.Background(), sampleInput(), Request{
		Kinds:     []Kind{Bar},
		Options:   Options{Format: PNG, DPI: 10},
		OutputDir: filepath.Join(t.TempDir(), "nested", "out"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Width != DefaultWidth || got.Height != DefaultHeight {
		t.Fatalf("expected default figure size, got %+v", got)
	}
}

func TestWriteAtomic_RemovesTempOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")
	err := writeAtomic(path, func(f *os.File) error {
		_, _ = f.WriteString("partial")
		return errors.New("render failed")
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("target should not exist, stat err=%v", statErr)
	}
	assertNoTempFiles(t, dir)
}

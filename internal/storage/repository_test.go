package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"expense-analyzer/internal/core"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "reports", "runs.db"), nil)
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleRun() Run {
	return Run{
		ID:        "2f1c9d1e-6c35-4bb4-9d7b-0d7c5e0f8a11",
		InputPath: "/data/expenses.csv",
		Category:  "food",
		FromDate:  "2024-01-01",
		Stats: core.SummaryStats{
			Total:  core.MustParseAmount("530.00"),
			Count:  3,
			Mean:   176.67,
			Median: 20,
			Max:    500,
			Min:    10,
			StdDev: 280.06,
		},
		Totals: core.CategoryTotals{
			{Name: "Rent", Amount: core.MustParseAmount("500.00")},
			{Name: "Food", Amount: core.MustParseAmount("30.00")},
		},
		Artifacts: []ArtifactRecord{
			{Kind: "bar", Format: "png", Path: "/out/spending_bar.png"},
			{Kind: "polar", Format: "png", Error: "degenerate chart"},
		},
		CreatedAt: time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
	}
}

func TestSaveAndGetRun(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	want := sampleRun()

	if err := repo.SaveRun(ctx, want); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	got, err := repo.GetRun(ctx, want.ID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}

	if got.InputPath != want.InputPath || got.Category != want.Category || got.FromDate != want.FromDate || got.ToDate != "" {
		t.Errorf("GetRun() criteria = %+v", got)
	}
	if !got.Stats.Total.Equal(want.Stats.Total.Decimal) || got.Stats.Count != 3 || got.Stats.StdDev != 280.06 {
		t.Errorf("GetRun() stats = %+v, want %+v", got.Stats, want.Stats)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("GetRun() CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	if len(got.Totals) != 2 || got.Totals[0].Name != "Rent" || got.Totals[1].Amount.String() != "30.00" {
		t.Errorf("GetRun() totals = %+v", got.Totals)
	}
	if len(got.Artifacts) != 2 || got.Artifacts[0] != want.Artifacts[0] || got.Artifacts[1] != want.Artifacts[1] {
		t.Errorf("GetRun() artifacts = %+v, want %+v", got.Artifacts, want.Artifacts)
	}

	n, err := repo.CountRuns(ctx)
	if err != nil {
		t.Fatalf("CountRuns() error = %v", err)
	}
	if n != 1 {
		t.Errorf("CountRuns() = %d, want 1", n)
	}
}

func TestSaveRunDuplicateRollsBack(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	run := sampleRun()

	if err := repo.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if err := repo.SaveRun(ctx, run); err == nil {
		t.Fatal("SaveRun() with duplicate id succeeded")
	}

	got, err := repo.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if len(got.Totals) != 2 {
		t.Errorf("duplicate save left %d totals, want 2", len(got.Totals))
	}
}

func TestGetRunNotFound(t *testing.T) {
	repo := newTestRepository(t)
	_, err := repo.GetRun(context.Background(), "missing")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun() error = %v, want ErrRunNotFound", err)
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	for i := 0; i < 2; i++ {
		if err := RunMigrations(path); err != nil {
			t.Fatalf("RunMigrations() pass %d error = %v", i+1, err)
		}
	}
}

func TestSaveRunDefaultsTimestamp(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	run := sampleRun()
	run.CreatedAt = time.Time{}
	run.Artifacts = nil

	before := time.Now().Add(-time.Second)
	if err := repo.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	got, err := repo.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if got.CreatedAt.Before(before) {
		t.Errorf("CreatedAt = %v, want after %v", got.CreatedAt, before)
	}
	if len(got.Artifacts) != 0 {
		t.Errorf("Artifacts = %+v, want none", got.Artifacts)
	}
}

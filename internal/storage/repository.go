package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"expense-analyzer/internal/core"
	applog "expense-analyzer/internal/log"

	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when no archived run has the requested id.
var ErrRunNotFound = errors.New("run not found")

type (
	// Run is one archived analysis: the criteria it ran with, its summary
	// and the charts it produced.
	Run struct {
		ID        string
		InputPath string
		Category  string
		FromDate  string
		ToDate    string
		Stats     core.SummaryStats
		Totals    core.CategoryTotals
		Artifacts []ArtifactRecord
		CreatedAt time.Time
	}

	// ArtifactRecord is the outcome of one chart. Error is empty on success.
	ArtifactRecord struct {
		Kind   string
		Format string
		Path   string
		Error  string
	}
)

// SQLiteRepository archives runs in a SQLite file.
type SQLiteRepository struct {
	db     *sql.DB
	logger *applog.Logger
}

// NewSQLiteRepository opens (creating if needed) the archive at dbPath and
// migrates it.
func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		logger: logger.WithComponent(applog.ComponentStorage),
	}, nil
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveRun stores run, its category totals and artifacts in one transaction.
func (r *SQLiteRepository) SaveRun(ctx context.Context, run Run) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, input_path, category, from_date, to_date, tx_count, total,
			mean, median, max_amount, min_amount, std_dev, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.InputPath, run.Category, run.FromDate, run.ToDate,
		run.Stats.Count, run.Stats.Total.String(),
		run.Stats.Mean, run.Stats.Median, run.Stats.Max, run.Stats.Min, run.Stats.StdDev,
		run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, ca := range run.Totals {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO category_totals (run_id, position, name, amount) VALUES (?, ?, ?, ?)`,
			run.ID, i, ca.Name, ca.Amount.String())
		if err != nil {
			return fmt.Errorf("insert category total %q: %w", ca.Name, err)
		}
	}

	for i, a := range run.Artifacts {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO artifacts (run_id, position, kind, format, path, error) VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, i, a.Kind, a.Format, a.Path, a.Error)
		if err != nil {
			return fmt.Errorf("insert artifact %q: %w", a.Kind, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}

	r.logger.DebugContext(ctx, "Run archived",
		applog.FieldOperation, applog.OpArchive,
		applog.FieldRunID, run.ID,
		applog.FieldRows, run.Stats.Count,
		applog.FieldCategories, len(run.Totals),
		"artifacts", len(run.Artifacts))
	return nil
}

// GetRun loads an archived run with its totals and artifacts in their
// original order.
func (r *SQLiteRepository) GetRun(ctx context.Context, id string) (Run, error) {
	run := Run{ID: id}
	var total, created string
	err := r.db.QueryRowContext(ctx, `
		SELECT input_path, category, from_date, to_date, tx_count, total,
			mean, median, max_amount, min_amount, std_dev, created_at
		FROM runs WHERE id = ?`, id).Scan(
		&run.InputPath, &run.Category, &run.FromDate, &run.ToDate,
		&run.Stats.Count, &total,
		&run.Stats.Mean, &run.Stats.Median, &run.Stats.Max, &run.Stats.Min, &run.Stats.StdDev,
		&created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	if run.Stats.Total, err = core.ParseAmount(total); err != nil {
		return Run{}, fmt.Errorf("parse run total: %w", err)
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Run{}, fmt.Errorf("parse run timestamp: %w", err)
	}

	if run.Totals, err = r.categoryTotals(ctx, id); err != nil {
		return Run{}, err
	}
	if run.Artifacts, err = r.artifacts(ctx, id); err != nil {
		return Run{}, err
	}
	return run, nil
}

func (r *SQLiteRepository) categoryTotals(ctx context.Context, runID string) (core.CategoryTotals, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, amount FROM category_totals WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("get category totals: %w", err)
	}
	defer rows.Close()

	var out core.CategoryTotals
	for rows.Next() {
		var name, amount string
		if err := rows.Scan(&name, &amount); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		m, err := core.ParseAmount(amount)
		if err != nil {
			return nil, fmt.Errorf("parse category total %q: %w", name, err)
		}
		out = append(out, core.CategoryAmount{Name: name, Amount: m})
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) artifacts(ctx context.Context, runID string) ([]ArtifactRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT kind, format, path, error FROM artifacts WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("get artifacts: %w", err)
	}
	defer rows.Close()

	var out []ArtifactRecord
	for rows.Next() {
		var a ArtifactRecord
		if err := rows.Scan(&a.Kind, &a.Format, &a.Path, &a.Error); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CountRuns returns the number of archived runs.
func (r *SQLiteRepository) CountRuns(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}

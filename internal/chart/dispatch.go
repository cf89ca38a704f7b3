package chart

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	applog "expense-analyzer/internal/log"
)

// ErrSkipped marks requests not attempted because an earlier one failed
// in fail-fast mode.
var ErrSkipped = errors.New("skipped after earlier failure")

// Request describes one dispatch run.
type Request struct {
	Kinds     []Kind
	Options   Options
	OutputDir string
	Workers   int  // concurrent renders, 1 renders sequentially
	FailFast  bool // stop scheduling after the first failure
}

// Artifact is the outcome of one requested kind.
type Artifact struct {
	Kind Kind
	Path string // absolute path, set on success
	Err  error
}

// Dispatcher renders each requested kind to its own file.
type Dispatcher struct {
	renderer Renderer
	logger   *applog.Logger
}

// NewDispatcher creates a dispatcher around r.
func NewDispatcher(r Renderer, logger *applog.Logger) *Dispatcher {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Dispatcher{
		renderer: r,
		logger:   logger.WithComponent(applog.ComponentChart),
	}
}

// Dispatch renders every requested kind and returns one Artifact per kind in
// request order. A failing kind never affects files written by others. The
// returned error joins every per-kind failure.
func (d *Dispatcher) Dispatch(ctx context.Context, in Input, req Request) ([]Artifact, error) {
	if req.Options.Width == 0 {
		req.Options.Width = DefaultWidth
	}
	if req.Options.Height == 0 {
		req.Options.Height = DefaultHeight
	}
	workers := req.Workers
	if workers < 1 {
		workers = 1
	}

	dir, err := filepath.Abs(req.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("resolve output directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	d.logger.DebugContext(ctx, "Dispatching charts",
		applog.FieldWorkers, workers,
		applog.FieldFormat, req.Options.Format,
		"kinds", len(req.Kinds),
		"fail_fast", req.FailFast)

	results := make([]Artifact, len(req.Kinds))
	var g *errgroup.Group
	gctx := ctx
	if req.FailFast {
		g, gctx = errgroup.WithContext(ctx)
	} else {
		g = &errgroup.Group{}
	}
	g.SetLimit(workers)

	for i, kind := range req.Kinds {
		results[i] = Artifact{Kind: kind}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = fmt.Errorf("%w: %w", ErrSkipped, context.Cause(gctx))
				return nil
			}
			path, err := d.renderOne(gctx, in, kind, dir, req.Options)
			results[i].Path = path
			results[i].Err = err
			if err != nil && req.FailFast {
				return err
			}
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, a := range results {
		if a.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a.Kind, a.Err))
		}
	}
	return results, errors.Join(errs...)
}

func (d *Dispatcher) renderOne(ctx context.Context, in Input, kind Kind, dir string, opts Options) (string, error) {
	start := time.Now()
	fields := applog.NewFields().
		WithChart(string(kind), string(opts.Format), opts.DPI).
		WithOperation(applog.OpRender)

	series, err := Prepare(kind, in)
	if err != nil {
		d.logger.WarnContext(ctx, "Chart skipped", fields.WithError(err).ToSlice()...)
		return "", err
	}

	path := filepath.Join(dir, FileName(kind, opts.Format))
	err = writeAtomic(path, func(f *os.File) error {
		return d.renderer.Render(ctx, series, opts, f)
	})
	if err != nil {
		d.logger.ErrorContext(ctx, "Chart rendering failed", fields.WithError(err).ToSlice()...)
		return "", err
	}

	fields[applog.FieldArtifact] = path
	fields[applog.FieldDuration] = time.Since(start).Milliseconds()
	d.logger.InfoContext(ctx, "Chart written", fields.ToSlice()...)
	return path, nil
}

// writeAtomic renders into a temporary file next to path and renames it into
// place only on success, so a failure leaves any previous file untouched.
func writeAtomic(path string, render func(*os.File) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = render(tmp); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

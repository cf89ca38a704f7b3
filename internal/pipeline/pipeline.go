// Package pipeline runs one analysis: load, filter, aggregate, report,
// render and hand the result to the configured sinks.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"expense-analyzer/internal/aggregate"
	"expense-analyzer/internal/chart"
	"expense-analyzer/internal/core"
	"expense-analyzer/internal/filter"
	"expense-analyzer/internal/loader"
	applog "expense-analyzer/internal/log"
	"expense-analyzer/internal/report"
)

// ErrUsage marks invalid invocation options.
var ErrUsage = errors.New("usage error")

// Options are the fully resolved settings of one run.
type Options struct {
	InputPath string

	Category string
	FromDate string
	ToDate   string

	Kinds     []chart.Kind
	Format    chart.Format
	DPI       int
	OutputDir string
	Workers   int
	FailFast  bool
}

// ArgumentSource resolves the run options. It is called once per run.
type ArgumentSource interface {
	Resolve(ctx context.Context) (Options, error)
}

// Outcome tells how a run without error ended.
type Outcome int

const (
	Completed Outcome = iota
	NoData
)

// Report is everything a finished run produced.
type Report struct {
	RunID     string
	InputPath string
	Options   Options
	Stats     core.SummaryStats
	Totals    core.CategoryTotals
	Artifacts []chart.Artifact
}

// Failed lists the kinds that did not produce a file.
func (r Report) Failed() []chart.Kind {
	var out []chart.Kind
	for _, a := range r.Artifacts {
		if a.Err != nil {
			out = append(out, a.Kind)
		}
	}
	return out
}

// ReportSink receives the report of every completed run.
type ReportSink interface {
	Name() string
	Publish(ctx context.Context, r Report) error
}

// Deps are the collaborators of a Pipeline.
type Deps struct {
	Args     ArgumentSource
	Renderer chart.Renderer
	Sinks    []ReportSink
	Stdout   io.Writer
	Logger   *applog.Logger
}

// Pipeline wires the stages together. It holds no state between runs.
type Pipeline struct {
	args       ArgumentSource
	dispatcher *chart.Dispatcher
	sinks      []ReportSink
	stdout     io.Writer
	logger     *applog.Logger
	newID      func() string
}

// New creates a pipeline from its collaborators.
func New(d Deps) *Pipeline {
	logger := d.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	stdout := d.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	return &Pipeline{
		args:       d.Args,
		dispatcher: chart.NewDispatcher(d.Renderer, logger),
		sinks:      d.Sinks,
		stdout:     stdout,
		logger:     logger.WithComponent(applog.ComponentPipeline),
		newID:      uuid.NewString,
	}
}

// Run executes one analysis. Loader and filter errors are returned as the
// typed errors of package core. Chart failures are returned joined after
// every requested chart was attempted; the report is still complete then.
func (p *Pipeline) Run(ctx context.Context) (Outcome, Report, error) {
	opts, err := p.args.Resolve(ctx)
	if err != nil {
		return Completed, Report{}, err
	}

	runID := p.newID()
	logger := p.logger.With(applog.FieldRunID, runID)
	start := time.Now()

	table, path, err := loader.Load(opts.InputPath)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load transactions",
			applog.NewFields().WithOperation(applog.OpLoad).WithError(err).ToSlice()...)
		return Completed, Report{}, err
	}
	logger.InfoContext(ctx, "Transactions loaded",
		applog.FieldPath, path,
		applog.FieldRows, len(table))

	criteria, err := filter.ParseCriteria(opts.Category, opts.FromDate, opts.ToDate)
	if err != nil {
		logger.ErrorContext(ctx, "Invalid filter criteria",
			applog.NewFields().WithOperation(applog.OpFilter).WithError(err).ToSlice()...)
		return Completed, Report{}, err
	}

	filtered := filter.Apply(table, criteria)
	logger.DebugContext(ctx, "Filter applied",
		append(applog.NewFields().WithCriteria(opts.Category, opts.FromDate, opts.ToDate).ToSlice(),
			applog.FieldRows, len(filtered))...)
	if len(filtered) == 0 {
		logger.InfoContext(ctx, "No transactions match the filter")
		if err := report.WriteNoData(p.stdout); err != nil {
			return NoData, Report{}, fmt.Errorf("write report: %w", err)
		}
		return NoData, Report{}, nil
	}

	stats, err := aggregate.Summarize(filtered)
	if err != nil {
		return Completed, Report{}, fmt.Errorf("summarize: %w", err)
	}
	totals := aggregate.ByCategory(filtered)

	rep := Report{
		RunID:     runID,
		InputPath: path,
		Options:   opts,
		Stats:     stats,
		Totals:    totals,
	}
	if err := report.WriteSummary(p.stdout, stats, totals); err != nil {
		return Completed, rep, fmt.Errorf("write report: %w", err)
	}

	artifacts, renderErr := p.dispatcher.Dispatch(ctx, chart.Input{Table: filtered, Totals: totals}, chart.Request{
		Kinds:     opts.Kinds,
		Options:   chart.Options{Format: opts.Format, DPI: opts.DPI},
		OutputDir: opts.OutputDir,
		Workers:   opts.Workers,
		FailFast:  opts.FailFast,
	})
	rep.Artifacts = artifacts
	if err := report.WriteExported(p.stdout, artifacts); err != nil {
		return Completed, rep, fmt.Errorf("write report: %w", err)
	}

	p.publish(ctx, logger, rep)

	logger.InfoContext(ctx, "Run finished",
		applog.FieldDuration, time.Since(start).Milliseconds(),
		applog.FieldFailed, len(rep.Failed()))

	if renderErr != nil {
		return Completed, rep, fmt.Errorf("render charts: %w", renderErr)
	}
	return Completed, rep, nil
}

// publish hands rep to every sink. Sink failures are logged only.
func (p *Pipeline) publish(ctx context.Context, logger *applog.Logger, rep Report) {
	for _, s := range p.sinks {
		if err := s.Publish(ctx, rep); err != nil {
			logger.WarnContext(ctx, "Report sink failed",
				applog.FieldSink, s.Name(),
				applog.FieldError, err)
			continue
		}
		logger.DebugContext(ctx, "Report delivered", applog.FieldSink, s.Name())
	}
}

// Package cli wires the command-line surface: flags, the interactive path
// prompt, logging and the optional report sinks.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"expense-analyzer/internal/amqp"
	"expense-analyzer/internal/config"
	applog "expense-analyzer/internal/log"
	"expense-analyzer/internal/pipeline"
	"expense-analyzer/internal/storage"
)

// SetupLogger creates the process logger on w at the given level and makes
// it the slog default.
func SetupLogger(level string, w io.Writer) (*applog.Logger, error) {
	lvl, err := applog.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := applog.DefaultConfig()
	cfg.Level = lvl
	cfg.Output = w
	cfg.Component = applog.ComponentApp
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger, nil
}

// LoadEnvFile loads the .env file for local use.
// A missing file is ignored, a malformed one is not.
func LoadEnvFile() error {
	return config.LoadEnvFile()
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// InitSinks opens the report sinks enabled in cfg. A sink that cannot be
// opened is logged and left out; it never fails the run. The returned
// function closes every opened sink.
func InitSinks(ctx context.Context, cfg *config.Config, logger *applog.Logger) ([]pipeline.ReportSink, func()) {
	var sinks []pipeline.ReportSink
	var closers []func() error

	if cfg.ReportDBPath != "" {
		repo, err := storage.NewSQLiteRepository(cfg.ReportDBPath, logger)
		if err != nil {
			logger.WarnContext(ctx, "Run archive disabled",
				applog.FieldPath, cfg.ReportDBPath,
				applog.FieldError, err)
		} else {
			sinks = append(sinks, pipeline.ArchiveSink{Saver: repo})
			closers = append(closers, repo.Close)
		}
	}

	if cfg.AMQPURL != "" {
		pub, err := amqp.Dial(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRouting, logger)
		if err != nil {
			logger.WarnContext(ctx, "Report events disabled",
				"exchange", cfg.AMQPExchange,
				applog.FieldError, err)
		} else {
			sinks = append(sinks, pipeline.EventSink{Publisher: pub})
			closers = append(closers, pub.Close)
		}
	}

	return sinks, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("Failed to close report sink", applog.FieldError, err)
			}
		}
	}
}

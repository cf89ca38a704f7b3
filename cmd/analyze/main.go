package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"expense-analyzer/internal/cli"
	"expense-analyzer/internal/config"
	"expense-analyzer/internal/core"
	"expense-analyzer/internal/pipeline"
	"expense-analyzer/internal/render"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if err := cli.LoadEnvFile(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitUsage
	}

	cfg := config.Load()
	if err := cli.ParseArgs("analyze", args, cfg, stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, "Error:", err)
		return exitUsage
	}

	logger, err := cli.SetupLogger(cfg.LogLevel, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitUsage
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	sinks, closeSinks := cli.InitSinks(ctx, cfg, logger)
	defer closeSinks()

	p := pipeline.New(pipeline.Deps{
		Args:     cli.NewSource(cfg, stdin, stdout),
		Renderer: render.New(),
		Sinks:    sinks,
		Stdout:   stdout,
		Logger:   logger,
	})

	if _, _, err := p.Run(ctx); err != nil {
		fmt.Fprintln(stderr, message(err))
		if errors.Is(err, pipeline.ErrUsage) {
			return exitUsage
		}
		return exitError
	}
	return exitOK
}

// message renders err as the one line shown to the user. Joined errors are
// separated by "; ".
func message(err error) string {
	text := strings.ReplaceAll(err.Error(), "\n", "; ")
	var parseErr *core.ParseError
	var dateErr *core.DateFormatError
	if errors.As(err, &parseErr) || errors.As(err, &dateErr) {
		return text
	}
	return "Error: " + text
}

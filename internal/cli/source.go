package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"expense-analyzer/internal/chart"
	"expense-analyzer/internal/config"
	"expense-analyzer/internal/pipeline"
)

// Source resolves run options from a parsed configuration, prompting for
// the CSV path when none was given.
type Source struct {
	cfg    *config.Config
	in     io.Reader
	prompt io.Writer
}

var _ pipeline.ArgumentSource = (*Source)(nil)

// NewSource creates an argument source. in and prompt are only used when
// cfg has no input path.
func NewSource(cfg *config.Config, in io.Reader, prompt io.Writer) *Source {
	return &Source{cfg: cfg, in: in, prompt: prompt}
}

// Resolve implements pipeline.ArgumentSource.
func (s *Source) Resolve(ctx context.Context) (pipeline.Options, error) {
	path := s.cfg.InputPath
	if strings.TrimSpace(path) == "" {
		var err error
		if path, err = s.ask(ctx); err != nil {
			return pipeline.Options{}, err
		}
	}

	kinds, err := chart.ParseKinds(s.cfg.PlotTypes)
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("%w: %v", pipeline.ErrUsage, err)
	}
	format, err := chart.ParseFormat(s.cfg.ExportFormat)
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("%w: %v", pipeline.ErrUsage, err)
	}

	return pipeline.Options{
		InputPath: path,
		Category:  s.cfg.Category,
		FromDate:  s.cfg.FromDate,
		ToDate:    s.cfg.ToDate,
		Kinds:     kinds,
		Format:    format,
		DPI:       s.cfg.DPI,
		OutputDir: s.cfg.OutputDir,
		Workers:   s.cfg.Workers,
		FailFast:  s.cfg.FailFast,
	}, nil
}

// ask reads one line from the prompt input. An empty answer or a closed
// input selects the default path.
func (s *Source) ask(ctx context.Context) (string, error) {
	def := s.cfg.DefaultPath
	if s.in == nil {
		return def, nil
	}
	if s.prompt != nil {
		fmt.Fprintf(s.prompt, "Enter the path to the CSV file (default: %s): ", def)
	}

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := bufio.NewReader(s.in).ReadString('\n')
		ch <- answer{line, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case a := <-ch:
		if a.err != nil && a.err != io.EOF {
			return "", fmt.Errorf("read path: %w", a.err)
		}
		if line := strings.TrimSpace(a.line); line != "" {
			return line, nil
		}
		return def, nil
	}
}

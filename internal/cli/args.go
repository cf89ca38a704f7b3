package cli

import (
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"

	"expense-analyzer/internal/config"
	"expense-analyzer/internal/pipeline"
)

// listValue collects comma separated values from one or more occurrences
// of a flag. The first occurrence replaces the default.
type listValue struct {
	items *[]string
	set   bool
}

func (v *listValue) String() string {
	if v.items == nil {
		return ""
	}
	return strings.Join(*v.items, ",")
}

func (v *listValue) Set(s string) error {
	if !v.set {
		*v.items = nil
		v.set = true
	}
	*v.items = append(*v.items, config.SplitList(s)...)
	return nil
}

// ParseArgs applies command-line flags on top of cfg, which holds the
// environment defaults, and validates the result. The CSV path may be
// given as a positional argument before or after the flags. Invalid
// arguments are reported as pipeline.ErrUsage; -h returns flag.ErrHelp.
func ParseArgs(name string, args []string, cfg *config.Config, output io.Writer) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(output, "Usage: %s [csv_file] [flags]\n\nAnalyze personal expenses and export charts.\n\nFlags:\n", name)
		fs.PrintDefaults()
	}

	fs.StringVar(&cfg.Category, "category", cfg.Category, "filter by category (case-insensitive)")
	fs.StringVar(&cfg.FromDate, "from_date", cfg.FromDate, "start date `YYYY-MM-DD`, inclusive")
	fs.StringVar(&cfg.ToDate, "to_date", cfg.ToDate, "end date `YYYY-MM-DD`, inclusive")
	fs.Var(&listValue{items: &cfg.PlotTypes}, "plot_types",
		"chart `kinds` to export, comma or space separated: "+strings.Join(config.PlotTypes, ", "))
	fs.StringVar(&cfg.ExportFormat, "export_format", cfg.ExportFormat, "chart file `format`: png or pdf")
	fs.IntVar(&cfg.DPI, "dpi", cfg.DPI, "resolution of exported charts")
	fs.StringVar(&cfg.OutputDir, "out_dir", cfg.OutputDir, "`directory` for exported charts")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "charts rendered concurrently")
	fs.BoolVar(&cfg.FailFast, "fail_fast", cfg.FailFast, "stop rendering after the first failed chart")
	fs.StringVar(&cfg.ReportDBPath, "report_db", cfg.ReportDBPath, "SQLite `file` archiving each run (optional)")
	fs.StringVar(&cfg.LogLevel, "log_level", cfg.LogLevel, "log `level`: debug, info, warn or error")

	args = joinKindArgs(args)
	var positional []string
	for {
		if len(args) > 0 && (args[0] == "-" || !strings.HasPrefix(args[0], "-")) {
			positional = append(positional, args[0])
			args = args[1:]
			continue
		}
		if err := fs.Parse(args); err != nil {
			if err == flag.ErrHelp {
				return err
			}
			return fmt.Errorf("%w: %v", pipeline.ErrUsage, err)
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
	}

	switch len(positional) {
	case 0:
	case 1:
		cfg.InputPath = positional[0]
	default:
		return fmt.Errorf("%w: expected one CSV path, got %d: %s",
			pipeline.ErrUsage, len(positional), strings.Join(positional, " "))
	}

	cfg.ExportFormat = strings.ToLower(strings.TrimSpace(cfg.ExportFormat))
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", pipeline.ErrUsage, err)
	}
	return nil
}

// joinKindArgs folds the space separated form "--plot_types bar pie" into
// "--plot_types=bar,pie". Only known kind names are folded, so a CSV path
// after the kinds stays positional.
func joinKindArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		if (a != "-plot_types" && a != "--plot_types") || i+1 >= len(args) {
			out = append(out, a)
			continue
		}
		kinds := []string{args[i+1]}
		i++
		for i+1 < len(args) && isKindList(args[i+1]) {
			kinds = append(kinds, args[i+1])
			i++
		}
		out = append(out, "--plot_types="+strings.Join(kinds, ","))
	}
	return out
}

func isKindList(s string) bool {
	items := config.SplitList(s)
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !slices.Contains(config.PlotTypes, item) {
			return false
		}
	}
	return true
}

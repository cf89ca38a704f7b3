package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Valid values for the export format and chart kinds.
var (
	ExportFormats = []string{"png", "pdf"}
	PlotTypes     = []string{"bar", "pie", "line", "box", "scatter", "polar"}
)

type Config struct {
	// Input
	InputPath   string
	DefaultPath string

	// Filters
	Category string
	FromDate string
	ToDate   string

	// Rendering
	PlotTypes    []string
	ExportFormat string
	DPI          int
	OutputDir    string
	Workers      int
	FailFast     bool

	// Report sinks
	ReportDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPRouting  string

	LogLevel string
}

// LoadEnvFile loads a .env file for local use. A missing file is not an error.
func LoadEnvFile(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// Load reads defaults from the environment. Flags override these.
func Load() *Config {
	return &Config{
		InputPath:   getEnv("EXPENSES_CSV", ""),
		DefaultPath: getEnv("EXPENSES_DEFAULT_CSV", "expenses.csv"),

		Category: getEnv("EXPENSES_CATEGORY", ""),
		FromDate: getEnv("EXPENSES_FROM_DATE", ""),
		ToDate:   getEnv("EXPENSES_TO_DATE", ""),

		PlotTypes:    getEnvList("PLOT_TYPES", PlotTypes),
		ExportFormat: getEnv("EXPORT_FORMAT", "png"),
		DPI:          getEnvInt("DPI", 300),
		OutputDir:    getEnv("OUTPUT_DIR", "."),
		Workers:      getEnvInt("RENDER_WORKERS", 1),
		FailFast:     getEnvBool("FAIL_FAST", false),

		ReportDBPath: getEnv("REPORT_DB_PATH", ""),
		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "expenses"),
		AMQPRouting:  getEnv("AMQP_ROUTING_KEY", "report_generated"),

		LogLevel: getEnv("LOG_LEVEL", "warn"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if len(c.PlotTypes) == 0 {
		errors = append(errors, "at least one plot type is required")
	}
	for _, p := range c.PlotTypes {
		if !contains(PlotTypes, p) {
			errors = append(errors, fmt.Sprintf("invalid plot type '%s': must be one of %v", p, PlotTypes))
		}
	}

	if !contains(ExportFormats, c.ExportFormat) {
		errors = append(errors, fmt.Sprintf("invalid export format '%s': must be one of %v", c.ExportFormat, ExportFormats))
	}

	if c.DPI < 1 {
		errors = append(errors, fmt.Sprintf("invalid dpi %d: must be a positive integer", c.DPI))
	} else if c.DPI > 2400 {
		errors = append(errors, fmt.Sprintf("invalid dpi %d: must be at most 2400", c.DPI))
	}

	if c.Workers < 1 {
		errors = append(errors, fmt.Sprintf("invalid worker count %d: must be at least 1", c.Workers))
	}

	if strings.TrimSpace(c.OutputDir) == "" {
		errors = append(errors, "output directory cannot be empty")
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPRouting == "" {
			errors = append(errors, "AMQP routing key cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvList splits a comma or space separated value.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}
	return SplitList(value)
}

// SplitList splits on commas and whitespace, dropping empty items.
func SplitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.ToLower(f))
	}
	return out
}

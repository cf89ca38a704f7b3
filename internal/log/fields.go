package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRunID      = "run_id"
	FieldPath       = "path"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldDuration   = "duration_ms"
	FieldRows       = "rows"
	FieldCategories = "categories"
	FieldCategory   = "category"
	FieldFromDate   = "from_date"
	FieldToDate     = "to_date"
	FieldChartKind  = "chart_kind"
	FieldFormat     = "format"
	FieldDPI        = "dpi"
	FieldWorkers    = "workers"
	FieldArtifact   = "artifact"
	FieldFailed     = "failed"
	FieldSink       = "sink"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentChart    = "chart"
	ComponentPipeline = "pipeline"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
)

// Operations defines standard operation names
const (
	OpLoad    = "load"
	OpFilter  = "filter"
	OpRender  = "render"
	OpPublish = "publish"
	OpArchive = "archive"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithChart adds chart-related fields
func (f LogFields) WithChart(kind, format string, dpi int) LogFields {
	f[FieldChartKind] = kind
	f[FieldFormat] = format
	f[FieldDPI] = dpi
	return f
}

// WithCriteria adds the filter criteria, skipping empty ones
func (f LogFields) WithCriteria(category, from, to string) LogFields {
	if category != "" {
		f[FieldCategory] = category
	}
	if from != "" {
		f[FieldFromDate] = from
	}
	if to != "" {
		f[FieldToDate] = to
	}
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}

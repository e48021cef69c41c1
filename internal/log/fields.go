package log

import "time"

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldRequestID    = "request_id"
	FieldClientIP     = "client_ip"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldQuery        = "query"
	FieldStatusCode   = "status_code"
	FieldDuration     = "duration_ms"
	FieldUserAgent    = "user_agent"
	FieldSuccess      = "success"
	FieldError        = "error"
	FieldOperation    = "operation"
	FieldYear         = "year"
	FieldLatestYear   = "latest_year"
	FieldCPILatest    = "cpi_latest"
	FieldCPIPast      = "cpi_past"
	FieldTotalToday   = "total_today"
	FieldTotalPast    = "total_past"
	FieldLines        = "lines"
	FieldSource       = "source"
	FieldObservations = "observations"
	FieldFirstDate    = "first_date"
	FieldLatestDate   = "latest_date"
	FieldVersion      = "snapshot_version"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentCalculator = "calculator"
	ComponentDataset    = "dataset"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentScheduler  = "scheduler"
	ComponentCache      = "cache"
	ComponentImport     = "import"
)

// Operations defines standard operation names
const (
	OpLoad     = "load"
	OpReload   = "reload"
	OpImport   = "import"
	OpCompare  = "compare"
	OpHeadline = "headline"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpRender   = "render"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
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

// WithRequestID adds request ID field
func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

// WithClientIP adds client IP field
func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
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

// WithComparison adds the figures of a computed comparison
func (f LogFields) WithComparison(year, latestYear, lines int, cpiLatest, cpiPast, totalToday, totalPast float64) LogFields {
	f[FieldYear] = year
	f[FieldLatestYear] = latestYear
	f[FieldLines] = lines
	f[FieldCPILatest] = cpiLatest
	f[FieldCPIPast] = cpiPast
	f[FieldTotalToday] = totalToday
	f[FieldTotalPast] = totalPast
	return f
}

// WithDataset adds fields describing a loaded series
func (f LogFields) WithDataset(source string, observations int, first, latest time.Time) LogFields {
	f[FieldSource] = source
	f[FieldObservations] = observations
	if !first.IsZero() {
		f[FieldFirstDate] = first.Format("2006-01-02")
	}
	if !latest.IsZero() {
		f[FieldLatestDate] = latest.Format("2006-01-02")
	}
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
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

package logging

import "log/slog"

// Common field names for consistent logging across services.
const (
	FieldService    = "service"
	FieldCaseID     = "case_id"
	FieldQuery      = "query"
	FieldEventCount = "event_count"
	FieldPatterns   = "pattern_count"
	FieldFormat     = "report_format"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatus     = "status"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// CaseID returns a slog attribute for the investigation case ID.
func CaseID(id string) slog.Attr {
	return slog.String(FieldCaseID, id)
}

// Query returns a slog attribute for a rendered query string.
func Query(q string) slog.Attr {
	return slog.String(FieldQuery, q)
}

// EventCount returns a slog attribute for the number of events handled.
func EventCount(n int) slog.Attr {
	return slog.Int(FieldEventCount, n)
}

// Patterns returns a slog attribute for the number of detected patterns.
func Patterns(n int) slog.Attr {
	return slog.Int(FieldPatterns, n)
}

// Format returns a slog attribute for the report format.
func Format(f string) slog.Attr {
	return slog.String(FieldFormat, f)
}

// Method returns a slog attribute for the HTTP method.
func Method(method string) slog.Attr {
	return slog.String(FieldMethod, method)
}

// Path returns a slog attribute for the HTTP path.
func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

// Status returns a slog attribute for the HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// Error returns a slog attribute for an error value.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(FieldError, "")
	}
	return slog.String(FieldError, err.Error())
}

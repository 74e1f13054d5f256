package logging

import (
	"errors"
	"log/slog"
	"testing"
)

func TestStringFields(t *testing.T) {
	tests := []struct {
		name    string
		attr    slog.Attr
		wantKey string
		wantVal string
	}{
		{name: "Service", attr: Service("investigate"), wantKey: FieldService, wantVal: "investigate"},
		{name: "CaseID", attr: CaseID("case-123"), wantKey: FieldCaseID, wantVal: "case-123"},
		{name: "Query", attr: Query("status = 'failed'"), wantKey: FieldQuery, wantVal: "status = 'failed'"},
		{name: "Format", attr: Format("legal"), wantKey: FieldFormat, wantVal: "legal"},
		{name: "Method", attr: Method("POST"), wantKey: FieldMethod, wantVal: "POST"},
		{name: "Path", attr: Path("/api/query"), wantKey: FieldPath, wantVal: "/api/query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.wantKey {
				t.Errorf("expected key %q, got %q", tt.wantKey, tt.attr.Key)
			}
			if tt.attr.Value.String() != tt.wantVal {
				t.Errorf("expected value %q, got %q", tt.wantVal, tt.attr.Value.String())
			}
		})
	}
}

func TestIntFields(t *testing.T) {
	tests := []struct {
		name    string
		attr    slog.Attr
		wantKey string
		wantVal int64
	}{
		{name: "EventCount", attr: EventCount(42), wantKey: FieldEventCount, wantVal: 42},
		{name: "Patterns", attr: Patterns(3), wantKey: FieldPatterns, wantVal: 3},
		{name: "Status", attr: Status(200), wantKey: FieldStatus, wantVal: 200},
		{name: "Duration", attr: Duration(1500), wantKey: FieldDuration, wantVal: 1500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.wantKey {
				t.Errorf("expected key %q, got %q", tt.wantKey, tt.attr.Key)
			}
			if tt.attr.Value.Int64() != tt.wantVal {
				t.Errorf("expected value %d, got %d", tt.wantVal, tt.attr.Value.Int64())
			}
		})
	}
}

func TestError(t *testing.T) {
	attr := Error(errors.New("connection refused"))
	if attr.Key != FieldError {
		t.Errorf("expected key %q, got %q", FieldError, attr.Key)
	}
	if attr.Value.String() != "connection refused" {
		t.Errorf("expected value %q, got %q", "connection refused", attr.Value.String())
	}
}

func TestError_Nil(t *testing.T) {
	attr := Error(nil)
	if attr.Key != FieldError {
		t.Errorf("expected key %q, got %q", FieldError, attr.Key)
	}
	if attr.Value.String() != "" {
		t.Errorf("expected empty value for nil error, got %q", attr.Value.String())
	}
}

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/casetrace-systems/casetrace/common/middleware"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		level  slog.Level
		format string
	}{
		{
			name:   "json format with info level",
			level:  slog.LevelInfo,
			format: "json",
		},
		{
			name:   "text format with debug level",
			level:  slog.LevelDebug,
			format: "text",
		},
		{
			name:   "default format (json) with error level",
			level:  slog.LevelError,
			format: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.level, tt.format)
			if logger == nil {
				t.Fatal("expected non-nil logger")
			}
			if logger.Logger == nil {
				t.Fatal("expected non-nil underlying logger")
			}
		})
	}
}

func TestDefault(t *testing.T) {
	logger := Default()
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	if logger.Logger == nil {
		t.Fatal("expected non-nil underlying logger")
	}
}

func testBufferLogger(level slog.Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{Logger: slog.New(handler)}, &buf
}

func TestWithContext(t *testing.T) {
	logger, buf := testBufferLogger(slog.LevelInfo)

	tests := []struct {
		name        string
		ctx         context.Context
		expectReqID bool
	}{
		{
			name:        "context with request ID",
			ctx:         context.WithValue(context.Background(), middleware.RequestIDKey, "test-req-123"),
			expectReqID: true,
		},
		{
			name:        "context without request ID",
			ctx:         context.Background(),
			expectReqID: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()

			logger.WithContext(tt.ctx).Info("test message")

			if tt.expectReqID {
				if !strings.Contains(buf.String(), "test-req-123") {
					t.Errorf("expected request ID in log output, got: %s", buf.String())
				}
				if !strings.Contains(buf.String(), "request_id") {
					t.Errorf("expected 'request_id' field in log output, got: %s", buf.String())
				}
			} else if strings.Contains(buf.String(), "request_id") {
				t.Errorf("expected no 'request_id' field in log output, got: %s", buf.String())
			}
		})
	}
}

func TestInfoContext(t *testing.T) {
	logger, buf := testBufferLogger(slog.LevelInfo)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "info-test-123")
	logger.InfoContext(ctx, "test info message", "key", "value")

	output := buf.String()
	if !strings.Contains(output, "test info message") {
		t.Errorf("expected message in output, got: %s", output)
	}
	if !strings.Contains(output, "info-test-123") {
		t.Errorf("expected request ID in output, got: %s", output)
	}
	if !strings.Contains(output, "INFO") {
		t.Errorf("expected INFO level in output, got: %s", output)
	}
}

func TestWarnContext(t *testing.T) {
	logger, buf := testBufferLogger(slog.LevelWarn)

	logger.WarnContext(context.Background(), "test warn message")

	output := buf.String()
	if !strings.Contains(output, "test warn message") {
		t.Errorf("expected message in output, got: %s", output)
	}
	if !strings.Contains(output, "WARN") {
		t.Errorf("expected WARN level in output, got: %s", output)
	}
}

func TestErrorContext(t *testing.T) {
	logger, buf := testBufferLogger(slog.LevelError)

	logger.ErrorContext(context.Background(), "test error message", "error", "something went wrong")

	output := buf.String()
	if !strings.Contains(output, "test error message") {
		t.Errorf("expected message in output, got: %s", output)
	}
	if !strings.Contains(output, "ERROR") {
		t.Errorf("expected ERROR level in output, got: %s", output)
	}
}

func TestDebugContext(t *testing.T) {
	logger, buf := testBufferLogger(slog.LevelDebug)

	logger.DebugContext(context.Background(), "test debug message")

	output := buf.String()
	if !strings.Contains(output, "test debug message") {
		t.Errorf("expected message in output, got: %s", output)
	}
	if !strings.Contains(output, "DEBUG") {
		t.Errorf("expected DEBUG level in output, got: %s", output)
	}
}

func TestWith(t *testing.T) {
	logger, buf := testBufferLogger(slog.LevelInfo)

	enrichedLogger := logger.With("service", "investigate", "version", "0.1.0")
	if enrichedLogger == nil {
		t.Fatal("expected non-nil logger from With()")
	}

	enrichedLogger.Info("test message")
	output := buf.String()

	if !strings.Contains(output, "investigate") {
		t.Errorf("expected service field in output, got: %s", output)
	}
	if !strings.Contains(output, "0.1.0") {
		t.Errorf("expected version field in output, got: %s", output)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{input: "debug", expected: slog.LevelDebug},
		{input: "info", expected: slog.LevelInfo},
		{input: "warn", expected: slog.LevelWarn},
		{input: "error", expected: slog.LevelError},
		{input: "verbose", expected: slog.LevelInfo},
		{input: "", expected: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to decode log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{" error ", ErrorLevel},
		{"", InfoLevel},
		{"verbose", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLogLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WarnLevel, &buf)

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("Expected info to be filtered, got %q", buf.String())
	}

	logger.Warn("shown")
	entry := decodeLine(t, &buf)
	if entry["msg"] != "shown" {
		t.Errorf("Expected msg 'shown', got %v", entry["msg"])
	}
	if entry["level"] != "WARN" {
		t.Errorf("Expected level WARN, got %v", entry["level"])
	}
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(DebugLevel, &buf).
		WithField("component", "snapshot").
		WithFields(map[string]interface{}{"generation": 3}).
		WithError(errors.New("boom"))

	logger.Debug("rebuilt modules")

	entry := decodeLine(t, &buf)
	if entry["component"] != "snapshot" {
		t.Errorf("Expected component field, got %v", entry["component"])
	}
	if entry["generation"] != float64(3) {
		t.Errorf("Expected generation 3, got %v", entry["generation"])
	}
	if entry["error"] != "boom" {
		t.Errorf("Expected error field, got %v", entry["error"])
	}
	if entry["msg"] != "rebuilt modules" {
		t.Errorf("Unexpected msg %v", entry["msg"])
	}
}

func TestLogger_WithFieldsKeyOrder(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(InfoLevel, &buf).
		WithFields(map[string]interface{}{"zeta": 1, "alpha": 2, "mid": 3}).
		Info("ordered")

	line := buf.String()
	a, m, z := strings.Index(line, `"alpha"`), strings.Index(line, `"mid"`), strings.Index(line, `"zeta"`)
	if !(a < m && m < z) {
		t.Errorf("Expected fields in key order, got %s", line)
	}
}

func TestLogLevel_String(t *testing.T) {
	if got := WarnLevel.String(); got != "WARN" {
		t.Errorf("WarnLevel.String() = %q, want WARN", got)
	}
	if got := ParseLogLevel(DebugLevel.String()); got != DebugLevel {
		t.Errorf("round trip of DEBUG = %v", got)
	}
}

func TestLogger_WithNilError(t *testing.T) {
	logger := NewLogger(InfoLevel, &bytes.Buffer{})
	if logger.WithError(nil) != logger {
		t.Error("Expected WithError(nil) to return the same logger")
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	ctx := WithLogger(context.Background(), logger)
	ctx = WithRequestID(ctx, "req-123")

	if got := GetRequestID(ctx); got != "req-123" {
		t.Fatalf("Expected request ID req-123, got %q", got)
	}

	FromContext(ctx).Info("handled")
	entry := decodeLine(t, &buf)
	if entry["request_id"] != "req-123" {
		t.Errorf("Expected request_id in log line, got %v", entry["request_id"])
	}
}

func TestGetLogger_Default(t *testing.T) {
	if GetLogger(context.Background()) == nil {
		t.Fatal("Expected a default logger")
	}
	if GetRequestID(context.Background()) != "" {
		t.Error("Expected empty request ID")
	}
}

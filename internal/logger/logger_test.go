package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		level string
	}{
		{"debug level", "debug"},
		{"info level", "info"},
		{"warn level", "warn"},
		{"error level", "error"},
		{"invalid level", "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(tt.level)
			if log == nil {
				t.Error("New() returned nil")
			}
		})
	}
}

func TestLoggerLevels(t *testing.T) {
	ctx := context.Background()
	log := New("info")

	// These should not panic
	log.Debug(ctx, "debug message")
	log.Info(ctx, "info message")
	log.Warn(ctx, "warn message")
	log.Error(ctx, "error message")

	// Literal percent signs survive when there are no args
	log.Info(ctx, "progress 100%")
	log.Info(ctx, "formatted message: %s %d", "test", 123)
}

func TestShouldLog(t *testing.T) {
	tests := []struct {
		name        string
		configLevel string
		logLevel    string
		shouldLog   bool
	}{
		{"debug logs at debug level", "debug", "debug", true},
		{"info logs at debug level", "debug", "info", true},
		{"debug doesn't log at info level", "info", "debug", false},
		{"info logs at info level", "info", "info", true},
		{"error always logs", "debug", "error", true},
		{"unknown config level defaults to info", "verbose", "debug", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(tt.configLevel).(*implLogger)
			result := log.shouldLog(tt.logLevel)
			if result != tt.shouldLog {
				t.Errorf("shouldLog() = %v, want %v", result, tt.shouldLog)
			}
		})
	}
}

func TestFanoutWithAttrs(t *testing.T) {
	var text, js bytes.Buffer
	log := NewWithWriters("info", &text, &js).With("chunk", 7)

	log.Warn(context.Background(), "append failed: %s", "timeout")

	if !strings.Contains(text.String(), "append failed: timeout") {
		t.Errorf("text output = %q, want message", text.String())
	}
	if !strings.Contains(text.String(), "chunk=7") {
		t.Errorf("text output = %q, want chunk attr", text.String())
	}

	var rec map[string]any
	if err := json.Unmarshal(js.Bytes(), &rec); err != nil {
		t.Fatalf("json output not parseable: %v", err)
	}
	if rec["msg"] != "append failed: timeout" {
		t.Errorf("json msg = %v, want %q", rec["msg"], "append failed: timeout")
	}
	if rec["chunk"] != float64(7) {
		t.Errorf("json chunk = %v, want 7", rec["chunk"])
	}
}

func TestNewWithFileFallback(t *testing.T) {
	log, cleanup := NewWithFile("info", "/nonexistent-dir/twin.log")
	if log == nil {
		t.Fatal("NewWithFile() returned nil logger")
	}
	if err := cleanup(); err != nil {
		t.Errorf("cleanup() error = %v", err)
	}
}

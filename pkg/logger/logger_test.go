package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	logger := NewText("info", &buf)

	logger.Info("pricing finished", "scenarios", 100)
	output := buf.String()
	if !strings.Contains(output, "pricing finished") {
		t.Errorf("Expected log output to contain 'pricing finished', got: %s", output)
	}
	if !strings.Contains(output, "scenarios=100") {
		t.Errorf("Expected text attribute scenarios=100, got: %s", output)
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		logFunc  func(string, ...any)
		logMsg   string
		expected bool
	}{
		{"Debug when debug level", "debug", Debug, "debug message", true},
		{"Info when debug level", "debug", Info, "info message", true},
		{"Debug when info level", "info", Debug, "debug message", false},
		{"Warn when error level", "error", Warn, "warn message", false},
		{"Error when info level", "info", Error, "error message", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			SetDefault(New(tt.logLevel, &buf))

			tt.logFunc(tt.logMsg)
			output := buf.String()

			if tt.expected && !strings.Contains(output, tt.logMsg) {
				t.Errorf("Expected log output to contain '%s', got: %s", tt.logMsg, output)
			}
			if !tt.expected && strings.Contains(output, tt.logMsg) {
				t.Errorf("Expected log output NOT to contain '%s', but it did: %s", tt.logMsg, output)
			}
		})
	}
}

func TestForRunJSON(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(New("info", &buf))

	ForRun("run-42").Info("run completed", "price", 1.5)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log output: %v", err)
	}
	if entry["run_id"] != "run-42" {
		t.Errorf("Expected run_id 'run-42', got '%v'", entry["run_id"])
	}
	if entry["price"] != 1.5 {
		t.Errorf("Expected price 1.5, got '%v'", entry["price"])
	}
}

func TestOrDefault(t *testing.T) {
	var buf bytes.Buffer
	def := New("info", &buf)
	SetDefault(def)

	if OrDefault(nil) != def {
		t.Fatal("expected nil logger to resolve to Default")
	}
	custom := Discard()
	if OrDefault(custom) != custom {
		t.Fatal("expected non-nil logger to be returned unchanged")
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("expected discard logger to disable every level")
	}
	l.Error("dropped")
}

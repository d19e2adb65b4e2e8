package pkg

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSetLogLevel(t *testing.T) {
	original := GetLogLevel()
	defer SetLogLevel(original)

	tests := []struct {
		name  string
		level slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetLogLevel(tt.level)
			if got := GetLogLevel(); got != tt.level {
				t.Errorf("GetLogLevel() = %v, want %v", got, tt.level)
			}
		})
	}
}

func TestLogComponents(t *testing.T) {
	original := DefaultLogger
	defer SetLogger(original)

	tests := []struct {
		name      string
		log       func(Component, string, ...any)
		component Component
		want      string
	}{
		{"debug", LogDebug, ComponentRx, "component=rx"},
		{"info", LogInfo, ComponentInit, "component=init"},
		{"warn", LogWarn, ComponentControl, "component=control"},
		{"error", LogError, ComponentISR, "component=isr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			SetLogger(NewLogger(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			tt.log(tt.component, "message "+tt.name, "key", "value")
			out := buf.String()
			if !strings.Contains(out, "message "+tt.name) {
				t.Errorf("log output missing message: %s", out)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("log output missing %q: %s", tt.want, out)
			}
			if !strings.Contains(out, "key=value") {
				t.Errorf("log output missing attribute: %s", out)
			}
		})
	}
}

func TestSetLogFormatJSON(t *testing.T) {
	original := DefaultLogger
	defer SetLogger(original)

	var buf bytes.Buffer
	SetLogFormat(&buf, LogFormatJSON)
	LogError(ComponentTx, "json message")

	out := buf.String()
	if !strings.Contains(out, `"msg":"json message"`) {
		t.Errorf("JSON output missing message: %s", out)
	}
	if !strings.Contains(out, `"component":"tx"`) {
		t.Errorf("JSON output missing component: %s", out)
	}
}

func TestLogLevelFilters(t *testing.T) {
	original := DefaultLogger
	originalLevel := GetLogLevel()
	defer func() {
		SetLogger(original)
		SetLogLevel(originalLevel)
	}()

	var buf bytes.Buffer
	SetLogger(NewLogger(&buf, nil))
	SetLogLevel(slog.LevelWarn)

	LogDebug(ComponentBus, "hidden")
	if buf.Len() != 0 {
		t.Errorf("debug message logged at warn level: %s", buf.String())
	}
}

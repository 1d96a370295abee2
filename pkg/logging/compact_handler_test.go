package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCompactHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.Info("generated graph", "scenario", "glutamate", "nodes", 10008, "durationMs", int64(42))

	line := buf.String()
	if !strings.HasPrefix(line, "[INFO]  ") {
		t.Errorf("Expected [INFO] prefix, got %q", line)
	}
	for _, want := range []string{"generated graph |", "scenario=glutamate", "nodes=10008", "duration=42ms"} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected %q in %q", want, line)
		}
	}
}

func TestCompactHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	log.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("Debug should be filtered at info level, got %q", buf.String())
	}

	log.Warn("shown", "error", errors.New("bad radius"))
	if !strings.Contains(buf.String(), `[WARN]`) || !strings.Contains(buf.String(), `error="bad radius"`) {
		t.Errorf("Unexpected warn output %q", buf.String())
	}
}

func TestCompactHandlerWithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, nil)).With("requestID", "0123456789abcdef").WithGroup("http")

	log.Info("request completed", "status", 200)

	line := buf.String()
	if !strings.Contains(line, "req=01234567") {
		t.Errorf("Expected shortened request id in %q", line)
	}
	if !strings.Contains(line, "http.status=200") {
		t.Errorf("Expected grouped key in %q", line)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		want    slog.Level
		wantErr bool
	}{
		{"", 0, slog.LevelInfo, false},
		{"", 1, slog.LevelDebug, false},
		{"", 3, LevelTrace, false},
		{"warn", 2, slog.LevelWarn, false},
		{"TRACE", 0, LevelTrace, false},
		{"loud", 0, slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.name, tt.count)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q, %d) error = %v, wantErr %v", tt.name, tt.count, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q, %d) = %v, want %v", tt.name, tt.count, got, tt.want)
		}
	}
}

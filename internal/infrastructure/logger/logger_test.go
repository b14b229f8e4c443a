package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWithWriterStampsRunID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter(Config{Level: "info", Format: "json", RunID: "run-123"}, &buf)

	log.Info().Msg("hello")

	line := buf.String()
	if !strings.Contains(line, `"run_id":"run-123"`) {
		t.Errorf("log line missing run id: %s", line)
	}
	if !strings.Contains(line, `"message":"hello"`) {
		t.Errorf("log line missing message: %s", line)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"unknown", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter(Config{Level: "warn", Format: "json"}, &buf)

	log.Info().Msg("dropped")
	log.Warn().Msg("kept")

	line := buf.String()
	if strings.Contains(line, "dropped") {
		t.Errorf("info line must be filtered at warn level: %s", line)
	}
	if !strings.Contains(line, "kept") {
		t.Errorf("warn line must pass: %s", line)
	}
}

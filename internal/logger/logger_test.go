package logger

import (
	"bytes"
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
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer

	log := NewLoggerWithWriter("warn", &buf)
	log.Info("hidden")
	log.Warn("shown", "article", 42)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered, got %q", out)
	}

	if !strings.Contains(out, "shown") || !strings.Contains(out, "article=42") {
		t.Errorf("expected warn record with attrs, got %q", out)
	}
}

func TestLogger_WithSharesLevel(t *testing.T) {
	var buf bytes.Buffer

	log := NewLoggerWithWriter("error", &buf)
	child := log.With("component", "images")

	log.SetLevel("debug")
	child.Debug("visible")

	if !strings.Contains(buf.String(), "component=images") {
		t.Errorf("child logger should follow parent level change, got %q", buf.String())
	}
}

func TestValidLevel_MatchesParseLevel(t *testing.T) {
	for _, name := range []string{"debug", "info", "warn", "warning", "error", " WARN "} {
		if !ValidLevel(name) {
			t.Errorf("ValidLevel(%q) = false", name)
		}
	}

	for _, name := range []string{"", "trace", "verbose"} {
		if ValidLevel(name) {
			t.Errorf("ValidLevel(%q) = true", name)
		}
	}
}

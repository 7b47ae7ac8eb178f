package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("ParseLevel(%q) failed: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseLevel(%q) failed: expected %v, got %v", in, want, got)
		}
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Errorf("ParseLevel failed: expected error for unknown level")
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(slog.LevelInfo, &buf)

	logger.Debug("hidden")
	logger.Info("session saved", "path", "a.dcmstate")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("New failed: debug line written at info level: %q", out)
	}
	if !strings.Contains(out, "session saved") || !strings.Contains(out, "path=a.dcmstate") {
		t.Errorf("New failed: expected info line with attribute, got %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("New failed: expected no color codes for a buffer, got %q", out)
	}
}

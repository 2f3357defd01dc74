package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "console"}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("rendering", slog.String("library", "TV Shows"), slog.Int("frames", 360))
	logger.Debug("hidden")
	logger.Warn("font missing")

	out := buf.String()
	if !strings.Contains(out, "[*] rendering") {
		t.Errorf("missing info line: %q", out)
	}
	if !strings.Contains(out, `library="TV Shows"`) || !strings.Contains(out, "frames=360") {
		t.Errorf("missing attrs: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line leaked at info level: %q", out)
	}
	if !strings.Contains(out, "[!] font missing") {
		t.Errorf("missing warn line: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("colour codes written to a non-terminal: %q", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.With("run", "abc").Debug("chunk done", "chunk", 2)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if rec["msg"] != "chunk done" || rec["run"] != "abc" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}, &bytes.Buffer{}); err == nil {
		t.Error("expected error for xml format")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestProgressSampler(t *testing.T) {
	s := NewProgressSampler(20)
	var logged []int
	for i := 0; i < 100; i++ {
		if s.ShouldLog(i, 100) {
			logged = append(logged, i)
		}
	}
	want := []int{0, 20, 40, 60, 80, 99}
	if len(logged) != len(want) {
		t.Fatalf("logged %v, want %v", logged, want)
	}
	for i := range want {
		if logged[i] != want[i] {
			t.Errorf("logged %v, want %v", logged, want)
			break
		}
	}

	if s.ShouldLog(99, 100) {
		t.Error("last frame logged twice")
	}
}

package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestRing_KeepsMostRecentEntries(t *testing.T) {
	ring := NewRing(2)
	var sink bytes.Buffer
	logger := New(LevelInfo, &sink, ring)

	logger.Info("first")
	logger.Info("second", "slug", "a")
	logger.Debug("dropped by level")
	logger.Warn("third")

	lines := ring.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 retained lines, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "second") || !strings.Contains(lines[0], "slug") {
		t.Fatalf("unexpected oldest line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "third") {
		t.Fatalf("unexpected newest line: %q", lines[1])
	}
	if !strings.Contains(sink.String(), `"msg":"first"`) {
		t.Fatalf("expected json sink to receive every entry, got %s", sink.String())
	}
}

func TestRing_WithFieldsSharesBuffer(t *testing.T) {
	ring := NewRing(10)
	logger := New(LevelDebug, &bytes.Buffer{}, ring).With("component", "orchestrator")

	logger.Debug("intent queued")

	lines := ring.Lines()
	if len(lines) != 1 || !strings.Contains(lines[0], "orchestrator") {
		t.Fatalf("unexpected lines: %v", lines)
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("warn")
	if err != nil || level != LevelWarn {
		t.Fatalf("unexpected level=%v err=%v", level, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

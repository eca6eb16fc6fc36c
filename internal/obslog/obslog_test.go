package obslog

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesDelimitedLineToFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(dir, slog.LevelInfo)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("takeoff commanded", "component", "flight", "seq", 3)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("want 1 log file, got %d", len(entries))
	}
	if !strings.HasPrefix(entries[0].Name(), "log_") {
		t.Errorf("file name = %q, want log_ prefix", entries[0].Name())
	}

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, " - INFO - [flight] takeoff commanded") {
		t.Errorf("unexpected log line: %q", line)
	}
	if !strings.Contains(line, "seq=3") {
		t.Errorf("expected seq=3 attribute, got: %q", line)
	}
}

func TestNewDefaultsComponentWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(dir, slog.LevelInfo)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("no component given")

	entries, _ := os.ReadDir(dir)
	data, _ := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if !strings.Contains(string(data), "[mission]") {
		t.Errorf("want default component [mission], got: %q", data)
	}
}

func TestLevelBelowThresholdIsSuppressed(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(dir, slog.LevelWarn)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("should not appear", "component", "flight")
	logger.Warn("should appear", "component", "flight")

	entries, _ := os.ReadDir(dir)
	data, _ := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if strings.Contains(string(data), "should not appear") {
		t.Errorf("info line should have been suppressed below warn threshold: %q", data)
	}
	if !strings.Contains(string(data), "should appear") {
		t.Errorf("warn line missing: %q", data)
	}
}

func TestWithAttrsCarriesComponentAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(dir, slog.LevelInfo)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	scoped := logger.With("component", "statemachine", "run_id", "abc123")
	scoped.Info("dispatching")

	entries, _ := os.ReadDir(dir)
	data, _ := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if !strings.Contains(string(data), "[statemachine] dispatching run_id=abc123") {
		t.Errorf("unexpected line: %q", data)
	}
}

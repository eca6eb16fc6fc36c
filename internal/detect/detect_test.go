package detect

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFixtureDetectorSequence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "targets.txt")
	content := "\n38.031,-78.512,50\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	d, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	first, err := d.Detect(4)
	if err != nil {
		t.Fatalf("Detect #1: %v", err)
	}
	if len(first) != 0 {
		t.Fatalf("Detect #1: want no targets, got %v", first)
	}

	second, err := d.Detect(4)
	if err != nil {
		t.Fatalf("Detect #2: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("Detect #2: want 1 target, got %d", len(second))
	}
	if second[0].Latitude != 38.031 || second[0].Longitude != -78.512 {
		t.Fatalf("Detect #2: unexpected coordinate %+v", second[0])
	}

	if _, err := d.Detect(4); err == nil {
		t.Fatal("Detect #3: want error once fixture is exhausted")
	}
}

func TestFixtureDetectorMultipleTargetsOnOneLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "targets.txt")
	if err := os.WriteFile(path, []byte("38.0,-78.5,50;38.1,-78.6,60\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	d, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	targets, err := d.Detect(4)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("want 2 targets, got %d", len(targets))
	}
}

func TestNullDetectorAlwaysEmpty(t *testing.T) {
	var d NullDetector
	targets, err := d.Detect(4)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(targets) != 0 {
		t.Fatalf("want no targets, got %v", targets)
	}
}

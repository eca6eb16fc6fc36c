package operation

import (
	"path/filepath"
	"testing"

	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/geo"
)

func TestCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.yaml")

	target, err := geo.New(38.02, -78.02, 30)
	if err != nil {
		t.Fatalf("geo.New: %v", err)
	}

	o := &Operation{
		Phase:             PhaseAirdrop,
		Flight:            FlightFlying,
		Preflight:         PreflightComplete,
		Detection:         DetectionComplete,
		Airdrops:          AirdropsIncomplete,
		Targets:           []geo.Coordinate{target},
		DetectAttempts:    2,
		DropCount:         1,
		MaxDetectAttempts: 3,
		Status:            StatusAbort, // deliberately not persisted
	}

	if err := o.SaveCheckpoint(path); err != nil {
		t.Fatalf("SaveCheckpoint: %v", err)
	}

	restored := &Operation{}
	if err := restored.LoadCheckpoint(path); err != nil {
		t.Fatalf("LoadCheckpoint: %v", err)
	}

	if restored.Phase != o.Phase || restored.Flight != o.Flight || restored.Preflight != o.Preflight {
		t.Errorf("phase/flight/preflight mismatch after round trip: %+v", restored)
	}
	if restored.Detection != o.Detection || restored.Airdrops != o.Airdrops {
		t.Errorf("detection/airdrops mismatch after round trip: %+v", restored)
	}
	if len(restored.Targets) != 1 || restored.Targets[0].Latitude != target.Latitude {
		t.Errorf("targets mismatch after round trip: %+v", restored.Targets)
	}
	if restored.DetectAttempts != 2 || restored.DropCount != 1 || restored.MaxDetectAttempts != 3 {
		t.Errorf("counters mismatch after round trip: %+v", restored)
	}
	if restored.Status == StatusAbort {
		t.Error("Status should not be persisted across a checkpoint")
	}
}

func TestLoadCheckpointMissingFileIsNotError(t *testing.T) {
	o := &Operation{MaxDetectAttempts: 1}
	path := filepath.Join(t.TempDir(), "nope.yaml")
	if err := o.LoadCheckpoint(path); err != nil {
		t.Fatalf("LoadCheckpoint on missing file: %v", err)
	}
	if o.MaxDetectAttempts != 1 {
		t.Errorf("MaxDetectAttempts changed despite missing checkpoint: %d", o.MaxDetectAttempts)
	}
}

func TestLoadCheckpointKeepsExistingMaxDetectAttemptsWhenZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.yaml")
	src := &Operation{MaxDetectAttempts: 0, Phase: PhaseTakeoff}
	if err := src.SaveCheckpoint(path); err != nil {
		t.Fatalf("SaveCheckpoint: %v", err)
	}

	dst := &Operation{MaxDetectAttempts: 5}
	if err := dst.LoadCheckpoint(path); err != nil {
		t.Fatalf("LoadCheckpoint: %v", err)
	}
	if dst.MaxDetectAttempts != 5 {
		t.Errorf("MaxDetectAttempts = %d, want unchanged 5 since checkpoint had 0", dst.MaxDetectAttempts)
	}
}

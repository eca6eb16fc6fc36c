package operation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/geo"
)

// checkpoint is the on-disk shape of a Checkpoint file: enough of
// Operation's state that a restart mid-mission does not repeat
// preflight or re-detect already-found targets, per SPEC_FULL.md A5's
// restoration of original_source/uas_script.py's persisted
// current_target/targets fields. spec.md §3 still treats Targets/
// DropCount as in-memory and authoritative (I1–I5 hold over the
// resumed state); this is an optional durability layer on top, not a
// replacement for it.
type checkpoint struct {
	Phase             Phase           `yaml:"phase"`
	Flight            FlightState     `yaml:"flight"`
	Preflight         PreflightState  `yaml:"preflight"`
	Detection         DetectionState  `yaml:"detection"`
	Airdrops          AirdropsState   `yaml:"airdrops"`
	Targets           []geo.Coordinate `yaml:"targets"`
	DetectAttempts    uint32          `yaml:"detect_attempts"`
	DropCount         uint32          `yaml:"drop_count"`
	MaxDetectAttempts uint32          `yaml:"max_detect_attempts"`
}

// SaveCheckpoint writes o's resumable state to path, overwriting
// whatever was there. Status is deliberately not persisted: a resumed
// run always starts OK and re-evaluates its own preflight guard, per
// spec.md §8's idempotence property, rather than resuming into an
// ABORT a human may have already cleared by fixing the field problem
// that caused it.
func (o *Operation) SaveCheckpoint(path string) error {
	cp := checkpoint{
		Phase:             o.Phase,
		Flight:            o.Flight,
		Preflight:         o.Preflight,
		Detection:         o.Detection,
		Airdrops:          o.Airdrops,
		Targets:           o.Targets,
		DetectAttempts:    o.DetectAttempts,
		DropCount:         o.DropCount,
		MaxDetectAttempts: o.MaxDetectAttempts,
	}
	data, err := yaml.Marshal(&cp)
	if err != nil {
		return fmt.Errorf("checkpoint: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("checkpoint: write %s: %w", path, err)
	}
	return nil
}

// LoadCheckpoint restores o's resumable state from path. A missing file
// is not an error: the --resume flag with no prior checkpoint just
// starts fresh from PREFLIGHT.
func (o *Operation) LoadCheckpoint(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checkpoint: read %s: %w", path, err)
	}
	var cp checkpoint
	if err := yaml.Unmarshal(data, &cp); err != nil {
		return fmt.Errorf("checkpoint: parse %s: %w", path, err)
	}

	o.Phase = cp.Phase
	o.Flight = cp.Flight
	o.Preflight = cp.Preflight
	o.Detection = cp.Detection
	o.Airdrops = cp.Airdrops
	o.Targets = cp.Targets
	o.DetectAttempts = cp.DetectAttempts
	o.DropCount = cp.DropCount
	if cp.MaxDetectAttempts > 0 {
		o.MaxDetectAttempts = cp.MaxDetectAttempts
	}
	return nil
}

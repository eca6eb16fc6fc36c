// Package statusapi implements the optional read-only HTTP status
// surface (SPEC_FULL.md A4): a single GET /status endpoint a ground
// operator can poll while the state-machine driver runs, carrying the
// current phase and substate. It is repurposed from the teacher's
// Connect-RPC transport (internal/server, internal/middleware in
// flightpath-dev-flightpath-server) down to the one concern spec.md's
// own CLI has no flag for but the teacher's whole architecture exists
// to serve: exposing drone state over HTTP.
package statusapi

import (
	"sync"

	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/geo"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/operation"
)

// Snapshot is a point-in-time, JSON-serializable copy of Operation's
// state variables.
type Snapshot struct {
	RunID     string          `json:"run_id,omitempty"`
	Phase     string          `json:"phase"`
	Flight    string          `json:"flight"`
	Status    string          `json:"status"`
	Preflight string          `json:"preflight"`
	Detection string          `json:"detection"`
	Airdrops  string          `json:"airdrops"`
	Targets   []geo.Coordinate `json:"targets"`
	DropCount uint32          `json:"drop_count"`
	Attempts  uint32          `json:"detect_attempts"`
}

func flightString(f operation.FlightState) string {
	if f == operation.FlightFlying {
		return "FLYING"
	}
	return "IDLE"
}

func statusString(s operation.Status) string {
	if s == operation.StatusAbort {
		return "ABORT"
	}
	return "OK"
}

func preflightString(p operation.PreflightState) string {
	if p == operation.PreflightComplete {
		return "COMPLETE"
	}
	return "INCOMPLETE"
}

func detectionString(d operation.DetectionState) string {
	switch d {
	case operation.DetectionComplete:
		return "COMPLETE"
	case operation.DetectionFail:
		return "FAIL"
	default:
		return "INCOMPLETE"
	}
}

func airdropsString(a operation.AirdropsState) string {
	if a == operation.AirdropsComplete {
		return "COMPLETE"
	}
	return "INCOMPLETE"
}

// SnapshotOf copies op's state variables into a Snapshot. Callers take
// it from the state-machine goroutine via Driver.OnTransition, so the
// copy itself never races with Operation's single writer.
func SnapshotOf(op *operation.Operation) Snapshot {
	targets := make([]geo.Coordinate, len(op.Targets))
	copy(targets, op.Targets)
	return Snapshot{
		Phase:     op.Phase.String(),
		Flight:    flightString(op.Flight),
		Status:    statusString(op.Status),
		Preflight: preflightString(op.Preflight),
		Detection: detectionString(op.Detection),
		Airdrops:  airdropsString(op.Airdrops),
		Targets:   targets,
		DropCount: op.DropCount,
		Attempts:  op.DetectAttempts,
	}
}

// Store holds the latest published Snapshot behind a mutex so the HTTP
// handler goroutine and the state-machine goroutine never touch the
// same memory unsynchronized.
type Store struct {
	mu    sync.RWMutex
	runID string
	snap  Snapshot
}

// NewStore builds an empty Store tagged with runID (a per-process
// mission run identifier); Set has not yet been called, so Get returns
// the zero Snapshot until the driver's first transition.
func NewStore(runID string) *Store {
	return &Store{runID: runID}
}

// Set stores snap as the latest snapshot, stamping it with the Store's
// run ID. Called from the state-machine goroutine only (via
// Driver.OnTransition).
func (s *Store) Set(snap Snapshot) {
	snap.RunID = s.runID
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

// Get returns the latest stored Snapshot.
func (s *Store) Get() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Package operation implements the Operation (Actions) layer of
// spec.md §4.6: the six orthogonal state variables, the target list
// and retry counters, and one action method per mission phase. Each
// action reads Operation fields, drives the Flight Manager, and writes
// the next phase plus whatever substate changed — it never unwinds an
// error past itself, per spec.md §7's propagation policy.
package operation

import (
	"context"
	"log/slog"

	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/geo"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/geofence"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/planfile"
)

// Phase is the mission_phase state variable.
type Phase int

const (
	PhasePreflight Phase = iota
	PhaseTakeoffWait
	PhaseTakeoff
	PhaseDetect
	PhaseAirdrop
	PhaseLanding
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhasePreflight:
		return "PREFLIGHT"
	case PhaseTakeoffWait:
		return "TAKEOFF_WAIT"
	case PhaseTakeoff:
		return "TAKEOFF"
	case PhaseDetect:
		return "DETECT"
	case PhaseAirdrop:
		return "AIRDROP"
	case PhaseLanding:
		return "LANDING"
	case PhaseComplete:
		return "COMPLETE"
	default:
		return "UNKNOWN"
	}
}

// FlightState is the flight state variable: whether the aircraft is
// airborne.
type FlightState int

const (
	FlightIdle FlightState = iota
	FlightFlying
)

// Status is the status state variable.
type Status int

const (
	StatusOK Status = iota
	StatusAbort
)

// PreflightState is the preflight state variable.
type PreflightState int

const (
	PreflightIncomplete PreflightState = iota
	PreflightComplete
)

// DetectionState is the detection state variable.
type DetectionState int

const (
	DetectionIncomplete DetectionState = iota
	DetectionComplete
	DetectionFail
)

// AirdropsState is the airdrops state variable.
type AirdropsState int

const (
	AirdropsIncomplete AirdropsState = iota
	AirdropsComplete
)

// flightController is the subset of *flight.Manager's operations the
// Operation layer drives, declared here (consumer side) rather than in
// internal/flight so tests can substitute a fake without a live
// autopilot connection, the way iannil-open-uav-telemetry-bridge's
// core.Adapter/Publisher interfaces decouple its southbound/northbound
// collaborators from concrete implementations.
type flightController interface {
	PreflightCheck(ctx context.Context, landingPath, fencePath string, home geo.Coordinate) error
	Takeoff(ctx context.Context, takeoffPath string) error
	WaitForWaypointReached(ctx context.Context, seq uint16, timeoutSeconds float64) error
	WaitForLanded(ctx context.Context, timeoutSeconds float64) error
	WaitForChannelInput(ctx context.Context, channel uint8, value, tolerance uint16, timeoutSeconds float64) error
	AppendMission(ctx context.Context, path string) error
	WaitAndSendNextMission(ctx context.Context) error
	QueueLandingMission() error
	BuildAirdropMission(templatePath string, target geo.Coordinate, targetIndex int, altitude float64) error
	JumpToNextMissionItem(ctx context.Context) error
	Disarm(ctx context.Context, force bool) error
	SetMode(ctx context.Context, name string) error
	Fence() *geofence.Fence
}

// Detector is the injected target-detection collaborator spec.md §1
// scopes out of this repository ("the keypoint-cluster + CNN target
// detector"): capture N images at the current position and return
// whatever ground targets were found.
type Detector interface {
	Detect(imageCount int) ([]geo.Coordinate, error)
}

// Operation holds the six orthogonal state variables of spec.md §3
// plus the target list and retry counters, and drives the Flight
// Manager to realize each phase's action.
type Operation struct {
	flight   flightController
	detector Detector
	plan     *planfile.Plan
	logger   *slog.Logger

	Phase     Phase
	Flight    FlightState
	Status    Status
	Preflight PreflightState
	Detection DetectionState
	Airdrops  AirdropsState

	Targets           []geo.Coordinate
	DetectAttempts    uint32
	DropCount         uint32
	MaxDetectAttempts uint32
}

// New builds an Operation over an already-constructed Flight Manager,
// detector, and Mission Plan. MaxDetectAttempts defaults to 1 per
// spec.md §3.
func New(fm flightController, detector Detector, plan *planfile.Plan, logger *slog.Logger) *Operation {
	if logger == nil {
		logger = slog.Default()
	}
	return &Operation{
		flight:            fm,
		detector:          detector,
		plan:              plan,
		logger:            logger,
		Phase:             PhasePreflight,
		MaxDetectAttempts: 1,
	}
}

// abort sets status to ABORT and logs the cause at a critical level,
// per spec.md §7's "a critical-level log line" on failure.
func (o *Operation) abort(component string, err error) {
	o.Status = StatusAbort
	o.logger.Error(err.Error(), "component", component)
}

package operation

import (
	"context"

	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/apperr"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/mission"
)

// detectImageCount is how many images the detect action instructs the
// camera collaborator to capture per attempt, per spec.md §4.6 ("zero
// delay" between captures — the count itself is an implementer default).
const detectImageCount = 4

// PreflightCheck implements spec.md §4.6's preflight_check. Calling it
// again once Preflight is already COMPLETE is a no-op that returns OK
// immediately (spec.md §8's idempotence property).
func (o *Operation) PreflightCheck(ctx context.Context) {
	if o.Preflight == PreflightComplete {
		o.Phase = PhaseTakeoffWait
		return
	}

	if err := o.validateMissionFile(o.plan.TakeoffPath); err != nil {
		o.abort("operation", err)
		return
	}
	if err := o.validateMissionFile(o.plan.DetectPath); err != nil {
		o.abort("operation", err)
		return
	}
	if err := o.validateMissionFile(o.plan.AirdropPath); err != nil {
		o.abort("operation", err)
		return
	}

	if err := o.flight.PreflightCheck(ctx, o.plan.LandPath, o.plan.GeofencePath, o.plan.Home); err != nil {
		o.abort("flight", err)
		return
	}

	o.Preflight = PreflightComplete
	o.Phase = PhaseTakeoffWait
}

func (o *Operation) validateMissionFile(path string) error {
	m, err := mission.Load(path, mission.TypeMission, 1, 1)
	if err != nil {
		return err
	}
	return m.Validate(o.flight.Fence())
}

// TakeoffWait implements spec.md §4.6's takeoff_wait: wait for the RC
// trigger handshake. On timeout, ABORT and finish on the ground; the
// timeout is honored rather than discarded — spec.md §9's Open
// Question fix.
func (o *Operation) TakeoffWait(ctx context.Context) {
	err := o.flight.WaitForChannelInput(ctx, o.plan.TriggerChannel, o.plan.TriggerValue, 100, o.plan.TriggerWaitTime)
	if err != nil {
		o.abort("flight", err)
		o.Phase = PhaseComplete
		return
	}
	o.Phase = PhaseTakeoff
}

// Takeoff implements spec.md §4.6's takeoff: flight is marked FLYING
// unconditionally before the attempt, per spec's documented pessimistic
// ordering (a failure mid-takeoff still must be treated as airborne for
// LANDING to be the correct recovery phase).
func (o *Operation) Takeoff(ctx context.Context) {
	o.Flight = FlightFlying

	if err := o.flight.Takeoff(ctx, o.plan.TakeoffPath); err != nil {
		o.abort("flight", err)
		o.Phase = PhaseLanding
		return
	}

	if o.Detection == DetectionIncomplete {
		o.Phase = PhaseDetect
		return
	}

	if err := o.buildNextAirdropMission(); err != nil {
		o.abort("operation", err)
		o.Phase = PhaseLanding
		return
	}
	o.Phase = PhaseAirdrop
}

// Detect implements spec.md §4.6's detect: upload the detection
// mission, wait to reach detect_index, capture and classify images,
// and either stage the next airdrop or retry up to MaxDetectAttempts.
func (o *Operation) Detect(ctx context.Context) {
	if err := o.flight.AppendMission(ctx, o.plan.DetectPath); err != nil {
		o.abort("flight", err)
		o.Phase = PhaseLanding
		return
	}
	if err := o.flight.WaitForWaypointReached(ctx, o.plan.DetectIndex, 100); err != nil {
		o.abort("flight", err)
		o.Phase = PhaseLanding
		return
	}

	targets, err := o.detector.Detect(detectImageCount)
	if err != nil {
		o.abort("detector", err)
		o.Phase = PhaseLanding
		return
	}

	if len(targets) > 0 {
		o.Targets = targets
		o.Detection = DetectionComplete
		if err := o.buildNextAirdropMission(); err != nil {
			o.abort("operation", err)
			o.Phase = PhaseLanding
			return
		}
		o.Phase = PhaseAirdrop
		return
	}

	o.DetectAttempts++
	if o.DetectAttempts > o.MaxDetectAttempts {
		o.abort("operation", apperr.New(apperr.NoTargets, "detection exhausted %d attempts", o.DetectAttempts))
		o.Phase = PhaseLanding
		return
	}
	o.Detection = DetectionIncomplete
	o.Phase = PhaseDetect
}

// Airdrop implements spec.md §4.6's airdrop: swap in the staged
// airdrop mission and wait for it to run to completion. The servo is
// not fired here — spec.md §9's resolved Open Question delegates the
// actual release to an external trigger; see Controller.SetServo for
// the path an implementer who wants the controller to own it would use.
func (o *Operation) Airdrop(ctx context.Context) {
	if err := o.flight.WaitAndSendNextMission(ctx); err != nil {
		o.abort("flight", err)
		o.Phase = PhaseLanding
		return
	}

	o.DropCount++

	if o.DropCount%2 == 1 && int(o.DropCount) < len(o.Targets) {
		if err := o.buildNextAirdropMission(); err != nil {
			o.abort("operation", err)
			o.Phase = PhaseLanding
			return
		}
		o.Phase = PhaseAirdrop
		return
	}

	o.Phase = PhaseLanding
}

// Land implements spec.md §4.6's land: swap in and fly the landing
// mission, confirm touchdown, disarm, and either finish the mission
// (after the fourth drop) or reset for another takeoff/detect cycle.
func (o *Operation) Land(ctx context.Context) {
	if err := o.flight.WaitAndSendNextMission(ctx); err != nil {
		o.abort("flight", err)
		o.Phase = PhaseComplete
		return
	}
	if err := o.flight.WaitForLanded(ctx, 200); err != nil {
		o.abort("flight", err)
		o.Phase = PhaseComplete
		return
	}

	if err := o.flight.Disarm(ctx, true); err != nil {
		o.abort("flight", err)
		o.Phase = PhaseComplete
		return
	}
	if err := o.flight.SetMode(ctx, "MANUAL"); err != nil {
		o.abort("flight", err)
		o.Phase = PhaseComplete
		return
	}

	if o.DropCount == 4 {
		o.Airdrops = AirdropsComplete
		o.Phase = PhaseComplete
		return
	}

	if err := o.flight.JumpToNextMissionItem(ctx); err != nil {
		o.abort("flight", err)
		o.Phase = PhaseComplete
		return
	}
	o.Flight = FlightIdle
	o.Phase = PhaseTakeoffWait
}

// QueueLandingMission re-stages the landing mission deferred at
// preflight as the next mission WaitAndSendNextMission will send, for
// the State Machine Driver's append_next_mission step.
func (o *Operation) QueueLandingMission() error {
	return o.flight.QueueLandingMission()
}

// buildNextAirdropMission stages the airdrop mission for targets[DropCount]
// (spec.md §4.6's "build airdrop mission for targets[drop_count]"),
// enforcing invariant I4: AIRDROP may only be entered with a target
// available at the current drop count.
func (o *Operation) buildNextAirdropMission() error {
	if int(o.DropCount) >= len(o.Targets) {
		return apperr.New(apperr.NoTargets, "drop_count %d has no corresponding target", o.DropCount)
	}
	target := o.Targets[o.DropCount]
	return o.flight.BuildAirdropMission(o.plan.AirdropPath, target, int(o.plan.AirdropIndex), o.plan.AirdropAltitude)
}

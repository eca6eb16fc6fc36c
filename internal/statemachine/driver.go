// Package statemachine implements the State Machine Driver of
// spec.md §4.7: the dispatch loop over the phase → action map, the
// ABORT short-circuit table, and append_next_mission's pre-staging of
// the following phase's mission.
package statemachine

import (
	"context"
	"log/slog"

	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/operation"
)

// Driver runs an Operation to completion.
type Driver struct {
	op       *operation.Operation
	logger   *slog.Logger
	publishs []func(*operation.Operation)
}

// New builds a Driver over an already-configured Operation.
func New(op *operation.Operation, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{op: op, logger: logger}
}

// OnTransition registers fn to run, in registration order, on the
// driver's own goroutine after every dispatched action, before the
// next loop iteration reads op.Phase again. This is the only place
// Operation's fields are read for anything other than driving the
// machine itself — the checkpoint writer (A5) and the optional status
// surface (A4) both use it to act on a consistent snapshot without a
// second goroutine ever touching Operation directly, honoring spec.md
// §5's single-writer rule. Multiple subscribers may be registered.
func (d *Driver) OnTransition(fn func(*operation.Operation)) {
	d.publishs = append(d.publishs, fn)
}

// Run dispatches actions until the Operation reaches COMPLETE. An
// unknown phase forces ABORT and LANDING, per spec.md §4.7.
func (d *Driver) Run(ctx context.Context) {
	d.notify()
	for d.op.Phase != operation.PhaseComplete {
		if d.op.Status == operation.StatusAbort {
			d.shortCircuit()
			d.notify()
			continue
		}

		if !d.dispatch(ctx) {
			d.logger.Error("unknown mission phase, forcing abort", "phase", d.op.Phase)
			d.op.Status = operation.StatusAbort
			d.op.Phase = operation.PhaseLanding
			d.notify()
			continue
		}

		d.appendNextMission(ctx)
		d.notify()
	}
}

func (d *Driver) notify() {
	for _, fn := range d.publishs {
		fn(d.op)
	}
}

// shortCircuit implements spec.md §4.7's ABORT handling: if the
// aircraft is on the ground (or already landing), finish in place;
// otherwise force a landing before finishing.
func (d *Driver) shortCircuit() {
	if d.op.Flight == operation.FlightIdle || d.op.Phase == operation.PhaseLanding {
		d.op.Phase = operation.PhaseComplete
		return
	}
	d.op.Phase = operation.PhaseLanding
}

// dispatch invokes the action bound to the current phase, returning
// false for a phase with no action (COMPLETE is handled by the loop
// condition and never reaches here).
func (d *Driver) dispatch(ctx context.Context) bool {
	switch d.op.Phase {
	case operation.PhasePreflight:
		d.op.PreflightCheck(ctx)
	case operation.PhaseTakeoffWait:
		d.op.TakeoffWait(ctx)
	case operation.PhaseTakeoff:
		d.op.Takeoff(ctx)
	case operation.PhaseDetect:
		d.op.Detect(ctx)
	case operation.PhaseAirdrop:
		d.op.Airdrop(ctx)
	case operation.PhaseLanding:
		d.op.Land(ctx)
	default:
		return false
	}
	return true
}

// appendNextMission pre-queues the mission file the following
// transition will need, per spec.md §4.7's append_next_mission. The
// detect and airdrop missions are staged by the actions that decide to
// transition into those phases (Detect.AppendMission and
// Takeoff/Detect's BuildAirdropMission respectively), since an
// immediate re-upload there would splice a new plan into a mission the
// autopilot is still flying — this queues only the landing mission,
// the one swap that is always safe to stage eagerly because
// WaitAndSendNextMission defers the actual upload until the current
// mission's last item is reached.
func (d *Driver) appendNextMission(ctx context.Context) {
	if d.op.Phase == operation.PhaseLanding {
		if err := d.op.QueueLandingMission(); err != nil {
			d.logger.Error(err.Error(), "component", "statemachine")
		}
	}
}

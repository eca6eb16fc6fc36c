package operation

import (
	"context"
	"errors"

	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/geofence"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/geo"
)

// fakeFlight is a test double for flightController. Each field that
// starts with "err" is returned by the matching method when non-nil;
// calls are counted so tests can assert how many times an action
// invoked a given Flight Manager operation.
type fakeFlight struct {
	errPreflight           error
	errTakeoff             error
	errWaitWaypoint        error
	errWaitLanded          error
	errWaitChannel         error
	errAppendMission       error
	errWaitAndSendNext     error
	errQueueLanding        error
	errBuildAirdrop        error
	errJumpToNext          error
	errDisarm              error
	errSetMode             error

	waitAndSendNextCalls int
	buildAirdropCalls    int
	appendMissionCalls   int
}

func (f *fakeFlight) PreflightCheck(ctx context.Context, landingPath, fencePath string, home geo.Coordinate) error {
	return f.errPreflight
}

func (f *fakeFlight) Takeoff(ctx context.Context, takeoffPath string) error {
	return f.errTakeoff
}

func (f *fakeFlight) WaitForWaypointReached(ctx context.Context, seq uint16, timeoutSeconds float64) error {
	return f.errWaitWaypoint
}

func (f *fakeFlight) WaitForLanded(ctx context.Context, timeoutSeconds float64) error {
	return f.errWaitLanded
}

func (f *fakeFlight) WaitForChannelInput(ctx context.Context, channel uint8, value, tolerance uint16, timeoutSeconds float64) error {
	return f.errWaitChannel
}

func (f *fakeFlight) AppendMission(ctx context.Context, path string) error {
	f.appendMissionCalls++
	return f.errAppendMission
}

func (f *fakeFlight) WaitAndSendNextMission(ctx context.Context) error {
	f.waitAndSendNextCalls++
	return f.errWaitAndSendNext
}

func (f *fakeFlight) QueueLandingMission() error {
	return f.errQueueLanding
}

func (f *fakeFlight) BuildAirdropMission(templatePath string, target geo.Coordinate, targetIndex int, altitude float64) error {
	f.buildAirdropCalls++
	return f.errBuildAirdrop
}

func (f *fakeFlight) JumpToNextMissionItem(ctx context.Context) error {
	return f.errJumpToNext
}

func (f *fakeFlight) Disarm(ctx context.Context, force bool) error {
	return f.errDisarm
}

func (f *fakeFlight) SetMode(ctx context.Context, name string) error {
	return f.errSetMode
}

func (f *fakeFlight) Fence() *geofence.Fence {
	return nil
}

// fakeDetector returns a canned sequence of detection results, one per
// call; it errors if called more often than results were supplied.
type fakeDetector struct {
	results [][]geo.Coordinate
	call    int
}

func (d *fakeDetector) Detect(imageCount int) ([]geo.Coordinate, error) {
	if d.call >= len(d.results) {
		return nil, errors.New("fakeDetector: out of canned results")
	}
	r := d.results[d.call]
	d.call++
	return r, nil
}

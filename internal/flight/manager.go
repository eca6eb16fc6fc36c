// Package flight implements the Flight Manager of spec.md §4.4: the
// operations built atop the Mission text format and the Autopilot
// Controller — preflight validation, takeoff, the wait_for_* telemetry
// waits, and the mission append/swap choreography the Operation layer
// drives.
package flight

import (
	"context"
	"time"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/ardupilotmega"

	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/autopilot"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/geo"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/geofence"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/mission"
)

// Config carries the servo and geometry parameters build_airdrop_mission
// and preflight validation need.
type Config struct {
	AirdropServo   uint8
	ServoOpenPWM   uint16
	ServoClosePWM  uint16
	ServoHoldTime  time.Duration
	LoiterRadiusM  float64
	TargetSystem   uint8
	TargetComponent uint8
}

func (c *Config) setDefaults() {
	if c.AirdropServo == 0 {
		c.AirdropServo = 9
	}
	if c.ServoOpenPWM == 0 {
		c.ServoOpenPWM = 2000
	}
	if c.ServoClosePWM == 0 {
		c.ServoClosePWM = 1000
	}
	if c.ServoHoldTime == 0 {
		c.ServoHoldTime = 1500 * time.Millisecond
	}
	if c.LoiterRadiusM == 0 {
		c.LoiterRadiusM = 50
	}
	if c.TargetSystem == 0 {
		c.TargetSystem = 1
	}
	if c.TargetComponent == 0 {
		c.TargetComponent = 1
	}
}

// Manager is the Flight Manager. It is driven by exactly one goroutine
// (the state-machine driver), so its mission bookkeeping needs no
// locking of its own — spec.md §5's single-writer rule.
type Manager struct {
	client *autopilot.Client
	cfg    Config
	fence  *geofence.Fence

	active         *mission.Mission // the mission currently uploaded and executing
	queued         *mission.Mission // staged by build_airdrop_mission/QueueLandingMission, not yet sent
	landingMission *mission.Mission // deferred at preflight, re-staged by QueueLandingMission
}

// New builds a Manager atop an already-dialed autopilot Client.
func New(client *autopilot.Client, cfg Config) *Manager {
	cfg.setDefaults()
	return &Manager{client: client, cfg: cfg}
}

// PreflightCheck implements spec.md §4.4's preflight_check: wait for
// heartbeat, validate and upload the fence, stage the landing mission
// for later, and set home.
func (m *Manager) PreflightCheck(ctx context.Context, landingPath, fencePath string, home geo.Coordinate) error {
	if _, err := m.client.WaitHeartbeat(ctx); err != nil {
		return err
	}

	fenceMission, err := mission.Load(fencePath, mission.TypeFence, m.cfg.TargetSystem, m.cfg.TargetComponent)
	if err != nil {
		return err
	}
	fence, err := fenceFromMission(fenceMission)
	if err != nil {
		return err
	}
	m.fence = fence

	if err := fenceMission.Validate(nil); err != nil {
		return err
	}
	if err := m.client.UploadMission(ctx, fenceMission); err != nil {
		return err
	}

	landing, err := mission.Load(landingPath, mission.TypeMission, m.cfg.TargetSystem, m.cfg.TargetComponent)
	if err != nil {
		return err
	}
	if err := landing.Validate(m.fence); err != nil {
		return err
	}
	m.landingMission = landing // deferred: re-staged by QueueLandingMission before LANDING

	if err := m.client.SetHome(ctx, home); err != nil {
		return err
	}

	return nil
}

// fenceFromMission turns an uploaded fence mission's nav items into a
// geofence.Fence for local pre-upload validation of other missions.
func fenceFromMission(m *mission.Mission) (*geofence.Fence, error) {
	points := make([]geo.Coordinate, 0, m.Len())
	for _, it := range m.Items {
		if it.Command.IsNav() {
			points = append(points, it.Coordinate())
		}
	}
	return &geofence.Fence{Points: points}, nil
}

// Takeoff implements spec.md §4.4's takeoff: load and upload the
// takeoff mission, arm, switch to AUTO, then wait until the autopilot
// has begun executing it.
func (m *Manager) Takeoff(ctx context.Context, takeoffPath string) error {
	takeoff, err := mission.Load(takeoffPath, mission.TypeMission, m.cfg.TargetSystem, m.cfg.TargetComponent)
	if err != nil {
		return err
	}
	if err := takeoff.Validate(m.fence); err != nil {
		return err
	}
	if err := m.client.UploadMission(ctx, takeoff); err != nil {
		return err
	}
	m.active = takeoff

	if err := m.client.Arm(ctx, true); err != nil {
		return err
	}
	if err := m.client.SetMode(ctx, "AUTO"); err != nil {
		return err
	}

	return m.client.WaitUntil(ctx, 30*time.Second, func() bool {
		seq, fresh := m.client.MissionCurrent()
		return fresh && seq > 0
	})
}

// Fence returns the geofence loaded during PreflightCheck, or nil if
// preflight hasn't run yet. Callers use it to validate additional
// mission files (detect, airdrop, takeoff) before handing them to
// Flight Manager upload operations.
func (m *Manager) Fence() *geofence.Fence {
	return m.fence
}

// Disarm is a passthrough to the Controller.
func (m *Manager) Disarm(ctx context.Context, force bool) error {
	return m.client.Disarm(ctx, force)
}

// SetMode is a passthrough to the Controller.
func (m *Manager) SetMode(ctx context.Context, name string) error {
	return m.client.SetMode(ctx, name)
}

// JumpToNextMissionItem implements spec.md §4.4's
// jump_to_next_mission_item: advance one past wherever MISSION_CURRENT
// is now.
func (m *Manager) JumpToNextMissionItem(ctx context.Context) error {
	seq, _ := m.client.MissionCurrent()
	return m.client.SetCurrentMissionItem(ctx, seq+1)
}

// landedStateOnGround mirrors MAV_LANDED_STATE_ON_GROUND without
// importing the dialect package into callers that only need the value
// for comparison.
const landedStateOnGround = ardupilotmega.MAV_LANDED_STATE_ON_GROUND

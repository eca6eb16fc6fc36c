package flight

import (
	"context"

	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/apperr"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/geo"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/mission"
)

// AppendMission loads path, appends its items to the currently active
// plan, and re-uploads the combined mission — spec.md §4.4's
// append_mission. It is safe to call while the active mission is only
// a few items in, which is how the DETECT action extends the takeoff
// mission with the detect waypoints.
func (m *Manager) AppendMission(ctx context.Context, path string) error {
	addition, err := mission.Load(path, mission.TypeMission, m.cfg.TargetSystem, m.cfg.TargetComponent)
	if err != nil {
		return err
	}
	return m.appendAndUpload(ctx, addition.Items)
}

// AppendAirdropMission appends the most recently built airdrop mission
// (see BuildAirdropMission) onto the active plan and re-uploads.
func (m *Manager) AppendAirdropMission(ctx context.Context) error {
	if m.queued == nil {
		return apperr.New(apperr.InvalidPhase, "append_airdrop_mission: no airdrop mission staged")
	}
	items := m.queued.Items
	m.queued = nil
	return m.appendAndUpload(ctx, items)
}

func (m *Manager) appendAndUpload(ctx context.Context, items []mission.Item) error {
	if m.active == nil {
		m.active = mission.New(mission.TypeMission, m.cfg.TargetSystem, m.cfg.TargetComponent)
	}
	m.active.Append(items...)
	if err := m.active.Validate(m.fence); err != nil {
		return err
	}
	return m.client.UploadMission(ctx, m.active)
}

// WaitAndSendNextMission implements spec.md §4.4's
// wait_and_send_next_mission: block until the autopilot is on the
// final item of the active mission, then upload the staged mission
// (built by BuildAirdropMission or queued by QueueLandingMission) as
// the new active mission and reset current to 0.
func (m *Manager) WaitAndSendNextMission(ctx context.Context) error {
	if m.active != nil && m.active.Len() > 0 {
		finalSeq := uint16(m.active.Len() - 1)
		if err := m.WaitForWaypointReached(ctx, finalSeq, 600); err != nil {
			return err
		}
	}

	if m.queued == nil {
		return apperr.New(apperr.InvalidPhase, "wait_and_send_next_mission: no mission staged")
	}
	next := m.queued
	m.queued = nil

	if err := m.client.UploadMission(ctx, next); err != nil {
		return err
	}
	m.active = next

	return m.client.SetCurrentMissionItem(ctx, 0)
}

// QueueLandingMission re-stages the landing mission deferred at
// preflight as the next mission WaitAndSendNextMission will send.
func (m *Manager) QueueLandingMission() error {
	if m.landingMission == nil {
		return apperr.New(apperr.InvalidPhase, "queue_landing_mission: no landing mission staged at preflight")
	}
	m.queued = m.landingMission.Clone()
	return nil
}

// BuildAirdropMission implements spec.md §4.4's build_airdrop_mission:
// clone the airdrop template, replace the waypoint at targetIndex with
// target at altitude, insert a DO_SET_SERVO item after it, and append a
// short loiter tail. The result is staged for WaitAndSendNextMission,
// never touching disk.
func (m *Manager) BuildAirdropMission(templatePath string, target geo.Coordinate, targetIndex int, altitude float64) error {
	template, err := mission.Load(templatePath, mission.TypeMission, m.cfg.TargetSystem, m.cfg.TargetComponent)
	if err != nil {
		return err
	}
	if targetIndex < 0 || targetIndex >= template.Len() {
		return apperr.New(apperr.MalformedItem, "build_airdrop_mission: target_index %d out of range (len %d)", targetIndex, template.Len())
	}

	drop := mission.New(mission.TypeMission, m.cfg.TargetSystem, m.cfg.TargetComponent)
	for i, it := range template.Items {
		if i == targetIndex {
			waypoint := mission.NavItem(0, mission.CmdNavWaypoint,
				geo.Coordinate{Latitude: target.Latitude, Longitude: target.Longitude, Altitude: altitude}, 0, 0, 0, 0)
			servo := mission.DoItem(0, mission.CmdDoSetServo, float64(m.cfg.AirdropServo), float64(m.cfg.ServoOpenPWM), 0)
			drop.Append(waypoint, servo)
			continue
		}
		drop.Append(it)
	}

	drop.Append(mission.NavItem(0, mission.CmdNavLoiterTurns, target, 1, m.cfg.LoiterRadiusM, 0, 0))

	if err := drop.Validate(m.fence); err != nil {
		return err
	}
	m.queued = drop
	return nil
}

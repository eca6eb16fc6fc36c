package autopilot

import (
	"context"
	"fmt"
	"time"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/ardupilotmega"

	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/apperr"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/mission"
)

// uploadBaseTimeout and uploadPerItemTimeout implement spec.md §4.2's
// "base 10s + n/10s" overall deadline; uploadRequestExtension is the
// +10s granted on each valid request observed.
const (
	uploadBaseTimeout        = 10 * time.Second
	uploadPerItemTimeout     = 100 * time.Millisecond
	uploadRequestExtension   = 10 * time.Second
	uploadDeadlinePollPeriod = 100 * time.Millisecond
)

// uploadSession tracks one in-flight mission upload. The Client holds
// at most one at a time: the autopilot connection is a single
// full-duplex channel (spec.md §5), so uploads never overlap.
type uploadSession struct {
	mission  *mission.Mission
	sent     map[uint16]bool
	deadline time.Time
	done     chan error
}

// UploadMission drives the request-response protocol of spec.md §4.2:
// send MISSION_COUNT, answer each MISSION_REQUEST_INT in order (honoring
// duplicates idempotently), and resolve on MISSION_ACK.
func (c *Client) UploadMission(ctx context.Context, m *mission.Mission) error {
	m.Normalize()

	c.mu.Lock()
	if c.upload != nil {
		c.mu.Unlock()
		return fmt.Errorf("autopilot: mission upload already in progress")
	}
	systemID := c.systemID
	n := m.Len()

	session := &uploadSession{
		mission:  m,
		sent:     make(map[uint16]bool, n),
		deadline: time.Now().Add(uploadBaseTimeout + time.Duration(n)*uploadPerItemTimeout),
		done:     make(chan error, 1),
	}
	c.upload = session
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.upload == session {
			c.upload = nil
		}
		c.mu.Unlock()
	}()

	err := c.node.WriteMessageAll(&ardupilotmega.MessageMissionCount{
		TargetSystem:    systemID,
		TargetComponent: c.cfg.ComponentID,
		Count:           uint16(n),
		MissionType:     missionTypeOf(m.Type),
	})
	if err != nil {
		return apperr.New(apperr.UploadTimeout, "mission_count: %v", err)
	}

	ticker := time.NewTicker(uploadDeadlinePollPeriod)
	defer ticker.Stop()

	for {
		select {
		case err := <-session.done:
			return err
		case <-ctx.Done():
			return apperr.New(apperr.Cancelled, "upload_mission: %v", ctx.Err())
		case <-ticker.C:
			c.mu.Lock()
			deadline := session.deadline
			c.mu.Unlock()
			if time.Now().After(deadline) {
				return apperr.New(apperr.UploadTimeout, "no progress before deadline")
			}
		}
	}
}

// handleMissionRequest answers a MISSION_REQUEST(_INT) for seq. A
// duplicate request for an already-sent seq resends the same item
// content rather than being treated as an error, satisfying the
// idempotence property spec.md §8/P6 requires.
func (c *Client) handleMissionRequest(seq uint16) {
	c.mu.Lock()
	session := c.upload
	if session == nil {
		c.mu.Unlock()
		return
	}

	if int(seq) >= session.mission.Len() {
		done := session.done
		c.upload = nil
		c.mu.Unlock()
		done <- apperr.New(apperr.BadSequence, "requested seq %d, mission has %d items", seq, session.mission.Len())
		return
	}

	item := session.mission.Items[seq]
	session.sent[seq] = true
	session.deadline = session.deadline.Add(uploadRequestExtension)
	systemID := c.systemID
	componentID := c.cfg.ComponentID
	missionType := missionTypeOf(session.mission.Type)
	c.mu.Unlock()

	err := c.node.WriteMessageAll(&ardupilotmega.MessageMissionItemInt{
		TargetSystem:    systemID,
		TargetComponent: componentID,
		Seq:             item.Seq,
		Frame:           ardupilotmega.MAV_FRAME(item.Frame),
		Command:         ardupilotmega.MAV_CMD(item.Command),
		Current:         item.Current,
		Autocontinue:    item.Autocontinue,
		Param1:          float32(item.P1),
		Param2:          float32(item.P2),
		Param3:          float32(item.P3),
		Param4:          float32(item.P4),
		X:               item.Coordinate().LatE7(),
		Y:               item.Coordinate().LonE7(),
		Z:               float32(item.Alt),
		MissionType:     missionType,
	})
	if err != nil {
		c.logger.Error("autopilot: failed to send mission item", "seq", seq, "error", err)
	}
}

// handleMissionAck resolves the in-flight upload session.
func (c *Client) handleMissionAck(msg *ardupilotmega.MessageMissionAck) {
	c.mu.Lock()
	session := c.upload
	if session == nil {
		c.mu.Unlock()
		return
	}
	c.upload = nil
	c.mu.Unlock()

	if msg.Type == ardupilotmega.MAV_MISSION_ACCEPTED {
		session.done <- nil
		return
	}
	session.done <- apperr.New(apperr.UnexpectedAck, "mission ack result=%d", msg.Type)
}

// ClearMission removes all items of the given type from the autopilot.
func (c *Client) ClearMission(ctx context.Context, t mission.Type) error {
	c.mu.Lock()
	systemID := c.systemID
	c.mu.Unlock()

	err := c.node.WriteMessageAll(&ardupilotmega.MessageMissionClearAll{
		TargetSystem:    systemID,
		TargetComponent: c.cfg.ComponentID,
		MissionType:     missionTypeOf(t),
	})
	if err != nil {
		return apperr.New(apperr.UnexpectedAck, "clear_mission: %v", err)
	}
	return nil
}

package flight

import (
	"context"
	"time"

	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/apperr"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/autopilot"
)

// channelDwell is the continuous-match duration wait_for_channel_input
// requires before it succeeds, per spec.md §4.4.
const channelDwell = 200 * time.Millisecond

// WaitForWaypointReached polls MISSION_CURRENT until it is at least
// seq, or fails with WaypointTimeout after timeoutSeconds.
func (m *Manager) WaitForWaypointReached(ctx context.Context, seq uint16, timeoutSeconds float64) error {
	err := m.client.WaitUntil(ctx, secondsToDuration(timeoutSeconds), func() bool {
		current, fresh := m.client.MissionCurrent()
		return fresh && current >= seq
	})
	return translateTimeout(err, apperr.WaypointTimeout, "waypoint %d not reached", seq)
}

// WaitForLanded succeeds once EXTENDED_SYS_STATE reports ON_GROUND and
// the armed bit has cleared — whichever observation lands last, since
// both are checked on every poll.
func (m *Manager) WaitForLanded(ctx context.Context, timeoutSeconds float64) error {
	err := m.client.WaitUntil(ctx, secondsToDuration(timeoutSeconds), func() bool {
		state, fresh := m.client.LandedState()
		return fresh && state == landedStateOnGround && !m.client.Armed()
	})
	return translateTimeout(err, apperr.LandedTimeout, "not landed within %.0fs", timeoutSeconds)
}

// WaitForChannelInput succeeds once RC channel's PWM value stays within
// tolerance of value continuously for channelDwell, suppressing
// spurious spikes per spec.md §4.4.
func (m *Manager) WaitForChannelInput(ctx context.Context, channel uint8, value, tolerance uint16, timeoutSeconds float64) error {
	deadline := time.Now().Add(secondsToDuration(timeoutSeconds))
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	var matchSince time.Time

	for {
		pwm, fresh := m.client.RCChannel(channel)
		inRange := fresh && withinTolerance(pwm, value, tolerance)

		if inRange {
			if matchSince.IsZero() {
				matchSince = time.Now()
			} else if time.Since(matchSince) >= channelDwell {
				return nil
			}
		} else {
			matchSince = time.Time{}
		}

		if time.Now().After(deadline) {
			return apperr.New(apperr.ChannelTimeout, "channel %d not at %d within %.0fs", channel, value, timeoutSeconds)
		}

		select {
		case <-ctx.Done():
			return apperr.New(apperr.Cancelled, "wait_for_channel_input: %v", ctx.Err())
		case <-ticker.C:
		}
	}
}

func withinTolerance(pwm, value, tolerance uint16) bool {
	var diff uint16
	if pwm > value {
		diff = pwm - value
	} else {
		diff = value - pwm
	}
	return diff <= tolerance
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// translateTimeout converts autopilot.ErrTimeout into the spec-specific
// apperr code for the operation that was waiting; other errors (e.g.
// apperr.Cancelled from WaitUntil) pass through unchanged.
func translateTimeout(err error, code apperr.Code, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if err == autopilot.ErrTimeout {
		return apperr.New(code, format, args...)
	}
	return err
}

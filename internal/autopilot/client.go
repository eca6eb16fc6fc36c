// Package autopilot wraps the binary message connection to the
// flight-control autopilot: heartbeat handshake, command dispatch with
// retry, the mission upload request-response protocol, and the
// telemetry pump that keeps last-value caches for everything the
// Flight Manager's wait_for_* operations poll.
package autopilot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bluenviron/gomavlib/v3"
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/ardupilotmega"

	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/apperr"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/geo"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/mission"
)

// staleAfter is how long a cached telemetry value is trusted before a
// wait treats it as "no data" per spec.md §5's ordering guarantees.
const staleAfter = 2 * time.Second

// Config configures a Client's retry/timeout behavior and the
// identifiers it presents to the autopilot as a ground-control station.
type Config struct {
	Logger       *slog.Logger
	GCSSystemID  uint8
	ComponentID  uint8 // target component, MAV_COMP_ID_AUTOPILOT1 unless overridden
	SerialBaud   int
	RetryCount   int
	RetryTimeout time.Duration
}

func (c *Config) setDefaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.GCSSystemID == 0 {
		c.GCSSystemID = 255
	}
	if c.ComponentID == 0 {
		c.ComponentID = 1
	}
	if c.SerialBaud == 0 {
		c.SerialBaud = 57600
	}
	if c.RetryCount == 0 {
		c.RetryCount = 3
	}
	if c.RetryTimeout == 0 {
		c.RetryTimeout = 2 * time.Second
	}
}

// Client is the Autopilot Controller of spec.md §4.3. It owns the sole
// full-duplex channel to the autopilot: only Client sends or receives
// on the underlying node.
type Client struct {
	node   *gomavlib.Node
	cfg    Config
	logger *slog.Logger

	mu sync.Mutex

	heartbeatOnce sync.Once
	heartbeatCh   chan struct{}
	systemID      uint8

	connected     bool
	lastHeartbeat time.Time
	armed         bool
	customMode    uint32

	missionCurrent   uint16
	missionCurrentAt time.Time

	landedState   ardupilotmega.MAV_LANDED_STATE
	landedStateAt time.Time

	rcChannels   [19]uint16 // 1-indexed, [0] unused
	rcChannelsAt time.Time

	ackWaitCommand ardupilotmega.MAV_CMD
	ackWaitCh      chan *ardupilotmega.MessageCommandAck

	upload *uploadSession
}

// Dial parses connection (a serial device path, optionally suffixed
// with ":<baud>", or a "tcp://host:port" / "udp://host:port" URL) and
// opens a node against it using the ardupilotmega dialect — ArduPlane
// is a superset consumer of the common dialect plus the vendor
// messages this controller doesn't use, so ardupilotmega covers both.
func Dial(connection string, cfg Config) (*Client, error) {
	cfg.setDefaults()

	endpoint, err := parseEndpoint(connection, cfg.SerialBaud)
	if err != nil {
		return nil, err
	}

	node, err := gomavlib.NewNode(gomavlib.NodeConf{
		Endpoints:   []gomavlib.EndpointConf{endpoint},
		Dialect:     ardupilotmega.Dialect,
		OutVersion:  gomavlib.V2,
		OutSystemID: cfg.GCSSystemID,
	})
	if err != nil {
		return nil, fmt.Errorf("autopilot: opening connection %q: %w", connection, err)
	}

	c := &Client{
		node:        node,
		cfg:         cfg,
		logger:      cfg.Logger,
		heartbeatCh: make(chan struct{}),
	}

	go c.pump()

	return c, nil
}

func parseEndpoint(connection string, defaultBaud int) (gomavlib.EndpointConf, error) {
	switch {
	case strings.HasPrefix(connection, "tcp://"):
		return gomavlib.EndpointTCPClient{Address: strings.TrimPrefix(connection, "tcp://")}, nil
	case strings.HasPrefix(connection, "udp://"):
		return gomavlib.EndpointUDPClient{Address: strings.TrimPrefix(connection, "udp://")}, nil
	default:
		device, baud := connection, defaultBaud
		if i := strings.LastIndex(connection, ":"); i >= 0 {
			if parsed, err := strconv.Atoi(connection[i+1:]); err == nil {
				device, baud = connection[:i], parsed
			}
		}
		return gomavlib.EndpointSerial{Device: device, Baud: baud}, nil
	}
}

// Close shuts down the underlying node. Safe to call once.
func (c *Client) Close() error {
	c.node.Close()
	return nil
}

// pump is the single background activity draining the connection. It
// dispatches each message to a per-type handler, updating the
// last-value caches that WaitUntil's callers poll.
func (c *Client) pump() {
	for evt := range c.node.Events() {
		frm, ok := evt.(*gomavlib.EventFrame)
		if !ok {
			continue
		}

		switch msg := frm.Message().(type) {
		case *ardupilotmega.MessageHeartbeat:
			c.handleHeartbeat(msg, frm.SystemID())
		case *ardupilotmega.MessageCommandAck:
			c.handleCommandAck(msg)
		case *ardupilotmega.MessageMissionCurrent:
			c.handleMissionCurrent(msg)
		case *ardupilotmega.MessageExtendedSysState:
			c.handleExtendedSysState(msg)
		case *ardupilotmega.MessageRcChannels:
			c.handleRCChannels(msg)
		case *ardupilotmega.MessageMissionRequest:
			c.handleMissionRequest(msg.Seq)
		case *ardupilotmega.MessageMissionRequestInt:
			c.handleMissionRequest(msg.Seq)
		case *ardupilotmega.MessageMissionAck:
			c.handleMissionAck(msg)
		}
	}
}

func (c *Client) handleHeartbeat(msg *ardupilotmega.MessageHeartbeat, sysID uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		c.logger.Info("autopilot connected", "system_id", sysID)
	}
	c.connected = true
	c.systemID = sysID
	c.lastHeartbeat = time.Now()
	c.armed = msg.BaseMode&ardupilotmega.MAV_MODE_FLAG_SAFETY_ARMED != 0
	c.customMode = msg.CustomMode

	c.heartbeatOnce.Do(func() { close(c.heartbeatCh) })
}

func (c *Client) handleCommandAck(msg *ardupilotmega.MessageCommandAck) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ackWaitCh != nil && msg.Command == c.ackWaitCommand {
		select {
		case c.ackWaitCh <- msg:
		default:
		}
	}
}

func (c *Client) handleMissionCurrent(msg *ardupilotmega.MessageMissionCurrent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.missionCurrent = msg.Seq
	c.missionCurrentAt = time.Now()
}

func (c *Client) handleExtendedSysState(msg *ardupilotmega.MessageExtendedSysState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.landedState = msg.LandedState
	c.landedStateAt = time.Now()
}

func (c *Client) handleRCChannels(msg *ardupilotmega.MessageRcChannels) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw := [19]uint16{
		1: msg.Chan1Raw, 2: msg.Chan2Raw, 3: msg.Chan3Raw, 4: msg.Chan4Raw,
		5: msg.Chan5Raw, 6: msg.Chan6Raw, 7: msg.Chan7Raw, 8: msg.Chan8Raw,
		9: msg.Chan9Raw, 10: msg.Chan10Raw, 11: msg.Chan11Raw, 12: msg.Chan12Raw,
		13: msg.Chan13Raw, 14: msg.Chan14Raw, 15: msg.Chan15Raw, 16: msg.Chan16Raw,
		17: msg.Chan17Raw, 18: msg.Chan18Raw,
	}
	c.rcChannels = raw
	c.rcChannelsAt = time.Now()
}

// WaitHeartbeat blocks until the first HEARTBEAT arrives and returns
// the system id every subsequent operation targets.
func (c *Client) WaitHeartbeat(ctx context.Context) (uint8, error) {
	select {
	case <-c.heartbeatCh:
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.systemID, nil
	case <-ctx.Done():
		return 0, apperr.New(apperr.Cancelled, "wait_heartbeat: %v", ctx.Err())
	}
}

// Armed reports the last-known SAFETY_ARMED bit from HEARTBEAT.
func (c *Client) Armed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armed
}

// CustomMode returns the last-known custom_mode value and its symbolic name.
func (c *Client) CustomMode() (uint32, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.customMode, modeName(c.customMode)
}

// MissionCurrent returns the last-known MISSION_CURRENT seq and whether
// the cache is fresh (not older than staleAfter).
func (c *Client) MissionCurrent() (seq uint16, fresh bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.missionCurrent, time.Since(c.missionCurrentAt) <= staleAfter
}

// LandedState returns the last-known EXTENDED_SYS_STATE landed_state
// and whether the cache is fresh.
func (c *Client) LandedState() (state ardupilotmega.MAV_LANDED_STATE, fresh bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.landedState, time.Since(c.landedStateAt) <= staleAfter
}

// RCChannel returns the last-known PWM for a 1-indexed RC channel and
// whether the cache is fresh.
func (c *Client) RCChannel(channel uint8) (pwm uint16, fresh bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if int(channel) >= len(c.rcChannels) {
		return 0, false
	}
	return c.rcChannels[channel], time.Since(c.rcChannelsAt) <= staleAfter
}

// pollInterval is the 4 Hz cadence spec.md §4.4 specifies for
// wait_for_waypoint_reached; the other wait_for_* operations share it
// since all of them are condition-waits over the same polled caches.
const pollInterval = 250 * time.Millisecond

// ErrTimeout is returned by WaitUntil when the deadline elapses without
// predicate() becoming true. Callers (the Flight Manager's wait_for_*
// operations) translate it into the spec-specific code — WaypointTimeout,
// LandedTimeout, ChannelTimeout — for the condition they were polling.
var ErrTimeout = fmt.Errorf("autopilot: wait timed out")

// WaitUntil blocks until predicate() is true, ctx is cancelled, or
// timeout elapses — the condition-wait primitive every Flight Manager
// wait_for_* builds on, per spec.md §9. Since every cache this package
// exposes is itself filled by 4 Hz (or faster) telemetry, polling the
// predicate at pollInterval is the condition-wait: no separate signal
// is needed beyond the cache's own freshness.
func (c *Client) WaitUntil(ctx context.Context, timeout time.Duration, predicate func() bool) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	if predicate() {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return apperr.New(apperr.Cancelled, "wait cancelled: %v", ctx.Err())
		case <-ticker.C:
			if predicate() {
				return nil
			}
			if time.Now().After(deadline) {
				return ErrTimeout
			}
		}
	}
}

// sendCommand issues a COMMAND_LONG, making up to cfg.RetryCount
// attempts in total and re-sending the full command after an ACK
// timeout or a rejected ACK, per spec.md §4.3.
func (c *Client) sendCommand(ctx context.Context, cmd ardupilotmega.MAV_CMD, p1, p2, p3, p4, p5, p6, p7 float32) error {
	c.mu.Lock()
	systemID := c.systemID
	c.mu.Unlock()

	ackCh := make(chan *ardupilotmega.MessageCommandAck, 1)
	c.mu.Lock()
	c.ackWaitCommand = cmd
	c.ackWaitCh = ackCh
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.ackWaitCh = nil
		c.mu.Unlock()
	}()

	var lastErr error
	for attempt := 0; attempt < c.cfg.RetryCount; attempt++ {
		err := c.node.WriteMessageAll(&ardupilotmega.MessageCommandLong{
			TargetSystem:    systemID,
			TargetComponent: c.cfg.ComponentID,
			Command:         cmd,
			Param1:          p1,
			Param2:          p2,
			Param3:          p3,
			Param4:          p4,
			Param5:          p5,
			Param6:          p6,
			Param7:          p7,
		})
		if err != nil {
			lastErr = err
			continue
		}

		select {
		case ack := <-ackCh:
			if ack.Result == ardupilotmega.MAV_RESULT_ACCEPTED {
				return nil
			}
			lastErr = fmt.Errorf("command %d rejected: result=%d", cmd, ack.Result)
		case <-ctx.Done():
			return apperr.New(apperr.Cancelled, "send_command: %v", ctx.Err())
		case <-time.After(c.cfg.RetryTimeout):
			lastErr = fmt.Errorf("command %d: ack timeout", cmd)
		}
	}

	return apperr.New(apperr.AckTimeout, "command %d: %v", cmd, lastErr)
}

// SetMode maps name via the ArduPlane mode table and issues
// MAV_CMD_DO_SET_MODE with the custom-mode bit.
func (c *Client) SetMode(ctx context.Context, name string) error {
	custom, ok := planeModes[strings.ToUpper(name)]
	if !ok {
		return apperr.New(apperr.UnknownMode, "%s", name)
	}

	err := c.sendCommand(ctx, ardupilotmega.MAV_CMD_DO_SET_MODE,
		float32(ardupilotmega.MAV_MODE_FLAG_CUSTOM_MODE_ENABLED), float32(custom), 0, 0, 0, 0, 0)
	if err != nil {
		if code, ok := apperr.CodeOf(err); ok && code == apperr.AckTimeout {
			return apperr.New(apperr.ModeRejected, "%s", name)
		}
		return err
	}
	return nil
}

// Arm sends COMPONENT_ARM_DISARM(1); force bypasses pre-arm checks.
func (c *Client) Arm(ctx context.Context, force bool) error {
	return c.armDisarm(ctx, 1, force)
}

// Disarm sends COMPONENT_ARM_DISARM(0); force bypasses in-air checks.
func (c *Client) Disarm(ctx context.Context, force bool) error {
	return c.armDisarm(ctx, 0, force)
}

func (c *Client) armDisarm(ctx context.Context, arm float32, force bool) error {
	var magic float32
	if force {
		magic = 21196 // MAV_CMD_COMPONENT_ARM_DISARM force-arm/disarm magic value
	}
	err := c.sendCommand(ctx, ardupilotmega.MAV_CMD_COMPONENT_ARM_DISARM, arm, magic, 0, 0, 0, 0, 0)
	if err != nil {
		if code, ok := apperr.CodeOf(err); ok && code == apperr.AckTimeout {
			return apperr.New(apperr.ArmRejected, "arm=%v force=%v", arm == 1, force)
		}
		return err
	}
	return nil
}

// SetServo sends DO_SET_SERVO for the given output channel index.
func (c *Client) SetServo(ctx context.Context, index uint8, pwmMicros uint16) error {
	err := c.sendCommand(ctx, ardupilotmega.MAV_CMD_DO_SET_SERVO, float32(index), float32(pwmMicros), 0, 0, 0, 0, 0)
	if err != nil {
		if code, ok := apperr.CodeOf(err); ok && code == apperr.AckTimeout {
			return apperr.New(apperr.ServoRejected, "channel=%d pwm=%d", index, pwmMicros)
		}
		return err
	}
	return nil
}

// SetHome sends DO_SET_HOME with an explicit coordinate.
func (c *Client) SetHome(ctx context.Context, home geo.Coordinate) error {
	return c.sendCommand(ctx, ardupilotmega.MAV_CMD_DO_SET_HOME, 0,
		0, 0, 0, float32(home.Latitude), float32(home.Longitude), float32(home.Altitude))
}

// SetCurrentMissionItem sends MISSION_SET_CURRENT so the autopilot
// skips ahead to seq without re-uploading.
func (c *Client) SetCurrentMissionItem(ctx context.Context, seq uint16) error {
	c.mu.Lock()
	systemID := c.systemID
	c.mu.Unlock()

	err := c.node.WriteMessageAll(&ardupilotmega.MessageMissionSetCurrent{
		TargetSystem:    systemID,
		TargetComponent: c.cfg.ComponentID,
		Seq:             seq,
	})
	if err != nil {
		return apperr.New(apperr.UnexpectedAck, "set_current_mission_item(%d): %v", seq, err)
	}
	return nil
}

// missionTypeOf maps mission.Type to the MAV_MISSION_TYPE the upload
// protocol and MISSION_CLEAR_ALL both need.
func missionTypeOf(t mission.Type) ardupilotmega.MAV_MISSION_TYPE {
	switch t {
	case mission.TypeFence:
		return ardupilotmega.MAV_MISSION_TYPE_FENCE
	case mission.TypeRally:
		return ardupilotmega.MAV_MISSION_TYPE_RALLY
	default:
		return ardupilotmega.MAV_MISSION_TYPE_MISSION
	}
}

// Package mission implements the mission item/mission data model and
// the line-oriented QGC WPL text format: parsing, serialization, and
// pre-upload validation. It has no knowledge of the autopilot wire
// protocol — internal/autopilot drives the actual upload using the
// Mission this package produces.
package mission

import "github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/geo"

// Frame is the coordinate frame a mission item's position is expressed
// in, matching the MAV_FRAME values the QGC WPL format encodes.
type Frame int

const (
	FrameGlobal       Frame = 0 // MAV_FRAME_GLOBAL
	FrameMission      Frame = 2 // MAV_FRAME_MISSION
	FrameRelativeHome Frame = 3 // MAV_FRAME_GLOBAL_RELATIVE_ALT
)

func (f Frame) String() string {
	switch f {
	case FrameGlobal:
		return "GLOBAL"
	case FrameMission:
		return "MISSION"
	case FrameRelativeHome:
		return "RELATIVE_HOME"
	default:
		return "UNKNOWN_FRAME"
	}
}

// Command is a mission item command, matching the subset of MAV_CMD
// values this controller issues or recognizes in a loaded mission file.
type Command int

const (
	CmdNavWaypoint        Command = 16
	CmdNavReturnToLaunch  Command = 20
	CmdNavLand            Command = 21
	CmdNavTakeoff         Command = 22
	CmdNavLoiterTurns     Command = 18
	CmdNavLoiterUnlim     Command = 17
	CmdDoJump             Command = 177
	CmdDoSetServo         Command = 183
)

// knownCommands is consulted by Mission.Validate.
var knownCommands = map[Command]bool{
	CmdNavWaypoint:       true,
	CmdNavReturnToLaunch: true,
	CmdNavLand:           true,
	CmdNavTakeoff:        true,
	CmdNavLoiterTurns:    true,
	CmdNavLoiterUnlim:    true,
	CmdDoJump:            true,
	CmdDoSetServo:        true,
}

func (c Command) String() string {
	switch c {
	case CmdNavWaypoint:
		return "NAV_WAYPOINT"
	case CmdNavReturnToLaunch:
		return "NAV_RETURN_TO_LAUNCH"
	case CmdNavLand:
		return "NAV_LAND"
	case CmdNavTakeoff:
		return "NAV_TAKEOFF"
	case CmdNavLoiterTurns:
		return "NAV_LOITER_TURNS"
	case CmdNavLoiterUnlim:
		return "NAV_LOITER_UNLIM"
	case CmdDoJump:
		return "DO_JUMP"
	case CmdDoSetServo:
		return "DO_SET_SERVO"
	default:
		return "UNKNOWN_COMMAND"
	}
}

// IsNav reports whether the command is a navigation command, i.e. one
// whose lat/lon/alt fields carry a real Coordinate rather than three
// free-form do-command parameters.
func (c Command) IsNav() bool {
	switch c {
	case CmdNavWaypoint, CmdNavReturnToLaunch, CmdNavLand, CmdNavTakeoff, CmdNavLoiterTurns, CmdNavLoiterUnlim:
		return true
	default:
		return false
	}
}

// Type tags which autopilot mission list an Item/Mission belongs to.
type Type int

const (
	TypeMission Type = 0
	TypeFence   Type = 1
	TypeRally   Type = 2
)

// Item is one mission record: the twelve fields of a QGC WPL line.
type Item struct {
	Seq          uint16
	Current      uint8
	Frame        Frame
	Command      Command
	P1, P2, P3   float64
	P4           float64
	Lat, Lon     float64
	Alt          float64
	Autocontinue uint8
}

// Coordinate returns the Item's position as a geo.Coordinate. Valid for
// any item — do-commands that don't use position carry zero lat/lon/alt,
// which callers should ignore by checking Command.IsNav first.
func (it Item) Coordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: it.Lat, Longitude: it.Lon, Altitude: it.Alt}
}

// NavItem builds a navigation mission Item at seq targeting c.
func NavItem(seq uint16, cmd Command, c geo.Coordinate, p1, p2, p3, p4 float64) Item {
	return Item{
		Seq:          seq,
		Frame:        FrameRelativeHome,
		Command:      cmd,
		P1:           p1,
		P2:           p2,
		P3:           p3,
		P4:           p4,
		Lat:          c.Latitude,
		Lon:          c.Longitude,
		Alt:          c.Altitude,
		Autocontinue: 1,
	}
}

// DoItem builds a non-navigation (DO_*) mission Item at seq.
func DoItem(seq uint16, cmd Command, p1, p2, p3 float64) Item {
	return Item{
		Seq:          seq,
		Frame:        FrameMission,
		Command:      cmd,
		P1:           p1,
		P2:           p2,
		P3:           p3,
		Autocontinue: 1,
	}
}

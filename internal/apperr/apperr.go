// Package apperr defines the numeric error-kind codes spec.md §7
// assigns to the mission controller and the opaque-code propagation
// policy: the Autopilot Controller and Mission return a Code, the
// Flight Manager forwards it unchanged, and the Operation layer is the
// only place that turns a Code into an ABORT decision.
package apperr

import (
	"errors"
	"fmt"
)

// Code is a numeric error kind. Values are grouped by the bands
// spec.md §7 defines: 100s logic, 200s protocol, 300s telemetry waits,
// 400s commands, 500s files.
type Code int

const (
	// Logic errors (100s).
	InvalidPhase       Code = 100
	NoTargets          Code = 101
	AltitudeOutOfRange Code = 102
	OutsideFence       Code = 103

	// Protocol errors (200s).
	UploadTimeout Code = 200
	AckTimeout    Code = 201
	UnknownMode   Code = 202
	UnexpectedAck Code = 203
	BadSequence   Code = 204

	// Telemetry wait errors (300s).
	WaypointTimeout Code = 300
	LandedTimeout   Code = 301
	ChannelTimeout  Code = 302
	Cancelled       Code = 303

	// Command errors (400s).
	ArmRejected   Code = 400
	ModeRejected  Code = 401
	ServoRejected Code = 402

	// File errors (500s).
	FileNotFound   Code = 500
	FileEmpty      Code = 501
	MalformedItem  Code = 502
	MissingKey     Code = 503
	MalformedValue Code = 504
)

var names = map[Code]string{
	InvalidPhase:       "InvalidPhase",
	NoTargets:          "NoTargets",
	AltitudeOutOfRange: "AltitudeOutOfRange",
	OutsideFence:       "OutsideFence",

	UploadTimeout: "UploadTimeout",
	AckTimeout:    "AckTimeout",
	UnknownMode:   "UnknownMode",
	UnexpectedAck: "UnexpectedAck",
	BadSequence:   "BadSequence",

	WaypointTimeout: "WaypointTimeout",
	LandedTimeout:   "LandedTimeout",
	ChannelTimeout:  "ChannelTimeout",
	Cancelled:       "Cancelled",

	ArmRejected:   "ArmRejected",
	ModeRejected:  "ModeRejected",
	ServoRejected: "ServoRejected",

	FileNotFound:   "FileNotFound",
	FileEmpty:      "FileEmpty",
	MalformedItem:  "MalformedItem",
	MissingKey:     "MissingKey",
	MalformedValue: "MalformedValue",
}

// String renders the code's symbolic name, or a numeric fallback for an
// unrecognized code.
func (c Code) String() string {
	if name, ok := names[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Error is the concrete error type every layer below Operation returns.
// Detail carries the human-readable context; Code is what higher layers
// branch on.
type Error struct {
	Code   Code
	Detail string
}

// New builds an *Error for the given code with a formatted detail
// message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Detail: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// Decode returns the human-readable message for a Code, matching
// Controller.decode_error from spec.md §4.3/§7.
func Decode(code Code) string {
	return code.String()
}

// CodeOf extracts the Code from err if it (or something it wraps) is an
// *Error, returning ok=false otherwise.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}

package autopilot

import (
	"testing"

	"github.com/bluenviron/gomavlib/v3"
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/ardupilotmega"

	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/mission"
)

func TestParseEndpoint_Serial(t *testing.T) {
	ep, err := parseEndpoint("/dev/ttyACM0", 57600)
	if err != nil {
		t.Fatalf("parseEndpoint() error = %v", err)
	}
	serial, ok := ep.(gomavlib.EndpointSerial)
	if !ok {
		t.Fatalf("parseEndpoint() = %T, want EndpointSerial", ep)
	}
	if serial.Device != "/dev/ttyACM0" || serial.Baud != 57600 {
		t.Errorf("parseEndpoint() = %+v, want device /dev/ttyACM0 baud 57600", serial)
	}
}

func TestParseEndpoint_SerialWithBaud(t *testing.T) {
	ep, err := parseEndpoint("/dev/ttyUSB0:115200", 57600)
	if err != nil {
		t.Fatalf("parseEndpoint() error = %v", err)
	}
	serial := ep.(gomavlib.EndpointSerial)
	if serial.Device != "/dev/ttyUSB0" || serial.Baud != 115200 {
		t.Errorf("parseEndpoint() = %+v, want device /dev/ttyUSB0 baud 115200", serial)
	}
}

func TestParseEndpoint_TCP(t *testing.T) {
	ep, err := parseEndpoint("tcp://127.0.0.1:5760", 57600)
	if err != nil {
		t.Fatalf("parseEndpoint() error = %v", err)
	}
	tcp, ok := ep.(gomavlib.EndpointTCPClient)
	if !ok {
		t.Fatalf("parseEndpoint() = %T, want EndpointTCPClient", ep)
	}
	if tcp.Address != "127.0.0.1:5760" {
		t.Errorf("parseEndpoint() address = %q, want 127.0.0.1:5760", tcp.Address)
	}
}

func TestParseEndpoint_UDP(t *testing.T) {
	ep, err := parseEndpoint("udp://127.0.0.1:14550", 57600)
	if err != nil {
		t.Fatalf("parseEndpoint() error = %v", err)
	}
	udp, ok := ep.(gomavlib.EndpointUDPClient)
	if !ok {
		t.Fatalf("parseEndpoint() = %T, want EndpointUDPClient", ep)
	}
	if udp.Address != "127.0.0.1:14550" {
		t.Errorf("parseEndpoint() address = %q, want 127.0.0.1:14550", udp.Address)
	}
}

func TestPlaneModes_KnownName(t *testing.T) {
	custom, ok := planeModes["AUTO"]
	if !ok || custom != planeModeAuto {
		t.Errorf("planeModes[AUTO] = (%d, %v), want (%d, true)", custom, ok, planeModeAuto)
	}
}

func TestModeName_RoundTrip(t *testing.T) {
	if got := modeName(planeModeRTL); got != "RTL" {
		t.Errorf("modeName(RTL) = %q, want RTL", got)
	}
	if got := modeName(9999); got != "UNKNOWN" {
		t.Errorf("modeName(9999) = %q, want UNKNOWN", got)
	}
}

func TestMissionTypeOf(t *testing.T) {
	cases := map[mission.Type]ardupilotmega.MAV_MISSION_TYPE{
		mission.TypeMission: ardupilotmega.MAV_MISSION_TYPE_MISSION,
		mission.TypeFence:   ardupilotmega.MAV_MISSION_TYPE_FENCE,
		mission.TypeRally:   ardupilotmega.MAV_MISSION_TYPE_RALLY,
	}
	for in, want := range cases {
		if got := missionTypeOf(in); got != want {
			t.Errorf("missionTypeOf(%v) = %v, want %v", in, got, want)
		}
	}
}

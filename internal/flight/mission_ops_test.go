package flight

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/apperr"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/geo"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/geofence"
)

func writeTemplate(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "airdrop.waypoints")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func unitSquareFence() *geofence.Fence {
	return &geofence.Fence{Points: []geo.Coordinate{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 1},
		{Latitude: 1, Longitude: 1},
		{Latitude: 1, Longitude: 0},
	}}
}

func TestBuildAirdropMission_ReplacesTargetAndInsertsServo(t *testing.T) {
	body := "QGC WPL 110\n" +
		"0\t1\t3\t22\t0\t0\t0\t0\t0.1\t0.1\t30\t1\n" +
		"1\t0\t3\t16\t0\t0\t0\t0\t0.5\t0.5\t30\t1\n" +
		"2\t0\t3\t21\t0\t0\t0\t0\t0.2\t0.2\t0\t1\n"
	path := writeTemplate(t, body)

	m := New(nil, Config{AirdropServo: 5, ServoOpenPWM: 1900, LoiterRadiusM: 40})
	m.fence = unitSquareFence()

	target := geo.Coordinate{Latitude: 0.6, Longitude: 0.6, Altitude: 25}
	if err := m.BuildAirdropMission(path, target, 1, 25); err != nil {
		t.Fatalf("BuildAirdropMission() error = %v", err)
	}

	if m.queued == nil {
		t.Fatal("BuildAirdropMission() left queued nil")
	}
	// takeoff, replaced waypoint, servo, land, loiter tail.
	if got, want := m.queued.Len(), 5; got != want {
		t.Fatalf("queued.Len() = %d, want %d", got, want)
	}
	replaced := m.queued.Items[1]
	if replaced.Lat != target.Latitude || replaced.Lon != target.Longitude {
		t.Errorf("replaced waypoint = %+v, want target %+v", replaced, target)
	}
	servo := m.queued.Items[2]
	if servo.Command != 183 {
		t.Errorf("Items[2].Command = %v, want DO_SET_SERVO", servo.Command)
	}
	if servo.P1 != 5 || servo.P2 != 1900 {
		t.Errorf("servo params = (%v, %v), want (5, 1900)", servo.P1, servo.P2)
	}
}

func TestBuildAirdropMission_TargetIndexOutOfRange(t *testing.T) {
	path := writeTemplate(t, "QGC WPL 110\n0\t1\t3\t22\t0\t0\t0\t0\t0.1\t0.1\t30\t1\n")

	m := New(nil, Config{})
	err := m.BuildAirdropMission(path, geo.Coordinate{}, 5, 25)
	code, ok := apperr.CodeOf(err)
	if !ok || code != apperr.MalformedItem {
		t.Fatalf("BuildAirdropMission() err = %v, want MalformedItem", err)
	}
}

func TestBuildAirdropMission_OutsideFenceRejected(t *testing.T) {
	body := "QGC WPL 110\n" +
		"0\t1\t3\t22\t0\t0\t0\t0\t0.1\t0.1\t30\t1\n" +
		"1\t0\t3\t16\t0\t0\t0\t0\t0.5\t0.5\t30\t1\n"
	path := writeTemplate(t, body)

	m := New(nil, Config{})
	m.fence = unitSquareFence()

	outside := geo.Coordinate{Latitude: 9, Longitude: 9, Altitude: 25}
	err := m.BuildAirdropMission(path, outside, 1, 25)
	code, ok := apperr.CodeOf(err)
	if !ok || code != apperr.OutsideFence {
		t.Fatalf("BuildAirdropMission() err = %v, want OutsideFence", err)
	}
}

func TestQueueLandingMission_NoneStaged(t *testing.T) {
	m := New(nil, Config{})
	err := m.QueueLandingMission()
	code, ok := apperr.CodeOf(err)
	if !ok || code != apperr.InvalidPhase {
		t.Fatalf("QueueLandingMission() err = %v, want InvalidPhase", err)
	}
}

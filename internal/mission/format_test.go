package mission

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/apperr"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/geo"
)

func writeTempPlan(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "mission.waypoints")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	body := "QGC WPL 110\n" +
		"0\t1\t3\t22\t0\t0\t0\t0\t40.7982\t-77.8599\t30\t1\n" +
		"1\t0\t3\t16\t0\t0\t0\t0\t40.7990\t-77.8600\t30\t1\n"
	path := writeTempPlan(t, body)

	m, err := Load(path, TypeMission, 1, 1)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, want := m.Len(), 2; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
	if m.Items[0].Command != CmdNavTakeoff {
		t.Errorf("Items[0].Command = %v, want CmdNavTakeoff", m.Items[0].Command)
	}
	if m.Items[1].Lat != 40.7990 {
		t.Errorf("Items[1].Lat = %v, want 40.7990", m.Items[1].Lat)
	}
}

func TestLoad_MissingHeader(t *testing.T) {
	path := writeTempPlan(t, "0\t1\t3\t22\t0\t0\t0\t0\t0\t0\t0\t1\n")

	_, err := Load(path, TypeMission, 1, 1)
	code, ok := apperr.CodeOf(err)
	if !ok || code != apperr.MalformedItem {
		t.Fatalf("Load() err = %v, want MalformedItem", err)
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeTempPlan(t, "")

	_, err := Load(path, TypeMission, 1, 1)
	code, ok := apperr.CodeOf(err)
	if !ok || code != apperr.FileEmpty {
		t.Fatalf("Load() err = %v, want FileEmpty", err)
	}
}

func TestLoad_HeaderOnly(t *testing.T) {
	path := writeTempPlan(t, "QGC WPL 110\n")

	_, err := Load(path, TypeMission, 1, 1)
	code, ok := apperr.CodeOf(err)
	if !ok || code != apperr.FileEmpty {
		t.Fatalf("Load() err = %v, want FileEmpty", err)
	}
}

func TestLoad_WrongFieldCount(t *testing.T) {
	path := writeTempPlan(t, "QGC WPL 110\n0\t1\t3\t22\t0\n")

	_, err := Load(path, TypeMission, 1, 1)
	code, ok := apperr.CodeOf(err)
	if !ok || code != apperr.MalformedItem {
		t.Fatalf("Load() err = %v, want MalformedItem", err)
	}
}

func TestLoad_NonexistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/does-not-exist.waypoints", TypeMission, 1, 1)
	code, ok := apperr.CodeOf(err)
	if !ok || code != apperr.FileNotFound {
		t.Fatalf("Load() err = %v, want FileNotFound", err)
	}
}

func TestLoad_SkipsBlankLines(t *testing.T) {
	body := "QGC WPL 110\n\n0\t1\t3\t22\t0\t0\t0\t0\t0\t0\t0\t1\n\n"
	path := writeTempPlan(t, body)

	m, err := Load(path, TypeMission, 1, 1)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, want := m.Len(), 1; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
}

func TestSerialize_RoundTrip(t *testing.T) {
	m := New(TypeMission, 1, 1)
	m.Append(
		NavItem(0, CmdNavTakeoff, geo.Coordinate{Latitude: 40.7982, Longitude: -77.8599, Altitude: 30}, 0, 0, 0, 0),
		NavItem(1, CmdNavWaypoint, geo.Coordinate{Latitude: 40.7990, Longitude: -77.86, Altitude: 30}, 0, 0, 0, 0),
	)

	serialized := m.Serialize()
	if !strings.HasPrefix(serialized, header+"\n") {
		t.Fatalf("Serialize() missing header, got %q", serialized)
	}

	path := writeTempPlan(t, serialized)
	roundTripped, err := Load(path, TypeMission, 1, 1)
	if err != nil {
		t.Fatalf("Load(Serialize()) error = %v", err)
	}
	if roundTripped.Len() != m.Len() {
		t.Fatalf("round-trip Len() = %d, want %d", roundTripped.Len(), m.Len())
	}
	for i := range m.Items {
		if roundTripped.Items[i] != m.Items[i] {
			t.Errorf("round-trip item %d = %+v, want %+v", i, roundTripped.Items[i], m.Items[i])
		}
	}
}

// Package detect provides the operation.Detector implementation this
// repository ships with. Camera acquisition and the keypoint-cluster +
// CNN classifier are out of scope per spec.md §1 ("external
// collaborators with interface contracts only") — the real detector
// that drives this interface in competition is LionSight
// (original_source/LionSight2), a separate vision pipeline this
// companion computer calls in-process. What belongs here is the
// contract and a fixture-driven stand-in that lets the rest of the
// mission controller be exercised and field-tested without a camera
// attached, mirroring how original_source/testing/test_flight exercises
// the state machine with a canned capture loop instead of live vision.
package detect

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/geo"
)

// FixtureDetector returns one pre-recorded line of results per call, so
// a ground-test run of the mission controller can rehearse the DETECT
// retry loop (spec.md §4.6/§8 scenario 2) without hardware. Each line
// in the fixture file holds zero or more "lat,lon,alt" triples
// separated by semicolons; a blank line means "no targets found" for
// that attempt.
type FixtureDetector struct {
	lines []string
	call  int
}

// LoadFixture reads a fixture file into a FixtureDetector.
func LoadFixture(path string) (*FixtureDetector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("detect: open fixture %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("detect: read fixture %s: %w", path, err)
	}
	return &FixtureDetector{lines: lines}, nil
}

// Detect implements operation.Detector. imageCount is accepted to
// satisfy the interface but unused: the fixture already represents
// whatever a real capture-and-classify pass would have produced.
func (d *FixtureDetector) Detect(imageCount int) ([]geo.Coordinate, error) {
	if d.call >= len(d.lines) {
		return nil, fmt.Errorf("detect: fixture exhausted after %d attempts", d.call)
	}
	line := strings.TrimSpace(d.lines[d.call])
	d.call++
	if line == "" {
		return nil, nil
	}

	var out []geo.Coordinate
	for _, group := range strings.Split(line, ";") {
		group = strings.TrimSpace(group)
		if group == "" {
			continue
		}
		parts := strings.Split(group, ",")
		if len(parts) != 3 {
			return nil, fmt.Errorf("detect: malformed fixture entry %q", group)
		}
		lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		alt, err3 := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, fmt.Errorf("detect: malformed fixture entry %q", group)
		}
		coord, err := geo.New(lat, lon, alt)
		if err != nil {
			return nil, fmt.Errorf("detect: %w", err)
		}
		out = append(out, coord)
	}
	return out, nil
}

// NullDetector always reports no targets found. It is the default when
// no fixture is configured, so a mission controller started without a
// vision pipeline attached fails closed (exhausts detect_attempts and
// aborts to LANDING) rather than silently never finding anything
// forever.
type NullDetector struct{}

// Detect implements operation.Detector.
func (NullDetector) Detect(imageCount int) ([]geo.Coordinate, error) {
	return nil, nil
}

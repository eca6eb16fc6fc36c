// Package planfile parses a Mission Plan file — the `key: value` text
// format spec.md §4.5 defines — into a typed Plan the Operation layer
// configures itself from.
package planfile

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/apperr"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/geo"
)

// Plan is the parsed Mission Plan file.
type Plan struct {
	TakeoffPath  string
	LandPath     string
	GeofencePath string
	DetectPath   string
	AirdropPath  string

	Home geo.Coordinate

	DetectIndex  uint16
	AirdropIndex uint16

	TriggerChannel  uint8
	TriggerValue    uint16
	TriggerWaitTime float64

	AirdropAltitude float64

	DetectionEntry geo.Coordinate
	DetectionExit  geo.Coordinate
	DetectionWidth float64
}

// requiredKeys lists every key §4.5 requires the file to carry.
var requiredKeys = []string{
	"takeoff", "land", "geofence", "detect", "airdrop",
	"home", "detect_index", "airdrop_index",
	"trigger_channel", "trigger_value", "trigger_wait_time",
	"airdrop_altitude", "detection_entry", "detection_exit", "detection_width",
}

// Load reads path and parses it into a Plan. A missing required key
// fails with apperr.MissingKey; a key present but unparsable for its
// expected type fails with apperr.MalformedValue.
func Load(path string) (*Plan, error) {
	values, err := readKeyValues(path)
	if err != nil {
		return nil, err
	}

	for _, key := range requiredKeys {
		if _, ok := values[key]; !ok {
			return nil, apperr.New(apperr.MissingKey, "missing required key %q", key)
		}
	}

	p := &Plan{
		TakeoffPath:  values["takeoff"],
		LandPath:     values["land"],
		GeofencePath: values["geofence"],
		DetectPath:   values["detect"],
		AirdropPath:  values["airdrop"],
	}

	var perr error
	assign := func(fn func() error) {
		if perr == nil {
			perr = fn()
		}
	}

	assign(func() (err error) { p.Home, err = parseCoordinate(values["home"]); return })
	assign(func() (err error) { p.DetectIndex, err = parseU16(values["detect_index"]); return })
	assign(func() (err error) { p.AirdropIndex, err = parseU16(values["airdrop_index"]); return })
	assign(func() (err error) { p.TriggerChannel, err = parseU8(values["trigger_channel"]); return })
	assign(func() (err error) { p.TriggerValue, err = parseU16(values["trigger_value"]); return })
	assign(func() (err error) { p.TriggerWaitTime, err = parseFloat(values["trigger_wait_time"]); return })
	assign(func() (err error) { p.AirdropAltitude, err = parseFloat(values["airdrop_altitude"]); return })
	assign(func() (err error) { p.DetectionEntry, err = parseCoordinate(values["detection_entry"]); return })
	assign(func() (err error) { p.DetectionExit, err = parseCoordinate(values["detection_exit"]); return })
	assign(func() (err error) { p.DetectionWidth, err = parseFloat(values["detection_width"]); return })
	if perr != nil {
		return nil, perr
	}

	return p, nil
}

// readKeyValues reads a `key: value` file into a map, ignoring blank
// lines. The first colon on a line separates key from value; both
// sides are trimmed of surrounding whitespace.
func readKeyValues(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.New(apperr.FileNotFound, "%s: %v", path, err)
	}
	defer f.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, apperr.New(apperr.FileNotFound, "%s: %v", path, err)
	}
	return values, nil
}

// parseCoordinate parses "lat,lon,alt" into a geo.Coordinate.
func parseCoordinate(raw string) (geo.Coordinate, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 3 {
		return geo.Coordinate{}, apperr.New(apperr.MalformedValue, "expected lat,lon,alt, got %q", raw)
	}
	vals := make([]float64, 3)
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return geo.Coordinate{}, apperr.New(apperr.MalformedValue, "%q: %v", raw, err)
		}
		vals[i] = f
	}
	c, err := geo.New(vals[0], vals[1], vals[2])
	if err != nil {
		return geo.Coordinate{}, apperr.New(apperr.MalformedValue, "%q: %v", raw, err)
	}
	return c, nil
}

func parseU16(raw string) (uint16, error) {
	v, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		return 0, apperr.New(apperr.MalformedValue, "%q: %v", raw, err)
	}
	return uint16(v), nil
}

func parseU8(raw string) (uint8, error) {
	v, err := strconv.ParseUint(raw, 10, 8)
	if err != nil {
		return 0, apperr.New(apperr.MalformedValue, "%q: %v", raw, err)
	}
	return uint8(v), nil
}

func parseFloat(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperr.New(apperr.MalformedValue, "%q: %v", raw, err)
	}
	return v, nil
}

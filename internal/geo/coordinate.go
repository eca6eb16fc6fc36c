// Package geo implements the geodetic coordinate math the rest of the
// mission controller builds on: distance, bearing, and the fixed-point
// encoding the autopilot wire protocol uses for lat/lon.
package geo

import (
	"fmt"
	"math"
)

// earthRadiusMeters is the mean Earth radius used for the haversine
// distance calculation.
const earthRadiusMeters = 6371008.8

// e7 is the scale factor the autopilot wire protocol uses to pack
// degrees into a signed 32-bit integer.
const e7 = 1e7

// Coordinate is an immutable geodetic triple: latitude and longitude in
// degrees, altitude in meters above the home position (relative frame).
type Coordinate struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
}

// MaxAltitudeMeters is the implementer-configured ceiling from spec.md
// §4.1 that New checks against. Callers may assign it (cmd/missionctl
// sets it from configuration); NewWithCeiling ignores it and takes an
// explicit ceiling instead.
var MaxAltitudeMeters = 1000.0

// New constructs a Coordinate, validating latitude/longitude bounds and
// the default altitude ceiling.
func New(lat, lon, alt float64) (Coordinate, error) {
	return NewWithCeiling(lat, lon, alt, MaxAltitudeMeters)
}

// NewWithCeiling constructs a Coordinate against an explicit altitude
// ceiling, so callers (e.g. config-driven limits) are not tied to the
// package-level default.
func NewWithCeiling(lat, lon, alt, ceiling float64) (Coordinate, error) {
	if lat < -90 || lat > 90 {
		return Coordinate{}, fmt.Errorf("geo: latitude %.6f out of range [-90, 90]", lat)
	}
	if lon < -180 || lon > 180 {
		return Coordinate{}, fmt.Errorf("geo: longitude %.6f out of range [-180, 180]", lon)
	}
	if alt > ceiling {
		return Coordinate{}, fmt.Errorf("%w: altitude %.1fm exceeds ceiling %.1fm", ErrInvalidAltitude, alt, ceiling)
	}
	return Coordinate{Latitude: lat, Longitude: lon, Altitude: alt}, nil
}

// ErrInvalidAltitude is returned by New/NewWithCeiling when the
// requested altitude is above the configured ceiling.
var ErrInvalidAltitude = fmt.Errorf("invalid altitude")

// DistanceTo returns the great-circle distance to other, in meters,
// using the haversine formula.
func (c Coordinate) DistanceTo(other Coordinate) float64 {
	lat1 := c.Latitude * math.Pi / 180
	lat2 := other.Latitude * math.Pi / 180
	dLat := (other.Latitude - c.Latitude) * math.Pi / 180
	dLon := (other.Longitude - c.Longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c2 := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c2
}

// BearingTo returns the initial bearing from c to other, in degrees,
// normalized to [0, 360).
func (c Coordinate) BearingTo(other Coordinate) float64 {
	lat1 := c.Latitude * math.Pi / 180
	lat2 := other.Latitude * math.Pi / 180
	dLon := (other.Longitude - c.Longitude) * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	theta := math.Atan2(y, x) * 180 / math.Pi

	return math.Mod(theta+360, 360)
}

// OffsetBy returns the Coordinate reached by traveling distanceMeters
// along bearingDegrees from c, holding altitude fixed.
func (c Coordinate) OffsetBy(distanceMeters, bearingDegrees float64) Coordinate {
	angularDistance := distanceMeters / earthRadiusMeters
	bearing := bearingDegrees * math.Pi / 180
	lat1 := c.Latitude * math.Pi / 180
	lon1 := c.Longitude * math.Pi / 180

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(angularDistance) +
		math.Cos(lat1)*math.Sin(angularDistance)*math.Cos(bearing))
	lon2 := lon1 + math.Atan2(
		math.Sin(bearing)*math.Sin(angularDistance)*math.Cos(lat1),
		math.Cos(angularDistance)-math.Sin(lat1)*math.Sin(lat2))

	return Coordinate{
		Latitude:  lat2 * 180 / math.Pi,
		Longitude: lon2 * 180 / math.Pi,
		Altitude:  c.Altitude,
	}
}

// LatE7 returns the latitude scaled by 1e7 and truncated to a signed
// 32-bit integer, the form the autopilot wire protocol uses for
// MISSION_ITEM_INT/GLOBAL_POSITION_INT fields.
func (c Coordinate) LatE7() int32 {
	return int32(c.Latitude * e7)
}

// LonE7 returns the longitude scaled by 1e7 and truncated to a signed
// 32-bit integer.
func (c Coordinate) LonE7() int32 {
	return int32(c.Longitude * e7)
}

// FromE7 builds a Coordinate from the autopilot's fixed-point integer
// lat/lon form and a float altitude in meters.
func FromE7(latE7, lonE7 int32, alt float64) Coordinate {
	return Coordinate{
		Latitude:  float64(latE7) / e7,
		Longitude: float64(lonE7) / e7,
		Altitude:  alt,
	}
}

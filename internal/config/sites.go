package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SiteConfig names a field site's autopilot connection, so a competition
// crew can pass `--connection fieldA` instead of memorizing a serial
// device or TCP URL per airframe. Adapted from the teacher's per-drone
// registry (internal/config/drones.go in flightpath-dev-flightpath-server)
// down to the single concern this controller needs: one aircraft, one
// connection string, looked up by a short name.
type SiteConfig struct {
	Name       string `yaml:"name"`
	Connection string `yaml:"connection"`
	SerialBaud int    `yaml:"serial_baud,omitempty"`
}

// SiteRegistry holds every known field site's connection profile.
type SiteRegistry struct {
	Sites []SiteConfig `yaml:"sites"`
}

// LoadSiteRegistry loads site connection profiles from a YAML file. A
// missing file is not an error: sites are a convenience, not a
// requirement, so callers fall back to an empty registry.
func LoadSiteRegistry(path string) (*SiteRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &SiteRegistry{}, nil
		}
		return nil, fmt.Errorf("read site registry: %w", err)
	}
	var reg SiteRegistry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse site registry: %w", err)
	}
	return &reg, nil
}

// Resolve returns the connection string for name if name matches a
// registered site, else name itself unchanged (it's already a raw
// serial device or TCP URL).
func (r *SiteRegistry) Resolve(name string) (connection string, baud int) {
	if r != nil {
		for _, s := range r.Sites {
			if s.Name == name {
				return s.Connection, s.SerialBaud
			}
		}
	}
	return name, 0
}

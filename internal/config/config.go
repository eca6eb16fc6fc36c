// Package config holds the mission controller's ambient, environment-
// overridable configuration: autopilot connection tuning, the
// servo/altitude defaults build_airdrop_mission and Coordinate
// construction fall back to, and the optional status-surface bind
// address. spec.md leaves these as implementer defaults; this package
// is where they're made concrete and overridable, the way the teacher's
// own internal/config does for its server settings.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Autopilot AutopilotConfig
	Airdrop   AirdropConfig
	Status    StatusConfig
	Logging   LoggingConfig
}

// AutopilotConfig tunes the Autopilot Controller per spec.md §4.3.
type AutopilotConfig struct {
	SerialBaud        int
	RetryCount        int
	RetryTimeout      time.Duration
	HeartbeatTimeout  time.Duration
	GCSSystemID       uint8
	ComponentID       uint8
	AltitudeCeilingM  float64
}

// AirdropConfig carries the servo parameters build_airdrop_mission uses
// per spec.md §4.4.
type AirdropConfig struct {
	ServoIndex    uint8
	ServoOpenPWM  uint16
	ServoClosePWM uint16
	ServoHoldTime time.Duration
	LoiterRadiusM float64
}

// StatusConfig configures the optional read-only HTTP status surface
// (A4). Off unless Enabled is set — spec.md's own CLI has no flag
// demanding it.
type StatusConfig struct {
	Enabled bool
	Host    string
	Port    int
}

type LoggingConfig struct {
	Level string // "debug", "info", "warn", "error"
	Dir   string // directory flight_logs/log_YYYY-MM-DD_HH-MM-SS.txt is written under
}

// Default returns a Config with the numeric defaults spec.md states
// inline, so that an unconfigured run matches the spec exactly.
func Default() *Config {
	return &Config{
		Autopilot: AutopilotConfig{
			SerialBaud:       57600,
			RetryCount:       3,
			RetryTimeout:     2 * time.Second,
			HeartbeatTimeout: 30 * time.Second,
			GCSSystemID:      255,
			ComponentID:      1,
			AltitudeCeilingM: 400,
		},
		Airdrop: AirdropConfig{
			ServoIndex:    9,
			ServoOpenPWM:  2000,
			ServoClosePWM: 1000,
			ServoHoldTime: 1500 * time.Millisecond,
			LoiterRadiusM: 50,
		},
		Status: StatusConfig{
			Enabled: false,
			Host:    "0.0.0.0",
			Port:    8090,
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "./flight_logs",
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Status.Enabled && (c.Status.Port < 1 || c.Status.Port > 65535) {
		return fmt.Errorf("invalid status port: %d", c.Status.Port)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Autopilot.RetryCount < 1 {
		return fmt.Errorf("invalid retry count: %d", c.Autopilot.RetryCount)
	}
	return nil
}

// StatusAddr returns the status surface's bind address as host:port.
func (c *Config) StatusAddr() string {
	return fmt.Sprintf("%s:%d", c.Status.Host, c.Status.Port)
}

package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Load loads configuration from environment variables, falling back to
// Default for any value not present. Mirrors the teacher's FLIGHTPATH_*
// env-var layering, renamed to this controller's MISSIONCTL_* prefix.
func Load() *Config {
	cfg := Default()

	if v := os.Getenv("MISSIONCTL_STATUS_ENABLED"); v != "" {
		cfg.Status.Enabled = v == "1" || v == "true"
	}
	if v := os.Getenv("MISSIONCTL_STATUS_HOST"); v != "" {
		cfg.Status.Host = v
	}
	if v := os.Getenv("MISSIONCTL_STATUS_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Status.Port = p
		}
	}
	if v := os.Getenv("MISSIONCTL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MISSIONCTL_LOG_DIR"); v != "" {
		cfg.Logging.Dir = v
	}
	if v := os.Getenv("MISSIONCTL_SERIAL_BAUD"); v != "" {
		if b, err := strconv.Atoi(v); err == nil {
			cfg.Autopilot.SerialBaud = b
		}
	}
	if v := os.Getenv("MISSIONCTL_RETRY_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Autopilot.RetryCount = n
		}
	}
	if v := os.Getenv("MISSIONCTL_RETRY_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Autopilot.RetryTimeout = time.Duration(ms) * time.Millisecond
		}
	}
	if v := os.Getenv("MISSIONCTL_ALTITUDE_CEILING_M"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Autopilot.AltitudeCeilingM = f
		}
	}
	if v := os.Getenv("MISSIONCTL_SERVO_INDEX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Airdrop.ServoIndex = uint8(n)
		}
	}
	if v := os.Getenv("MISSIONCTL_SERVO_OPEN_PWM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Airdrop.ServoOpenPWM = uint16(n)
		}
	}
	if v := os.Getenv("MISSIONCTL_SERVO_CLOSE_PWM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Airdrop.ServoClosePWM = uint16(n)
		}
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	return cfg
}

package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// LoadFromEnv loads configuration from environment variables
// Environment variables override file and default values
func LoadFromEnv(cfg *Config) {
	if file := os.Getenv("EYEREMOTE_CONFIG"); file != "" {
		cfg.File = file
	}

	// Database configuration
	if dbPath := os.Getenv("EYEREMOTE_DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	// Settings
	envInt("EYEREMOTE_TIMEOUT", &cfg.Settings.TimeoutSeconds, 0)
	envInt("EYEREMOTE_MAX_TARGETS", &cfg.Settings.MaxTargets, 1)
	envInt("EYEREMOTE_DEVICE_INDEX", &cfg.Settings.DeviceIndex, 0)
	envInt("EYEREMOTE_PRESENT_THRESHOLD", &cfg.Settings.PresentThreshold, 1)
	envInt("EYEREMOTE_ABSENT_THRESHOLD", &cfg.Settings.AbsentThreshold, 1)

	if app := os.Getenv("EYEREMOTE_TARGET_APP"); app != "" {
		cfg.Settings.TargetApp = app
	}

	// Tracker configuration
	if pollInterval := os.Getenv("EYEREMOTE_POLL_INTERVAL_MS"); pollInterval != "" {
		if ms, err := strconv.Atoi(pollInterval); err == nil && ms > 0 {
			interval := time.Duration(ms) * time.Millisecond
			if interval >= cfg.Tracker.MinPollInterval && interval <= cfg.Tracker.MaxPollInterval {
				cfg.Tracker.PollInterval = interval
			}
		}
	}

	// Camera configuration
	if face := os.Getenv("EYEREMOTE_FACE_CASCADE"); face != "" {
		cfg.Camera.FaceCascade = face
	}
	if eye := os.Getenv("EYEREMOTE_EYE_CASCADE"); eye != "" {
		cfg.Camera.EyeCascade = eye
	}

	// Daemon configuration
	if pidFile := os.Getenv("EYEREMOTE_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}
	if logFile := os.Getenv("EYEREMOTE_LOG_FILE"); logFile != "" {
		cfg.Daemon.LogFile = logFile
	}

	if statusFile := os.Getenv("EYEREMOTE_STATUS_FILE"); statusFile != "" {
		cfg.Status.Path = statusFile
	}
}

func envInt(key string, dst *int, min int) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min {
		log.Printf("Warning: ignoring %s=%q", key, raw)
		return
	}
	*dst = n
}

// New creates a new Config from defaults, the settings file and the
// environment. A broken settings file is logged and leaves the defaults.
func New() *Config {
	cfg := Default()
	if file := os.Getenv("EYEREMOTE_CONFIG"); file != "" {
		cfg.File = file
	}
	if err := cfg.Load(); err != nil {
		log.Printf("Warning: failed to load config file %s: %v", cfg.File, err)
	}
	LoadFromEnv(cfg)
	return cfg
}

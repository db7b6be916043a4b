package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/eyeremote/eyeremote/internal/attention"
	"github.com/eyeremote/eyeremote/internal/controller"
	"github.com/eyeremote/eyeremote/internal/status"
	"github.com/eyeremote/eyeremote/internal/target"
)

// Config holds all application configuration
type Config struct {
	// Settings is the persisted key/value document
	Settings Settings

	// File is the path of the settings document
	File string

	// Database configuration
	Database DatabaseConfig

	// Tracker (poll loop) configuration
	Tracker TrackerConfig

	// Focus (target resolver) configuration
	Focus FocusConfig

	// Camera (presence oracle) configuration
	Camera CameraConfig

	// Daemon configuration
	Daemon DaemonConfig

	// Status snapshot configuration
	Status StatusConfig
}

// Settings are the user-facing options stored in the configuration file.
type Settings struct {
	TimeoutSeconds   int    `json:"timeout_seconds" yaml:"timeout_seconds"`
	MaxTargets       int    `json:"max_targets" yaml:"max_targets"`
	TargetApp        string `json:"target_app" yaml:"target_app"`
	DeviceIndex      int    `json:"device_index" yaml:"device_index"`
	PresentThreshold int    `json:"present_threshold" yaml:"present_threshold"`
	AbsentThreshold  int    `json:"absent_threshold" yaml:"absent_threshold"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string // Path to SQLite database file
}

// TrackerConfig holds poll loop timing
type TrackerConfig struct {
	PollInterval    time.Duration // Sleep between ticks
	MinPollInterval time.Duration // Minimum allowed poll interval
	MaxPollInterval time.Duration // Maximum allowed poll interval
	ErrorBackoff    time.Duration // Sleep after a failed tick
}

// FocusConfig holds window activation timing
type FocusConfig struct {
	RetryAttempts int           // Total activation attempts
	RetryDelay    time.Duration // Wait between attempts
	SettleDelay   time.Duration // Wait after a successful activation
}

// CameraConfig holds presence detection assets
type CameraConfig struct {
	FaceCascade string
	EyeCascade  string
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string // Path to PID file for daemon management
	LogFile string // Log destination of the background process
}

// StatusConfig holds the status snapshot location
type StatusConfig struct {
	Path string
}

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		TimeoutSeconds:   int(attention.DefaultTimeout / time.Second),
		MaxTargets:       1,
		TargetApp:        target.AnyName,
		DeviceIndex:      0,
		PresentThreshold: attention.DefaultPresentThreshold,
		AbsentThreshold:  attention.DefaultAbsentThreshold,
	}
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Settings: DefaultSettings(),
		File:     DefaultFile(),
		Database: DatabaseConfig{
			Path: "", // Empty means use default ~/.config/eyeremote/events.db
		},
		Tracker: TrackerConfig{
			PollInterval:    controller.DefaultPollInterval,
			MinPollInterval: 10 * time.Millisecond,
			MaxPollInterval: 5 * time.Second,
			ErrorBackoff:    controller.DefaultErrorBackoff,
		},
		Focus: FocusConfig{
			RetryAttempts: target.DefaultRetryPolicy().MaxAttempts,
			RetryDelay:    target.DefaultRetryPolicy().Delay,
			SettleDelay:   target.DefaultSettleDelay,
		},
		Camera: CameraConfig{
			FaceCascade: "/usr/share/opencv4/haarcascades/haarcascade_frontalface_default.xml",
			EyeCascade:  "/usr/share/opencv4/haarcascades/haarcascade_eye.xml",
		},
		Daemon: DaemonConfig{
			PIDFile: filepath.Join(os.TempDir(), fmt.Sprintf("eyeremote-%d.pid", os.Getuid())),
			LogFile: filepath.Join(os.TempDir(), "eyeremote.log"),
		},
		Status: StatusConfig{
			Path: status.DefaultPath(),
		},
	}
}

// DefaultFile returns ~/.config/eyeremote/config.json, or config.json in the
// working directory when there is no home directory.
func DefaultFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(home, ".config", "eyeremote", "config.json")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Settings.Validate(); err != nil {
		return err
	}

	// Validate tracker intervals
	if c.Tracker.PollInterval < c.Tracker.MinPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be less than minimum (%v)",
			c.Tracker.PollInterval, c.Tracker.MinPollInterval)
	}

	if c.Tracker.PollInterval > c.Tracker.MaxPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be greater than maximum (%v)",
			c.Tracker.PollInterval, c.Tracker.MaxPollInterval)
	}

	if c.Tracker.ErrorBackoff <= 0 {
		return fmt.Errorf("error backoff must be positive")
	}

	// Validate focus config
	if c.Focus.RetryAttempts < 1 {
		return fmt.Errorf("focus retry attempts must be at least 1, got %d", c.Focus.RetryAttempts)
	}

	if c.Focus.RetryDelay < 0 || c.Focus.SettleDelay < 0 {
		return fmt.Errorf("focus delays cannot be negative")
	}

	// Validate daemon config
	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	return nil
}

// Validate checks the persisted settings. A non-positive timeout is not an
// error: Timeout falls back to the default.
func (s Settings) Validate() error {
	if s.MaxTargets < 1 {
		return fmt.Errorf("max_targets must be at least 1, got %d", s.MaxTargets)
	}
	if s.DeviceIndex < 0 {
		return fmt.Errorf("device_index cannot be negative, got %d", s.DeviceIndex)
	}
	if s.PresentThreshold < 1 {
		return fmt.Errorf("present_threshold must be at least 1, got %d", s.PresentThreshold)
	}
	if s.AbsentThreshold < 1 {
		return fmt.Errorf("absent_threshold must be at least 1, got %d", s.AbsentThreshold)
	}
	return nil
}

// Timeout returns the attention timeout, falling back to the default for
// non-positive values.
func (s Settings) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return attention.DefaultTimeout
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Selector returns the configured target selector.
func (s Settings) Selector() target.Selector {
	return target.Parse(s.TargetApp)
}

// SetPollInterval sets the poll interval with validation
func (c *Config) SetPollInterval(interval time.Duration) error {
	if interval < c.Tracker.MinPollInterval {
		return fmt.Errorf("poll interval cannot be less than %v", c.Tracker.MinPollInterval)
	}
	if interval > c.Tracker.MaxPollInterval {
		return fmt.Errorf("poll interval cannot be greater than %v", c.Tracker.MaxPollInterval)
	}
	c.Tracker.PollInterval = interval
	return nil
}

// RetryPolicy returns the focus retry policy.
func (c *Config) RetryPolicy() target.RetryPolicy {
	return target.RetryPolicy{MaxAttempts: c.Focus.RetryAttempts, Delay: c.Focus.RetryDelay}
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  File: %s
  Settings:
    Timeout Seconds: %d
    Max Targets: %d
    Target App: %s
    Device Index: %d
    Present Threshold: %d
    Absent Threshold: %d
  Database:
    Path: %s
  Tracker:
    Poll Interval: %v
    Error Backoff: %v
  Focus:
    Retry Attempts: %d
    Retry Delay: %v
    Settle Delay: %v
  Camera:
    Face Cascade: %s
    Eye Cascade: %s
  Daemon:
    PID File: %s
    Log File: %s
  Status:
    Path: %s`,
		c.File,
		c.Settings.TimeoutSeconds,
		c.Settings.MaxTargets,
		c.Settings.TargetApp,
		c.Settings.DeviceIndex,
		c.Settings.PresentThreshold,
		c.Settings.AbsentThreshold,
		c.Database.Path,
		c.Tracker.PollInterval,
		c.Tracker.ErrorBackoff,
		c.Focus.RetryAttempts,
		c.Focus.RetryDelay,
		c.Focus.SettleDelay,
		c.Camera.FaceCascade,
		c.Camera.EyeCascade,
		c.Daemon.PIDFile,
		c.Daemon.LogFile,
		c.Status.Path,
	)
}

// ControllerOptions maps the configuration onto session options.
func (c *Config) ControllerOptions() controller.Options {
	return controller.Options{
		Timeout:          c.Settings.Timeout(),
		PresentThreshold: c.Settings.PresentThreshold,
		AbsentThreshold:  c.Settings.AbsentThreshold,
		DeviceIndex:      c.Settings.DeviceIndex,
		Target:           c.Settings.Selector(),
		PollInterval:     c.Tracker.PollInterval,
		ErrorBackoff:     c.Tracker.ErrorBackoff,
		Retry:            c.RetryPolicy(),
		SettleDelay:      c.Focus.SettleDelay,
	}
}

package config

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Keys lists the settings document keys in display order.
var Keys = []string{
	"timeout_seconds",
	"max_targets",
	"target_app",
	"device_index",
	"present_threshold",
	"absent_threshold",
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadFile reads a settings document on top of the defaults. A missing file
// yields the defaults. Unknown keys are ignored and a value that cannot be
// used keeps that key's default.
func LoadFile(path string) (Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, errors.Wrap(err, "failed to read config file")
	}

	doc := map[string]any{}
	if isYAML(path) {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return s, errors.Wrapf(err, "failed to parse config file %s", path)
	}

	for key, value := range doc {
		if err := s.apply(key, value); err != nil {
			log.Printf("Warning: config %s: %v, keeping default", key, err)
		}
	}
	return s, nil
}

// Load replaces c.Settings with the contents of c.File.
func (c *Config) Load() error {
	s, err := LoadFile(c.File)
	c.Settings = s
	return err
}

// Save writes c.Settings to c.File, creating its directory.
func (c *Config) Save() error {
	return writeSettings(c.File, c.Settings)
}

// Reset restores the default settings and saves them.
func (c *Config) Reset() error {
	c.Settings = DefaultSettings()
	return c.Save()
}

// Export writes the current settings to path. The format follows the
// extension.
func (c *Config) Export(path string) error {
	return writeSettings(path, c.Settings)
}

// Import loads settings from path, validates them and saves them as the
// current settings.
func (c *Config) Import(path string) error {
	if _, err := os.Stat(path); err != nil {
		return errors.Wrap(err, "failed to open import file")
	}
	s, err := LoadFile(path)
	if err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return errors.Wrap(err, "imported settings are invalid")
	}
	c.Settings = s
	return c.Save()
}

// Set changes one setting from its textual form. The result must validate.
func (c *Config) Set(key, value string) error {
	if !knownKey(key) {
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(Keys, ", "))
	}
	s := c.Settings
	var v any = value
	if key != "target_app" {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s expects an integer, got %q", key, value)
		}
		v = n
	}
	if err := s.apply(key, v); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	c.Settings = s
	return nil
}

// Map returns the settings as a key/value document.
func (s Settings) Map() map[string]any {
	return map[string]any{
		"timeout_seconds":   s.TimeoutSeconds,
		"max_targets":       s.MaxTargets,
		"target_app":        s.TargetApp,
		"device_index":      s.DeviceIndex,
		"present_threshold": s.PresentThreshold,
		"absent_threshold":  s.AbsentThreshold,
	}
}

func (s *Settings) apply(key string, value any) error {
	if key == "target_app" {
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected a string, got %T", value)
		}
		s.TargetApp = str
		return nil
	}

	var dst *int
	switch key {
	case "timeout_seconds":
		dst = &s.TimeoutSeconds
	case "max_targets":
		dst = &s.MaxTargets
	case "device_index":
		dst = &s.DeviceIndex
	case "present_threshold":
		dst = &s.PresentThreshold
	case "absent_threshold":
		dst = &s.AbsentThreshold
	default:
		return nil
	}

	n, err := toInt(value)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func knownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		if v > math.MaxInt32 {
			return 0, fmt.Errorf("value %d out of range", v)
		}
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("expected an integer, got %v", v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("expected an integer, got %q", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", value)
	}
}

func writeSettings(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return errors.Wrap(err, "failed to encode settings")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}
	return nil
}

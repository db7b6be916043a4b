// Package status shares a snapshot of the running detection session with
// other eyeremote processes through an atomically replaced JSON file.
package status

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/eyeremote/eyeremote/internal/controller"

	"github.com/pkg/errors"
)

// Snapshot is the on-disk form of controller.Status.
type Snapshot struct {
	PID           int       `json:"pid"`
	State         string    `json:"state"`
	SessionID     string    `json:"session_id,omitempty"`
	Target        string    `json:"target"`
	Backend       string    `json:"backend,omitempty"`
	Stable        bool      `json:"stable"`
	Paused        bool      `json:"paused"`
	LastPresentAt time.Time `json:"last_present_at,omitempty"`
	StartedAt     time.Time `json:"started_at,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// DefaultPath returns the per-user snapshot location.
func DefaultPath() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("eyeremote-%d.status.json", os.Getuid()))
}

// FromStatus converts a controller status.
func FromStatus(st controller.Status, backend string) *Snapshot {
	return &Snapshot{
		PID:           os.Getpid(),
		State:         st.State.String(),
		SessionID:     st.SessionID,
		Target:        st.Target,
		Backend:       backend,
		Stable:        st.Stable,
		Paused:        st.Paused,
		LastPresentAt: st.LastPresentAt,
		StartedAt:     st.StartedAt,
		LastError:     st.LastError,
		Timestamp:     st.UpdatedAt,
	}
}

// Write replaces the snapshot at path.
func Write(path string, snap *Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "failed to create status directory")
	}
	return atomicWriteJSON(path, snap)
}

// Read loads the snapshot at path.
func Read(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(err, "invalid status file")
	}
	return &snap, nil
}

// Remove deletes the snapshot; a missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove status file")
	}
	return nil
}

// Writer returns a status listener that writes every update to path.
func Writer(path, backend string, logf func(format string, args ...any)) func(controller.Status) {
	return func(st controller.Status) {
		if err := Write(path, FromStatus(st, backend)); err != nil && logf != nil {
			logf("Failed to write status file: %v", err)
		}
	}
}

func atomicWriteJSON(path string, data any) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "status-*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temp status file")
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	encoder := json.NewEncoder(tmpFile)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return errors.Wrap(err, "failed to encode status")
	}
	if err := tmpFile.Sync(); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	tmpFile = nil

	return os.Rename(tmpPath, path)
}

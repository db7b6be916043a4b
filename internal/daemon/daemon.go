package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotRunning is returned by Stop when no live daemon owns the PID file.
var ErrNotRunning = errors.New("daemon is not running or PID file is stale")

type Daemon struct {
	pidFile string
}

func New(pidFile string) *Daemon {
	return &Daemon{pidFile: pidFile}
}

func (d *Daemon) PIDFile() string {
	return d.pidFile
}

func (d *Daemon) WritePID() error {
	if err := os.MkdirAll(filepath.Dir(d.pidFile), 0755); err != nil {
		return errors.Wrap(err, "failed to create PID directory")
	}
	return os.WriteFile(d.pidFile, fmt.Appendf(nil, "%d\n", os.Getpid()), 0644)
}

// ReadPID returns 0 when there is no PID file.
func (d *Daemon) ReadPID() (int, error) {
	data, err := os.ReadFile(d.pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "failed to read PID file")
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, errors.Wrap(err, "invalid PID in file")
	}

	return pid, nil
}

// RemovePID deletes the PID file if it still names this process.
func (d *Daemon) RemovePID() error {
	pid, err := d.ReadPID()
	if err == nil && pid != 0 && pid != os.Getpid() {
		return nil
	}
	return d.removeFile()
}

func (d *Daemon) removeFile() error {
	if err := os.Remove(d.pidFile); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove PID file")
	}
	return nil
}

// IsRunning reports whether the PID file names a live process. A stale PID
// file is removed.
func (d *Daemon) IsRunning() (bool, int, error) {
	pid, err := d.ReadPID()
	if err != nil {
		return false, 0, err
	}

	if pid == 0 {
		return false, 0, nil
	}

	if !processAlive(pid) {
		_ = d.removeFile()
		return false, 0, nil
	}

	return true, pid, nil
}

// Stop asks the daemon to exit and removes its PID file. On Unix this is
// SIGTERM, which the daemon handles; Windows has no such signal, so the
// process is terminated.
func (d *Daemon) Stop() error {
	running, pid, err := d.IsRunning()
	if err != nil {
		return errors.Wrap(err, "error checking daemon status")
	}

	if !running {
		return ErrNotRunning
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return errors.Wrap(err, "failed to find process")
	}

	if err := terminate(process); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			_ = d.removeFile()
			return errors.New("daemon process already terminated")
		}
		return errors.Wrap(err, "failed to stop process")
	}

	return d.removeFile()
}

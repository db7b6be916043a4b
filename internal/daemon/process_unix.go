//go:build !windows

package daemon

import (
	"os"
	"syscall"

	"github.com/pkg/errors"
)

func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	// exists, owned by someone else
	return errors.Is(err, syscall.EPERM)
}

func terminate(process *os.Process) error {
	return process.Signal(syscall.SIGTERM)
}

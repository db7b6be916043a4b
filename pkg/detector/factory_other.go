//go:build !linux && !windows && !darwin

package detector

import (
	"runtime"

	"github.com/eyeremote/eyeremote/pkg/window"

	"github.com/pkg/errors"
)

func newPlatform() (window.Platform, error) {
	return nil, errors.Errorf("no window backend for %s", runtime.GOOS)
}

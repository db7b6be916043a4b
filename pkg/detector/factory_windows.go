//go:build windows

package detector

import (
	"github.com/eyeremote/eyeremote/pkg/integrations/win32"
	"github.com/eyeremote/eyeremote/pkg/window"
)

func newPlatform() (window.Platform, error) {
	return win32.NewPlatform(), nil
}

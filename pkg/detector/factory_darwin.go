//go:build darwin

package detector

import (
	"github.com/eyeremote/eyeremote/pkg/integrations/macos"
	"github.com/eyeremote/eyeremote/pkg/window"
)

func newPlatform() (window.Platform, error) {
	return macos.NewPlatform(), nil
}

//go:build linux

package detector

import (
	"github.com/eyeremote/eyeremote/pkg/integrations/hybrid"
	"github.com/eyeremote/eyeremote/pkg/window"
)

func newPlatform() (window.Platform, error) {
	return hybrid.NewPlatform(), nil
}

// Package detector selects the window.Platform for the running system.
package detector

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/eyeremote/eyeremote/pkg/window"
)

// New returns the platform backend for this OS.
func New() (window.Platform, error) {
	return newPlatform()
}

// DetectDisplayServer names the desktop session type.
func DetectDisplayServer() string {
	switch runtime.GOOS {
	case "windows":
		return "win32"
	case "darwin":
		return "darwin"
	}

	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}

// Describe renders a platform for diagnostics.
func Describe(p window.Platform) string {
	if s, ok := p.(interface{ GetStatus() string }); ok {
		return strings.TrimRight(s.GetStatus(), "\n")
	}
	return fmt.Sprintf("Window backend: %s (available: %v)", p.GetDisplayServer(), p.IsAvailable())
}

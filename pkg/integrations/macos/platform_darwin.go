//go:build darwin

package macos

import (
	"sort"
	"strings"

	"github.com/eyeremote/eyeremote/pkg/window"

	"github.com/pkg/errors"
	"github.com/progrium/darwinkit/macos/appkit"
)

// Platform implements window.Platform for macOS
type Platform struct {
	workspace appkit.Workspace
}

// NewPlatform creates a new macOS platform
func NewPlatform() *Platform {
	return &Platform{workspace: appkit.Workspace_SharedWorkspace()}
}

func (p *Platform) IsAvailable() bool {
	return p.workspace.Ptr() != nil
}

func (p *Platform) GetDisplayServer() string { return "darwin" }

func appName(app appkit.RunningApplication) string {
	if name := app.LocalizedName(); name != "" {
		return name
	}
	return app.BundleIdentifier()
}

// GetForegroundProcessName returns the frontmost application's name
func (p *Platform) GetForegroundProcessName() (string, error) {
	app := p.workspace.FrontmostApplication()
	if app.Ptr() == nil {
		return "", errors.New("no frontmost application")
	}
	name := appName(app)
	if name == "" {
		return "", errors.New("frontmost application has no name")
	}
	return name, nil
}

// ListProcesses returns running applications ordered by PID
func (p *Platform) ListProcesses() ([]window.ProcessInfo, error) {
	apps := p.workspace.RunningApplications()

	procs := make([]window.ProcessInfo, 0, len(apps))
	for _, app := range apps {
		if app.Ptr() == nil {
			continue
		}
		procs = append(procs, window.ProcessInfo{PID: int(app.ProcessIdentifier()), Name: appName(app)})
	}

	sort.Slice(procs, func(i, j int) bool { return procs[i].PID < procs[j].PID })
	return procs, nil
}

// ActivateWindow brings the first regular application whose name or bundle
// id contains processName to the front
func (p *Platform) ActivateWindow(processName string) (*window.FocusHandle, error) {
	needle := strings.ToLower(processName)

	for _, app := range p.workspace.RunningApplications() {
		if app.Ptr() == nil || app.ActivationPolicy() != appkit.ApplicationActivationPolicyRegular {
			continue
		}

		name := app.LocalizedName()
		bundleID := app.BundleIdentifier()
		if !strings.Contains(strings.ToLower(name), needle) && !strings.Contains(strings.ToLower(bundleID), needle) {
			continue
		}

		if !app.ActivateWithOptions(appkit.ApplicationActivateIgnoringOtherApps) {
			return nil, errors.Errorf("macOS refused to activate %s", name)
		}
		return &window.FocusHandle{
			PID:     int(app.ProcessIdentifier()),
			Title:   name,
			Backend: "darwin",
		}, nil
	}

	return nil, window.ErrNoWindow
}

// SendDirectToggle is not possible on macOS
func (p *Platform) SendDirectToggle(*window.FocusHandle) error {
	return window.ErrUnsupported
}

func (p *Platform) Close() error { return nil }

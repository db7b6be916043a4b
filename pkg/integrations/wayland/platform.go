// Package wayland implements window.Platform for Wayland compositors through
// their command line tools: swaymsg, hyprctl, gdbus and kdotool.
package wayland

import (
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/eyeremote/eyeremote/pkg/integrations/process"
	"github.com/eyeremote/eyeremote/pkg/window"

	"github.com/pkg/errors"
)

// compositors maps compositor process names to the backend flavour, in
// probing order.
var compositors = []struct {
	process string
	name    string
}{
	{"sway", "sway"},
	{"Hyprland", "hyprland"},
	{"gnome-shell", "gnome"},
	{"kwin_wayland", "kde"},
}

// Platform implements window.Platform for Wayland
type Platform struct {
	compositor string
	procs      *process.Table
	lookPath   func(string) (string, error)
}

// NewPlatform creates a new Wayland platform
func NewPlatform() *Platform {
	p := &Platform{procs: process.NewTable(), lookPath: exec.LookPath}
	p.compositor = detectCompositor(p.procs)
	return p
}

// detectCompositor attempts to detect the Wayland compositor, first from the
// session environment and then from the running processes
func detectCompositor(procs *process.Table) string {
	if os.Getenv("SWAYSOCK") != "" {
		return "sway"
	}
	if os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" {
		return "hyprland"
	}

	list, err := procs.List()
	if err == nil {
		for _, c := range compositors {
			for _, proc := range list {
				if proc.Name == c.process {
					return c.name
				}
			}
		}
	}

	desktop := strings.ToLower(os.Getenv("XDG_CURRENT_DESKTOP"))
	switch {
	case strings.Contains(desktop, "gnome") || strings.Contains(desktop, "ubuntu"):
		return "gnome"
	case strings.Contains(desktop, "kde"):
		return "kde"
	}
	return "unknown"
}

func (p *Platform) has(cmd string) bool {
	_, err := p.lookPath(cmd)
	return err == nil
}

// Compositor returns the detected compositor flavour
func (p *Platform) Compositor() string {
	return p.compositor
}

// IsAvailable checks if the compositor's tool is installed
func (p *Platform) IsAvailable() bool {
	switch p.compositor {
	case "sway":
		return p.has("swaymsg")
	case "hyprland":
		return p.has("hyprctl")
	case "gnome":
		return p.has("gdbus")
	case "kde":
		return p.has("kdotool")
	default:
		return false
	}
}

// GetDisplayServer returns "wayland"
func (p *Platform) GetDisplayServer() string {
	return "wayland"
}

// GetForegroundProcessName returns the process owning the focused window
func (p *Platform) GetForegroundProcessName() (string, error) {
	pid, fallback, err := p.focusedPID()
	if err != nil {
		return "", err
	}
	if name := p.procs.NameOf(pid); name != "" {
		return name, nil
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", errors.Errorf("process %d not found", pid)
}

// focusedPID returns the focused window's PID and, where the compositor
// reports one, its application id.
func (p *Platform) focusedPID() (int, string, error) {
	switch p.compositor {
	case "sway":
		nodes, err := swayTree()
		if err != nil {
			return 0, "", err
		}
		for _, n := range nodes {
			if n.Focused {
				return n.PID, n.AppID, nil
			}
		}
		return 0, "", errors.New("no focused sway container")

	case "hyprland":
		output, err := hyprctl("activewindow", "-j")
		if err != nil {
			return 0, "", err
		}
		c, err := parseHyprActive(output)
		if err != nil {
			return 0, "", err
		}
		return c.PID, c.Class, nil

	case "gnome":
		value, err := gnomeEval(gnomeFocusedPID)
		if err == nil {
			if pid, convErr := strconv.Atoi(value); convErr == nil && pid > 0 {
				return pid, "", nil
			}
		}
		// XWayland clients are still visible to xprop
		if p.has("xprop") && os.Getenv("DISPLAY") != "" {
			pid, xErr := xwaylandFocusedPID()
			if xErr == nil {
				return pid, "", nil
			}
			return 0, "", errors.Wrapf(xErr, "GNOME window detection failed (Shell.Eval: %v)", err)
		}
		return 0, "", errors.Wrap(err, "GNOME window detection failed and xprop is unavailable")

	case "kde":
		pid, err := kdotoolActivePID()
		return pid, "", err

	default:
		return 0, "", errors.Errorf("unsupported wayland compositor: %s", p.compositor)
	}
}

// ListProcesses returns running processes ordered by PID
func (p *Platform) ListProcesses() ([]window.ProcessInfo, error) {
	return p.procs.List()
}

func (p *Platform) matches(pid int, appID, needle string) bool {
	if strings.Contains(strings.ToLower(p.procs.NameOf(pid)), needle) {
		return true
	}
	return appID != "" && strings.Contains(strings.ToLower(appID), needle)
}

// ActivateWindow focuses the first titled window whose process name contains
// processName
func (p *Platform) ActivateWindow(processName string) (*window.FocusHandle, error) {
	needle := strings.ToLower(processName)

	switch p.compositor {
	case "sway":
		nodes, err := swayTree()
		if err != nil {
			return nil, err
		}
		for _, n := range nodes {
			if n.Name == "" || !p.matches(n.PID, n.AppID, needle) {
				continue
			}
			if err := swayFocus(n.ID); err != nil {
				return nil, err
			}
			return &window.FocusHandle{ID: uint64(n.ID), PID: n.PID, Title: n.Name, Backend: "sway"}, nil
		}
		return nil, window.ErrNoWindow

	case "hyprland":
		output, err := hyprctl("clients", "-j")
		if err != nil {
			return nil, err
		}
		clients, err := parseHyprClients(output)
		if err != nil {
			return nil, err
		}
		for _, c := range clients {
			if c.Title == "" || !c.Mapped || c.Hidden || !p.matches(c.PID, c.Class, needle) {
				continue
			}
			if _, err := hyprctl("dispatch", "focuswindow", "address:"+c.Address); err != nil {
				return nil, err
			}
			id, _ := strconv.ParseUint(strings.TrimPrefix(c.Address, "0x"), 16, 64)
			return &window.FocusHandle{ID: id, PID: c.PID, Title: c.Title, Backend: "hyprland"}, nil
		}
		return nil, window.ErrNoWindow

	case "gnome":
		value, err := gnomeEval(gnomeActivateScript(needle))
		if err != nil {
			return nil, err
		}
		if value == "" {
			return nil, window.ErrNoWindow
		}
		pidStr, title, _ := strings.Cut(value, "|")
		pid, _ := strconv.Atoi(pidStr)
		return &window.FocusHandle{PID: pid, Title: title, Backend: "gnome"}, nil

	case "kde":
		id, err := kdotoolActivate(needle)
		if err != nil {
			return nil, err
		}
		if id == "" {
			return nil, window.ErrNoWindow
		}
		return &window.FocusHandle{Title: id, Backend: "kde"}, nil

	default:
		return nil, errors.Wrapf(window.ErrUnsupported, "window activation on %s", p.compositor)
	}
}

// SendDirectToggle is not possible on Wayland
func (p *Platform) SendDirectToggle(*window.FocusHandle) error {
	return window.ErrUnsupported
}

// Close cleans up resources
func (p *Platform) Close() error {
	return nil
}

// Package x11 implements window.Platform for X11 sessions. It talks EWMH over
// a native X connection and falls back to xdotool and wmctrl when no
// connection can be opened.
package x11

import (
	"strconv"
	"strings"

	"github.com/eyeremote/eyeremote/pkg/integrations/process"
	"github.com/eyeremote/eyeremote/pkg/window"

	"github.com/pkg/errors"
)

// Platform implements window.Platform and window.KeySource for X11
type Platform struct {
	client *client // nil when the X server is unreachable
	keys   *XTestSender
	procs  *process.Table

	hasXdotool bool
	hasWmctrl  bool
}

// NewPlatform creates a new X11 platform
func NewPlatform() *Platform {
	p := &Platform{
		procs:      process.NewTable(),
		hasXdotool: commandExists("xdotool"),
		hasWmctrl:  commandExists("wmctrl"),
	}
	if c, err := newClient(); err == nil {
		p.client = c
		p.keys = &XTestSender{client: c}
	}
	return p
}

// IsAvailable checks if X11 is reachable natively or through its CLI tools
func (p *Platform) IsAvailable() bool {
	return p.client != nil || p.hasXdotool || p.hasWmctrl
}

// GetDisplayServer returns "x11"
func (p *Platform) GetDisplayServer() string {
	return "x11"
}

// GetForegroundProcessName returns the process owning the focused window
func (p *Platform) GetForegroundProcessName() (string, error) {
	if p.client != nil {
		w, err := p.client.activeWindow()
		if err != nil {
			return "", err
		}
		if name := p.procs.NameOf(p.client.pid(w)); name != "" {
			return name, nil
		}
		// sandboxed clients often lack _NET_WM_PID
		if class := p.client.class(w); class != "" {
			return class, nil
		}
		return "", errors.New("focused window has no owner information")
	}

	if !p.hasXdotool {
		return "", errors.New("no X11 connection and xdotool is not installed")
	}
	pid, err := activePIDXdotool()
	if err != nil {
		return "", err
	}
	name := p.procs.NameOf(pid)
	if name == "" {
		return "", errors.Errorf("process %d not found", pid)
	}
	return name, nil
}

// ListProcesses returns running processes ordered by PID
func (p *Platform) ListProcesses() ([]window.ProcessInfo, error) {
	return p.procs.List()
}

// ActivateWindow focuses the first titled client window whose process name
// contains processName
func (p *Platform) ActivateWindow(processName string) (*window.FocusHandle, error) {
	needle := strings.ToLower(processName)

	if p.client != nil {
		windows, err := p.client.clients()
		if err != nil {
			return nil, err
		}
		for _, w := range windows {
			title := p.client.name(w)
			if title == "" {
				continue
			}
			pid := p.client.pid(w)
			owner := p.procs.NameOf(pid)
			if owner == "" {
				owner = p.client.class(w)
			}
			if !strings.Contains(strings.ToLower(owner), needle) {
				continue
			}
			if err := p.client.activate(w); err != nil {
				return nil, err
			}
			return &window.FocusHandle{ID: uint64(w), PID: pid, Title: title, Backend: "x11"}, nil
		}
		return nil, window.ErrNoWindow
	}

	if !p.hasWmctrl {
		return nil, errors.New("no X11 connection and wmctrl is not installed")
	}
	windows, err := listWindowsWmctrl()
	if err != nil {
		return nil, err
	}
	for _, w := range windows {
		if w.title == "" || !strings.Contains(strings.ToLower(p.procs.NameOf(w.pid)), needle) {
			continue
		}
		if err := activateCLI(w.id, p.hasWmctrl); err != nil {
			return nil, err
		}
		id, _ := strconv.ParseUint(strings.TrimPrefix(w.id, "0x"), 16, 64)
		return &window.FocusHandle{ID: id, PID: w.pid, Title: w.title, Backend: "x11"}, nil
	}
	return nil, window.ErrNoWindow
}

// SendDirectToggle is not possible on X11: there is no per-window media
// command.
func (p *Platform) SendDirectToggle(*window.FocusHandle) error {
	return window.ErrUnsupported
}

// MediaKeySender returns the XTEST key sender, or nil without an X
// connection.
func (p *Platform) MediaKeySender() window.KeySender {
	if p.keys == nil {
		return nil
	}
	return p.keys
}

// Close cleans up resources
func (p *Platform) Close() error {
	if p.client != nil {
		p.client.close()
		p.client = nil
		p.keys = nil
	}
	return nil
}

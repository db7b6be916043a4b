// Package hybrid combines the Linux window backends. A Wayland session keeps
// an X11 backend behind its native one so XWayland clients can still be found.
package hybrid

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/eyeremote/eyeremote/pkg/integrations/wayland"
	"github.com/eyeremote/eyeremote/pkg/integrations/x11"
	"github.com/eyeremote/eyeremote/pkg/window"

	"github.com/pkg/errors"
)

// Platform tries its backends in order for every query.
type Platform struct {
	backends []window.Platform

	mu                   sync.Mutex
	lastSuccessfulMethod string
}

// New combines backends, most preferred first.
func New(backends ...window.Platform) *Platform {
	return &Platform{backends: backends}
}

// NewPlatform picks backends from the session environment.
func NewPlatform() *Platform {
	var backends []window.Platform

	if os.Getenv("WAYLAND_DISPLAY") != "" || os.Getenv("XDG_SESSION_TYPE") == "wayland" {
		wl := wayland.NewPlatform()
		if wl.IsAvailable() {
			backends = append(backends, wl)
		} else {
			log.Printf("Wayland compositor %s has no usable tooling", wl.Compositor())
		}
	}

	if os.Getenv("DISPLAY") != "" {
		xp := x11.NewPlatform()
		if xp.IsAvailable() {
			backends = append(backends, xp)
		} else {
			xp.Close()
		}
	}

	if len(backends) == 0 {
		log.Printf("No window backend available, target gating will fail open")
	}
	return New(backends...)
}

func (p *Platform) available() []window.Platform {
	out := make([]window.Platform, 0, len(p.backends))
	for _, b := range p.backends {
		if b.IsAvailable() {
			out = append(out, b)
		}
	}
	return out
}

func (p *Platform) succeeded(b window.Platform) {
	p.mu.Lock()
	p.lastSuccessfulMethod = b.GetDisplayServer()
	p.mu.Unlock()
}

// GetForegroundProcessName asks each backend in turn.
func (p *Platform) GetForegroundProcessName() (string, error) {
	var errs []string
	for _, b := range p.available() {
		name, err := b.GetForegroundProcessName()
		if err == nil {
			p.succeeded(b)
			return name, nil
		}
		errs = append(errs, fmt.Sprintf("%s: %v", b.GetDisplayServer(), err))
	}
	if len(errs) == 0 {
		return "", errors.New("no window backend available")
	}
	return "", errors.Errorf("all window backends failed: %s", strings.Join(errs, "; "))
}

// ListProcesses uses the first available backend.
func (p *Platform) ListProcesses() ([]window.ProcessInfo, error) {
	avail := p.available()
	if len(avail) == 0 {
		return nil, errors.New("no window backend available")
	}
	return avail[0].ListProcesses()
}

// ActivateWindow tries each backend. ErrNoWindow is returned only when every
// backend that answered found nothing.
func (p *Platform) ActivateWindow(processName string) (*window.FocusHandle, error) {
	var lastErr error
	notFound := false
	for _, b := range p.available() {
		handle, err := b.ActivateWindow(processName)
		if err == nil {
			p.succeeded(b)
			return handle, nil
		}
		if errors.Is(err, window.ErrNoWindow) {
			notFound = true
			continue
		}
		lastErr = err
	}
	if notFound {
		return nil, window.ErrNoWindow
	}
	if lastErr == nil {
		lastErr = errors.New("no window backend available")
	}
	return nil, lastErr
}

// SendDirectToggle is unsupported on Linux.
func (p *Platform) SendDirectToggle(*window.FocusHandle) error {
	return window.ErrUnsupported
}

// MediaKeySender returns the first native key sender among the backends.
func (p *Platform) MediaKeySender() window.KeySender {
	for _, b := range p.backends {
		if src, ok := b.(window.KeySource); ok {
			if keys := src.MediaKeySender(); keys != nil {
				return keys
			}
		}
	}
	return nil
}

// GetDisplayServer names the preferred available backend.
func (p *Platform) GetDisplayServer() string {
	if avail := p.available(); len(avail) > 0 {
		return avail[0].GetDisplayServer()
	}
	return "none"
}

func (p *Platform) IsAvailable() bool {
	return len(p.available()) > 0
}

// BackendInfo describes one combined backend.
type BackendInfo struct {
	Name      string
	Available bool
}

// Backends lists the combined backends in preference order.
func (p *Platform) Backends() []BackendInfo {
	out := make([]BackendInfo, 0, len(p.backends))
	for _, b := range p.backends {
		out = append(out, BackendInfo{Name: b.GetDisplayServer(), Available: b.IsAvailable()})
	}
	return out
}

// GetStatus renders the backend list for diagnostics.
func (p *Platform) GetStatus() string {
	var sb strings.Builder
	sb.WriteString("Window backends:\n")
	if len(p.backends) == 0 {
		sb.WriteString("  none\n")
	}
	for _, b := range p.Backends() {
		fmt.Fprintf(&sb, "  %s (available: %v)\n", b.Name, b.Available)
	}

	p.mu.Lock()
	last := p.lastSuccessfulMethod
	p.mu.Unlock()
	if last != "" {
		fmt.Fprintf(&sb, "  Last successful backend: %s\n", last)
	}
	return sb.String()
}

// Close closes every backend.
func (p *Platform) Close() error {
	for _, b := range p.backends {
		if err := b.Close(); err != nil {
			log.Printf("Error closing %s backend: %v", b.GetDisplayServer(), err)
		}
	}
	return nil
}

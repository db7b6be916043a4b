// Package windowtest provides an in-memory window.Platform for tests.
package windowtest

import (
	"strings"
	"sync"

	"github.com/eyeremote/eyeremote/pkg/window"
)

// Platform is a scriptable window.Platform. Zero value is usable: no
// processes, no foreground window, direct toggles unsupported.
type Platform struct {
	mu sync.Mutex

	Foreground    string
	ForegroundErr error
	Processes     []window.ProcessInfo
	ListErr       error

	// ActivateResults is consumed one entry per ActivateWindow call; when it
	// runs out, activation returns window.ErrNoWindow.
	ActivateResults []ActivateResult
	DirectErr       error // nil means direct sends succeed
	Direct          bool  // when false SendDirectToggle returns window.ErrUnsupported
	Keys            window.KeySender

	ForegroundCalls int
	ListCalls       int
	ActivateCalls   []string
	DirectSends     int
}

// ActivateResult scripts one ActivateWindow call.
type ActivateResult struct {
	Handle *window.FocusHandle
	Err    error
}

func (p *Platform) GetForegroundProcessName() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ForegroundCalls++
	return p.Foreground, p.ForegroundErr
}

func (p *Platform) ListProcesses() ([]window.ProcessInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ListCalls++
	if p.ListErr != nil {
		return nil, p.ListErr
	}
	out := make([]window.ProcessInfo, len(p.Processes))
	copy(out, p.Processes)
	return out, nil
}

func (p *Platform) ActivateWindow(processName string) (*window.FocusHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ActivateCalls = append(p.ActivateCalls, processName)
	if len(p.ActivateResults) == 0 {
		return nil, window.ErrNoWindow
	}
	r := p.ActivateResults[0]
	p.ActivateResults = p.ActivateResults[1:]
	return r.Handle, r.Err
}

func (p *Platform) SendDirectToggle(handle *window.FocusHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.Direct {
		return window.ErrUnsupported
	}
	if p.DirectErr != nil {
		return p.DirectErr
	}
	p.DirectSends++
	return nil
}

func (p *Platform) GetDisplayServer() string { return "fake" }
func (p *Platform) IsAvailable() bool        { return true }
func (p *Platform) Close() error             { return nil }

// MediaKeySender implements window.KeySource when Keys is set.
func (p *Platform) MediaKeySender() window.KeySender {
	return p.Keys
}

// Calls returns how many times ActivateWindow was called.
func (p *Platform) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.ActivateCalls)
}

// Touched reports whether any OS query was made.
func (p *Platform) Touched() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ForegroundCalls+p.ListCalls+len(p.ActivateCalls)+p.DirectSends > 0
}

// Handle builds a focus handle for a process name.
func Handle(name string, pid int) *window.FocusHandle {
	return &window.FocusHandle{ID: uint64(pid) * 10, PID: pid, Title: strings.ToUpper(name[:1]) + name[1:], Backend: "fake"}
}

// Keys is a scriptable window.KeySender.
type Keys struct {
	mu    sync.Mutex
	Label string
	Err   error
	Taps  int
}

func (k *Keys) Name() string {
	if k.Label == "" {
		return "fake-keys"
	}
	return k.Label
}

func (k *Keys) TapPlayPause() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.Err != nil {
		return k.Err
	}
	k.Taps++
	return nil
}

// Count returns the number of successful taps.
func (k *Keys) Count() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.Taps
}

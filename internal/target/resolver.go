package target

import (
	"fmt"
	"time"

	"github.com/eyeremote/eyeremote/internal/clock"
	"github.com/eyeremote/eyeremote/internal/events"
	"github.com/eyeremote/eyeremote/pkg/window"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound means no window of the target could be brought forward.
	ErrNotFound = errors.New("target window not found")

	// ErrNotRunning means no process of the target is running. It wraps
	// ErrNotFound.
	ErrNotRunning = errors.Wrap(ErrNotFound, "target application not running")
)

const DefaultSettleDelay = 200 * time.Millisecond

// Resolver finds the target process and focuses its window before a send.
type Resolver struct {
	platform window.Platform
	clock    clock.Clock
	events   events.Recorder
	retry    RetryPolicy
	settle   time.Duration
}

// ResolverOption customises a Resolver.
type ResolverOption func(*Resolver)

func WithRetryPolicy(p RetryPolicy) ResolverOption {
	return func(r *Resolver) { r.retry = p }
}

func WithSettleDelay(d time.Duration) ResolverOption {
	return func(r *Resolver) { r.settle = d }
}

func WithClock(c clock.Clock) ResolverOption {
	return func(r *Resolver) { r.clock = c }
}

func WithRecorder(rec events.Recorder) ResolverOption {
	return func(r *Resolver) {
		if rec != nil {
			r.events = rec
		}
	}
}

func NewResolver(platform window.Platform, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		platform: platform,
		clock:    clock.Real(),
		events:   events.Discard,
		retry:    DefaultRetryPolicy(),
		settle:   DefaultSettleDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve focuses the target's window. Any returns a nil handle without
// consulting the platform. A target with no running process returns
// ErrNotRunning without retrying; a running target whose window cannot be
// activated within the retry policy returns ErrNotFound. Platform errors are
// recorded and count as failed attempts.
func (r *Resolver) Resolve(sel Selector) (*window.FocusHandle, error) {
	if sel.IsAny() {
		return nil, nil
	}
	if r.platform == nil {
		return nil, errors.Wrap(ErrNotFound, "no platform backend")
	}

	proc, err := r.findProcess(sel)
	if err != nil {
		return nil, err
	}

	var handle *window.FocusHandle
	attempts, ok := r.retry.Do(r.clock, func(attempt int) bool {
		h, err := r.platform.ActivateWindow(sel.Name())
		if err != nil {
			if !errors.Is(err, window.ErrNoWindow) {
				r.record(events.ResolveError, sel, fmt.Sprintf("attempt %d: %v", attempt, err))
			}
			return false
		}
		if h == nil {
			return false
		}
		handle = h
		return true
	}, func(next int) {
		r.record(events.ResolveRetry, sel, fmt.Sprintf("no visible window for %s (pid %d), retrying in %v (attempt %d)",
			proc.Name, proc.PID, r.retry.Delay, next))
	})

	if !ok {
		r.record(events.ResolveNotFound, sel, fmt.Sprintf("no window after %d attempt(s)", attempts))
		return nil, errors.Wrapf(ErrNotFound, "%s has no activatable window", sel.Name())
	}

	if r.settle > 0 {
		r.clock.Sleep(r.settle)
	}

	r.record(events.ResolveFocused, sel, fmt.Sprintf("focused %q (pid %d)", handle.Title, handle.PID))
	return handle, nil
}

func (r *Resolver) findProcess(sel Selector) (window.ProcessInfo, error) {
	procs, err := r.platform.ListProcesses()
	if err != nil {
		r.record(events.ResolveError, sel, err.Error())
		return window.ProcessInfo{}, errors.Wrap(ErrNotFound, "process enumeration failed")
	}

	for _, p := range procs {
		if sel.Matches(p.Name) {
			return p, nil
		}
	}

	r.record(events.ResolveNotFound, sel, "application not running")
	return window.ProcessInfo{}, ErrNotRunning
}

func (r *Resolver) record(kind events.Kind, sel Selector, msg string) {
	r.events.Record(events.Event{
		Time:      r.clock.Now(),
		Kind:      kind,
		Component: events.ComponentResolver,
		Message:   msg,
		Target:    sel.Name(),
	})
}

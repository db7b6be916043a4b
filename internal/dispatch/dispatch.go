// Package dispatch sends one logical play/pause toggle through an ordered
// chain of send methods.
package dispatch

import (
	"fmt"
	"strings"

	"github.com/eyeremote/eyeremote/internal/events"
	"github.com/eyeremote/eyeremote/pkg/window"

	"github.com/pkg/errors"
)

var (
	// ErrNotApplicable is returned by a method that cannot run in the current
	// situation. The chain skips it without counting a failure.
	ErrNotApplicable = errors.New("send method not applicable")

	// ErrExhausted is returned when every applicable method failed.
	ErrExhausted = errors.New("all send methods failed")
)

// Method is one way of delivering the toggle.
type Method interface {
	Name() string
	Send(handle *window.FocusHandle) error
}

// Warner shows a user-visible warning.
type Warner interface {
	Warn(title, message string) error
}

// Attempt records how one method fared.
type Attempt struct {
	Method  string
	Err     error
	Skipped bool
}

// Result is the uniform outcome of Dispatch.
type Result struct {
	Sent     bool
	Method   string // the method that succeeded
	Attempts []Attempt
	Err      error // ErrExhausted when nothing was sent
}

// Dispatcher walks its methods in order until one succeeds.
// It is not safe for concurrent use.
type Dispatcher struct {
	methods []Method
	warner  Warner
	events  events.Recorder
}

// New creates a dispatcher. Nil warner or recorder are allowed.
func New(methods []Method, warner Warner, rec events.Recorder) *Dispatcher {
	if rec == nil {
		rec = events.Discard
	}
	return &Dispatcher{methods: methods, warner: warner, events: rec}
}

// Methods returns the names of the configured methods, in order.
func (d *Dispatcher) Methods() []string {
	names := make([]string, 0, len(d.methods))
	for _, m := range d.methods {
		names = append(names, m.Name())
	}
	return names
}

// Dispatch sends exactly one toggle when any method succeeds. When all fail,
// a single warning is raised and Result.Err is ErrExhausted.
func (d *Dispatcher) Dispatch(handle *window.FocusHandle) Result {
	var res Result
	failed := 0

	for i, m := range d.methods {
		err := m.Send(handle)
		if errors.Is(err, ErrNotApplicable) {
			res.Attempts = append(res.Attempts, Attempt{Method: m.Name(), Skipped: true})
			continue
		}

		d.record(events.DispatchAttempt, m.Name(), "")
		if err == nil {
			res.Attempts = append(res.Attempts, Attempt{Method: m.Name()})
			res.Sent = true
			res.Method = m.Name()
			d.record(events.DispatchSent, m.Name(), "")
			return res
		}

		failed++
		res.Attempts = append(res.Attempts, Attempt{Method: m.Name(), Err: err})
		d.record(events.DispatchFailed, m.Name(), err.Error())
		if next := d.nextName(i); next != "" {
			d.record(events.DispatchFallback, next, fmt.Sprintf("%s failed, falling back", m.Name()))
		}
	}

	res.Err = ErrExhausted
	msg := d.summary(res.Attempts, failed)
	d.record(events.DispatchExhausted, "", msg)
	if d.warner != nil {
		if err := d.warner.Warn("eyeremote", "Could not send the media play/pause key. "+msg); err != nil {
			d.record(events.DispatchFailed, "notify", err.Error())
		}
	}
	return res
}

func (d *Dispatcher) nextName(i int) string {
	if i+1 < len(d.methods) {
		return d.methods[i+1].Name()
	}
	return ""
}

func (d *Dispatcher) summary(attempts []Attempt, failed int) string {
	if failed == 0 {
		return "no send method available"
	}
	parts := make([]string, 0, len(attempts))
	for _, a := range attempts {
		if a.Skipped {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v", a.Method, a.Err))
	}
	return strings.Join(parts, "; ")
}

func (d *Dispatcher) record(kind events.Kind, method, msg string) {
	d.events.Record(events.Event{
		Kind:      kind,
		Component: events.ComponentDispatch,
		Method:    method,
		Message:   msg,
	})
}

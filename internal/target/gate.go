package target

import (
	"github.com/eyeremote/eyeremote/internal/events"
	"github.com/eyeremote/eyeremote/pkg/window"
)

// Gate checks that the target application owns the foreground window.
type Gate struct {
	platform window.Platform
	events   events.Recorder
}

// NewGate creates a gate. A nil recorder discards events.
func NewGate(platform window.Platform, rec events.Recorder) *Gate {
	if rec == nil {
		rec = events.Discard
	}
	return &Gate{platform: platform, events: rec}
}

// IsTargetActive returns true for Any without touching the platform. For a
// named target it returns true when the foreground process name contains the
// target. Query failures fail open.
func (g *Gate) IsTargetActive(sel Selector) bool {
	if sel.IsAny() {
		return true
	}

	if g.platform == nil {
		g.events.Record(events.Event{
			Kind:      events.GateQueryFailed,
			Component: events.ComponentGate,
			Message:   "no platform backend",
			Target:    sel.Name(),
		})
		return true
	}

	name, err := g.platform.GetForegroundProcessName()
	if err != nil {
		g.events.Record(events.Event{
			Kind:      events.GateQueryFailed,
			Component: events.ComponentGate,
			Message:   err.Error(),
			Target:    sel.Name(),
		})
		return true
	}

	return sel.Matches(name)
}

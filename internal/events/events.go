// Package events carries the observable events of a detection session to the
// process log and to the event store.
package events

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/eyeremote/eyeremote/internal/database"
	"github.com/eyeremote/eyeremote/internal/models"
)

// Kind identifies what happened.
type Kind string

const (
	SessionStart      Kind = "session_start"
	SessionStop       Kind = "session_stop"
	SessionInitFailed Kind = "session_init_failed"
	PollFailed        Kind = "poll_failed"
	TickError         Kind = "tick_error"
	StateChange       Kind = "state_change"
	DecisionPause     Kind = "decision_pause"
	DecisionResume    Kind = "decision_resume"
	GateBlocked       Kind = "gate_blocked"
	GateQueryFailed   Kind = "gate_query_failed"
	ResolveNotFound   Kind = "resolve_not_found"
	ResolveRetry      Kind = "resolve_retry"
	ResolveError      Kind = "resolve_error"
	ResolveFocused    Kind = "resolve_focused"
	DispatchAttempt   Kind = "dispatch_attempt"
	DispatchFailed    Kind = "dispatch_failed"
	DispatchFallback  Kind = "dispatch_fallback"
	DispatchSent      Kind = "dispatch_sent"
	DispatchExhausted Kind = "dispatch_exhausted"
)

// Component names the emitting part of the controller.
const (
	ComponentController = "controller"
	ComponentAttention  = "attention"
	ComponentGate       = "gate"
	ComponentResolver   = "resolver"
	ComponentDispatch   = "dispatch"
	ComponentPresence   = "presence"
)

// Event is a single observable occurrence.
type Event struct {
	Time      time.Time
	SessionID string
	Kind      Kind
	Component string
	Message   string
	Target    string
	Method    string
	Elapsed   time.Duration
}

// Recorder receives events. Implementations must be safe for concurrent use.
type Recorder interface {
	Record(ev Event)
}

// Discard drops every event.
var Discard Recorder = discard{}

type discard struct{}

func (discard) Record(Event) {}

// Logger writes one log line per event.
type Logger struct {
	Logger *log.Logger // nil uses the standard logger
}

func (l Logger) Record(ev Event) {
	line := Format(ev)
	if l.Logger != nil {
		l.Logger.Print(line)
		return
	}
	log.Print(line)
}

// Format renders an event as "[component] kind: message key=value ...".
func Format(ev Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", ev.Component, ev.Kind)
	if ev.Message != "" {
		fmt.Fprintf(&b, ": %s", ev.Message)
	}
	if ev.Target != "" {
		fmt.Fprintf(&b, " target=%s", ev.Target)
	}
	if ev.Method != "" {
		fmt.Fprintf(&b, " method=%s", ev.Method)
	}
	if ev.Elapsed > 0 {
		fmt.Fprintf(&b, " elapsed=%s", ev.Elapsed.Round(time.Millisecond))
	}
	return b.String()
}

// Store persists events through the repository. Write failures are logged,
// never returned: a broken database must not stop the poll loop.
type Store struct {
	repo *database.Repository
}

func NewStore(repo *database.Repository) *Store {
	return &Store{repo: repo}
}

func (s *Store) Record(ev Event) {
	row := ToModel(ev)
	if err := s.repo.CreateEvent(row); err != nil {
		log.Printf("Failed to store event %s: %v", ev.Kind, err)
	}
}

// ToModel converts an event to its persisted form.
func ToModel(ev Event) *models.Event {
	return &models.Event{
		SessionID: ev.SessionID,
		Timestamp: ev.Time,
		Kind:      string(ev.Kind),
		Component: ev.Component,
		Message:   ev.Message,
		Target:    ev.Target,
		Method:    ev.Method,
		ElapsedMs: ev.Elapsed.Milliseconds(),
	}
}

// Multi fans an event out to every recorder in order.
type Multi []Recorder

func (m Multi) Record(ev Event) {
	for _, r := range m {
		r.Record(ev)
	}
}

// Memory keeps events in memory.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func (m *Memory) Record(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

// Events returns a copy of everything recorded so far.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Kinds returns the kinds recorded so far, in order.
func (m *Memory) Kinds() []Kind {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Kind, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, ev.Kind)
	}
	return out
}

// Count returns how many events of kind k were recorded.
func (m *Memory) Count(k Kind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, ev := range m.events {
		if ev.Kind == k {
			n++
		}
	}
	return n
}

// Reset forgets every recorded event.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}

// Summary returns "kind=count" pairs sorted by kind, handy in logs.
func (m *Memory) Summary() string {
	m.mu.Lock()
	counts := map[Kind]int{}
	for _, ev := range m.events {
		counts[ev.Kind]++
	}
	m.mu.Unlock()

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[Kind(k)]))
	}
	return strings.Join(parts, " ")
}

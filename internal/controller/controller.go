// Package controller runs the detection session: it polls the presence
// oracle, debounces readings, and drives pause/resume sends through the gate,
// the target resolver and the dispatcher.
package controller

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eyeremote/eyeremote/internal/attention"
	"github.com/eyeremote/eyeremote/internal/clock"
	"github.com/eyeremote/eyeremote/internal/dispatch"
	"github.com/eyeremote/eyeremote/internal/events"
	"github.com/eyeremote/eyeremote/internal/models"
	"github.com/eyeremote/eyeremote/internal/presence"
	"github.com/eyeremote/eyeremote/internal/target"
	"github.com/eyeremote/eyeremote/pkg/window"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrAlreadyRunning = errors.New("detection is already running")
	ErrNotRunning     = errors.New("detection is not running")
)

const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultErrorBackoff = time.Second
)

// Options holds the per-session tunables.
type Options struct {
	Timeout          time.Duration
	PresentThreshold int
	AbsentThreshold  int
	DeviceIndex      int
	Target           target.Selector
	PollInterval     time.Duration
	ErrorBackoff     time.Duration
	Retry            target.RetryPolicy
	SettleDelay      time.Duration
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		Timeout:          attention.DefaultTimeout,
		PresentThreshold: attention.DefaultPresentThreshold,
		AbsentThreshold:  attention.DefaultAbsentThreshold,
		Target:           target.Any(),
		PollInterval:     DefaultPollInterval,
		ErrorBackoff:     DefaultErrorBackoff,
		Retry:            target.DefaultRetryPolicy(),
		SettleDelay:      target.DefaultSettleDelay,
	}
}

// ErrorStore persists errors that interrupted a tick or a session start.
type ErrorStore interface {
	CreateErrorLog(errorLog *models.ErrorLog) error
}

// Deps are the collaborators of a controller. Only Oracle is required.
type Deps struct {
	Oracle   presence.Oracle
	Platform window.Platform
	Keys     window.KeySender // primary global key sender
	Warner   dispatch.Warner
	Recorder events.Recorder
	Errors   ErrorStore
	Clock    clock.Clock
}

// session is everything that lives between one Start and the matching Stop.
type session struct {
	id        string
	startedAt time.Time
	filter    *attention.Filter
	timer     *attention.Timer
	source    presence.Source
	stopped   bool

	pending     attention.Decision // decision held back by the gate
	gateBlocked bool

	// view is copied from filter and timer by the loop goroutine under the
	// controller mutex, for readers on other goroutines
	view struct {
		stable        bool
		paused        bool
		lastPresentAt time.Time
	}
}

// Controller owns at most one session at a time.
type Controller struct {
	mu       sync.Mutex
	opts     Options
	deps     Deps
	clock    clock.Clock
	events   *stampRecorder
	gate     *target.Gate
	resolver *target.Resolver
	sender   *dispatch.Dispatcher

	state     State
	session   *session
	lastErr   error
	listeners []func(Status)
	done      chan struct{}
}

// New builds a controller. Missing optional deps fall back to no-ops and the
// wall clock.
func New(opts Options, deps Deps) *Controller {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.Recorder == nil {
		deps.Recorder = events.Discard
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.ErrorBackoff <= 0 {
		opts.ErrorBackoff = DefaultErrorBackoff
	}

	rec := &stampRecorder{next: deps.Recorder, clock: deps.Clock}
	c := &Controller{
		opts:   opts,
		deps:   deps,
		clock:  deps.Clock,
		events: rec,
		gate:   target.NewGate(deps.Platform, rec),
		resolver: target.NewResolver(deps.Platform,
			target.WithClock(deps.Clock),
			target.WithRecorder(rec),
			target.WithRetryPolicy(opts.Retry),
			target.WithSettleDelay(opts.SettleDelay),
		),
		sender: dispatch.New(dispatch.Chain(deps.Platform, deps.Keys), deps.Warner, rec),
	}
	return c
}

// Start begins a session and returns immediately. Oracle initialisation and
// the poll loop run on their own goroutine.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Idle {
		return ErrAlreadyRunning
	}

	s := &session{
		id:     uuid.NewString(),
		filter: attention.NewFilter(c.opts.PresentThreshold, c.opts.AbsentThreshold),
		timer:  attention.NewTimer(c.opts.Timeout),
	}
	c.session = s
	c.state = Starting
	c.lastErr = nil
	c.done = make(chan struct{})
	c.events.setSession(s.id)

	log.Printf("Starting detection (device %d, target %s, timeout %v)", c.opts.DeviceIndex, c.opts.Target, s.timer.Timeout())
	c.publishLocked()

	go c.run(s, c.done)
	return nil
}

// Stop asks the running session to end. The loop notices at the top of its
// next tick; use Wait to block until the oracle is released.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Idle || c.session == nil {
		return ErrNotRunning
	}
	c.session.stopped = true
	return nil
}

// Wait blocks until the current session, if any, has ended.
func (c *Controller) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the error that ended the last session start, if any.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// OnStatus registers a listener called on every lifecycle, stable-state or
// playback change. Listeners run on the goroutine that made the change and
// must not call back into the controller.
func (c *Controller) OnStatus(fn func(Status)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Status returns the current snapshot.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// Methods lists the dispatch chain in order.
func (c *Controller) Methods() []string {
	return c.sender.Methods()
}

// SendToggle resolves the target and sends one toggle, outside the poll
// loop. In test mode a target that is not running is reported to the user.
func (c *Controller) SendToggle(testMode bool) dispatch.Result {
	return c.sendToggle(c.opts.Target, testMode)
}

func (c *Controller) run(s *session, done chan struct{}) {
	defer close(done)

	source, err := c.deps.Oracle.Open(c.opts.DeviceIndex)

	c.mu.Lock()
	if err != nil {
		c.lastErr = err
		c.state = Idle
		c.session = nil
		c.publishLocked()
		c.mu.Unlock()

		c.events.Record(events.Event{Kind: events.SessionInitFailed, Component: events.ComponentPresence, Message: err.Error()})
		c.storeError(s.id, errors.Wrap(err, "failed to start detection"))
		if c.deps.Warner != nil {
			_ = c.deps.Warner.Warn("eyeremote", fmt.Sprintf("Failed to start detection: %v", err))
		}
		return
	}
	if s.stopped {
		c.state = Idle
		c.session = nil
		c.publishLocked()
		c.mu.Unlock()

		if cerr := source.Close(); cerr != nil {
			log.Printf("Failed to release presence source: %v", cerr)
		}
		c.events.Record(events.Event{Kind: events.SessionStop, Component: events.ComponentController, Message: "stopped during initialization"})
		return
	}
	s.source = source
	s.startedAt = c.clock.Now()
	c.state = Running
	c.publishLocked()
	c.mu.Unlock()

	c.events.Record(events.Event{Kind: events.SessionStart, Component: events.ComponentController, Target: c.opts.Target.Name()})
	c.loop(s)

	if err := s.source.Close(); err != nil {
		log.Printf("Failed to release presence source: %v", err)
	}

	c.mu.Lock()
	c.state = Idle
	c.session = nil
	c.publishLocked()
	c.mu.Unlock()

	c.events.Record(events.Event{Kind: events.SessionStop, Component: events.ComponentController})
}

func (c *Controller) loop(s *session) {
	for {
		c.mu.Lock()
		stopped := s.stopped
		c.mu.Unlock()
		if stopped {
			return
		}

		if err := c.tick(s); err != nil {
			c.events.Record(events.Event{Kind: events.TickError, Component: events.ComponentController, Message: err.Error()})
			c.storeError(s.id, err)
			c.clock.Sleep(c.opts.ErrorBackoff)
			continue
		}
		c.clock.Sleep(c.opts.PollInterval)
	}
}

// tick runs one poll/decide/act cycle. Panics are turned into errors.
func (c *Controller) tick(s *session) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic in detection tick: %v", r)
		}
	}()

	raw, perr := s.source.Poll()
	if perr != nil {
		c.events.Record(events.Event{Kind: events.PollFailed, Component: events.ComponentPresence, Message: perr.Error()})
		return nil
	}

	now := c.clock.Now()
	away := s.timer.SinceLastPresent(now)
	stable, changed := s.filter.Step(raw)
	if changed {
		c.events.Record(events.Event{
			Kind:      events.StateChange,
			Component: events.ComponentAttention,
			Message:   fmt.Sprintf("stable=%v", stable),
			Elapsed:   away,
		})
	}

	decision := s.timer.Observe(stable, now)
	if decision == attention.NoAction {
		s.pending = attention.NoAction
		s.gateBlocked = false
		if changed {
			c.publish(s)
		}
		return nil
	}

	if !c.gate.IsTargetActive(c.opts.Target) {
		if !s.gateBlocked || s.pending != decision {
			c.events.Record(events.Event{
				Kind:      events.GateBlocked,
				Component: events.ComponentGate,
				Message:   fmt.Sprintf("%s held: target is not in the foreground", decision),
				Target:    c.opts.Target.Name(),
			})
		}
		s.gateBlocked = true
		s.pending = decision
		if changed {
			c.publish(s)
		}
		return nil
	}
	s.gateBlocked = false
	s.pending = attention.NoAction

	kind, msg := events.DecisionResume, fmt.Sprintf("attention regained after %s", away.Round(time.Millisecond))
	if decision == attention.Pause {
		kind, msg = events.DecisionPause, fmt.Sprintf("no attention for %s", away.Round(time.Millisecond))
	}
	c.events.Record(events.Event{Kind: kind, Component: events.ComponentAttention, Message: msg, Elapsed: away, Target: c.opts.Target.Name()})

	s.timer.Commit(decision)
	c.publish(s)

	c.sendToggle(c.opts.Target, false)
	return nil
}

func (c *Controller) sendToggle(sel target.Selector, testMode bool) dispatch.Result {
	handle, err := c.resolver.Resolve(sel)
	if err != nil {
		if testMode && c.deps.Warner != nil {
			msg := fmt.Sprintf("Could not focus %s: %v", sel, err)
			if errors.Is(err, target.ErrNotRunning) {
				msg = fmt.Sprintf("Target application %q is not running.", sel.Name())
			}
			_ = c.deps.Warner.Warn("eyeremote", msg)
		}
		return dispatch.Result{Err: err}
	}
	return c.sender.Dispatch(handle)
}

func (c *Controller) storeError(sessionID string, err error) {
	log.Printf("Detection error: %v", err)
	if c.deps.Errors == nil {
		return
	}

	errorLog := &models.ErrorLog{
		SessionID: sessionID,
		Timestamp: c.clock.Now(),
		ErrorMsg:  err.Error(),
	}
	if dbErr := c.deps.Errors.CreateErrorLog(errorLog); dbErr != nil {
		log.Printf("Failed to store error in database: %v (original error: %v)", dbErr, err)
	}
}

// publish refreshes the session view and notifies listeners. Only the loop
// goroutine may call it.
func (c *Controller) publish(s *session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s.view.stable = s.filter.Stable()
	s.view.paused = s.timer.Paused()
	if t, ok := s.timer.LastPresentAt(); ok {
		s.view.lastPresentAt = t
	}
	c.publishLocked()
}

func (c *Controller) publishLocked() {
	if len(c.listeners) == 0 {
		return
	}
	st := c.statusLocked()
	for _, fn := range c.listeners {
		fn(st)
	}
}

func (c *Controller) statusLocked() Status {
	st := Status{
		State:     c.state,
		Target:    c.opts.Target.String(),
		UpdatedAt: c.clock.Now(),
	}
	if c.lastErr != nil {
		st.LastError = c.lastErr.Error()
	}
	if s := c.session; s != nil {
		st.SessionID = s.id
		st.StartedAt = s.startedAt
		st.Stable = s.view.stable
		st.Paused = s.view.paused
		st.LastPresentAt = s.view.lastPresentAt
	}
	return st
}

// stampRecorder fills in time and session on events from the controller and
// its collaborators.
type stampRecorder struct {
	next      events.Recorder
	clock     clock.Clock
	sessionID atomic.Value // string
}

func (r *stampRecorder) setSession(id string) {
	r.sessionID.Store(id)
}

func (r *stampRecorder) Record(ev events.Event) {
	if ev.Time.IsZero() {
		ev.Time = r.clock.Now()
	}
	if ev.SessionID == "" {
		if id, ok := r.sessionID.Load().(string); ok {
			ev.SessionID = id
		}
	}
	r.next.Record(ev)
}

package attention

import "time"

// DefaultTimeout is used whenever the configured timeout is not positive.
const DefaultTimeout = 3 * time.Second

// Decision is the outcome of one timer evaluation.
type Decision int

const (
	NoAction Decision = iota
	Resume
	Pause
)

func (d Decision) String() string {
	switch d {
	case Resume:
		return "resume"
	case Pause:
		return "pause"
	default:
		return "none"
	}
}

// Timer tracks the last confirmed presence and the paused flag.
//
// Evaluation is split in two: Observe computes a decision from the stable
// state, Commit applies it to the paused flag once the action has actually
// been let through. A decision that is never committed is recomputed on the
// next Observe.
type Timer struct {
	timeout       time.Duration
	paused        bool
	lastPresentAt time.Time
	seen          bool
}

// NewTimer creates a timer. A non-positive timeout selects DefaultTimeout.
func NewTimer(timeout time.Duration) *Timer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Timer{timeout: timeout}
}

// Observe records stable at now and returns the pending decision.
func (t *Timer) Observe(stable bool, now time.Time) Decision {
	if stable {
		t.lastPresentAt = now
		t.seen = true
		if t.paused {
			return Resume
		}
		return NoAction
	}

	if !t.paused && t.seen && now.Sub(t.lastPresentAt) > t.timeout {
		return Pause
	}
	return NoAction
}

// Commit applies a decision returned by Observe.
func (t *Timer) Commit(d Decision) {
	switch d {
	case Pause:
		t.paused = true
	case Resume:
		t.paused = false
	}
}

// Decide is Observe followed by Commit.
func (t *Timer) Decide(stable bool, now time.Time) Decision {
	d := t.Observe(stable, now)
	t.Commit(d)
	return d
}

func (t *Timer) Paused() bool {
	return t.paused
}

func (t *Timer) Timeout() time.Duration {
	return t.timeout
}

// LastPresentAt returns the last confirmed presence, or false when no
// presence has been seen yet.
func (t *Timer) LastPresentAt() (time.Time, bool) {
	return t.lastPresentAt, t.seen
}

// SinceLastPresent returns how long ago presence was last confirmed, or 0
// when it never was.
func (t *Timer) SinceLastPresent(now time.Time) time.Duration {
	if !t.seen {
		return 0
	}
	return now.Sub(t.lastPresentAt)
}

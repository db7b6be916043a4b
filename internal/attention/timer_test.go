package attention

import (
	"testing"
	"time"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) time.Time { return t0.Add(d) }

func TestTimer_TimeoutBoundary(t *testing.T) {
	timer := NewTimer(3 * time.Second)

	// stable every 100ms from t=0 up to t=1s, then absent
	for ms := 0; ms < 1000; ms += 100 {
		if d := timer.Decide(true, at(time.Duration(ms)*time.Millisecond)); d != NoAction {
			t.Fatalf("t=%dms: got %v, want none (not paused)", ms, d)
		}
	}

	steps := []struct {
		at   time.Duration
		want Decision
	}{
		{1 * time.Second, NoAction},
		{2 * time.Second, NoAction},
		{3800 * time.Millisecond, NoAction},
		{4100 * time.Millisecond, Pause},
		{5 * time.Second, NoAction}, // already paused
	}
	for _, s := range steps {
		if d := timer.Decide(false, at(s.at)); d != s.want {
			t.Errorf("t=%v: got %v, want %v", s.at, d, s.want)
		}
	}
	if !timer.Paused() {
		t.Error("timer should be paused")
	}
}

func TestTimer_DropAtOneSecond(t *testing.T) {
	timer := NewTimer(3 * time.Second)
	timer.Decide(true, at(0))
	timer.Decide(true, at(1*time.Second))

	if d := timer.Decide(false, at(3900*time.Millisecond)); d != NoAction {
		t.Errorf("t=3.9s: got %v, want none", d)
	}
	if d := timer.Decide(false, at(4100*time.Millisecond)); d != Pause {
		t.Errorf("t=4.1s: got %v, want pause", d)
	}
}

func TestTimer_NoPauseBeforeFirstPresence(t *testing.T) {
	timer := NewTimer(time.Second)
	for _, d := range []time.Duration{0, time.Minute, time.Hour, 24 * time.Hour} {
		if got := timer.Decide(false, at(d)); got != NoAction {
			t.Fatalf("t=%v: got %v before any presence", d, got)
		}
	}
	if _, ok := timer.LastPresentAt(); ok {
		t.Error("LastPresentAt should be unset")
	}
}

func TestTimer_ResumeIsTimeIndependent(t *testing.T) {
	timer := NewTimer(3 * time.Second)
	timer.Decide(true, at(0))
	if d := timer.Decide(false, at(10*time.Second)); d != Pause {
		t.Fatalf("expected pause, got %v", d)
	}

	// right after the pause
	if d := timer.Decide(true, at(10*time.Second+time.Millisecond)); d != Resume {
		t.Fatalf("expected immediate resume, got %v", d)
	}
	if timer.Paused() {
		t.Error("timer should not be paused after resume")
	}
}

func TestTimer_UncommittedDecisionRepeats(t *testing.T) {
	timer := NewTimer(3 * time.Second)
	timer.Decide(true, at(0))

	for _, d := range []time.Duration{4 * time.Second, 5 * time.Second, 6 * time.Second} {
		if got := timer.Observe(false, at(d)); got != Pause {
			t.Fatalf("t=%v: got %v, want pause", d, got)
		}
	}
	if timer.Paused() {
		t.Fatal("Observe must not change the paused flag")
	}

	// presence returns before the pause was ever sent: nothing to resume
	if got := timer.Observe(true, at(7*time.Second)); got != NoAction {
		t.Errorf("got %v, want none", got)
	}
}

func TestTimer_DefaultTimeout(t *testing.T) {
	for _, in := range []time.Duration{0, -time.Second} {
		if got := NewTimer(in).Timeout(); got != DefaultTimeout {
			t.Errorf("NewTimer(%v).Timeout() = %v, want %v", in, got, DefaultTimeout)
		}
	}
}

func TestTimer_SinceLastPresent(t *testing.T) {
	timer := NewTimer(0)
	if got := timer.SinceLastPresent(at(time.Hour)); got != 0 {
		t.Errorf("got %v before presence, want 0", got)
	}
	timer.Decide(true, at(time.Second))
	if got := timer.SinceLastPresent(at(4 * time.Second)); got != 3*time.Second {
		t.Errorf("got %v, want 3s", got)
	}
}

func TestDecision_String(t *testing.T) {
	if Pause.String() != "pause" || Resume.String() != "resume" || NoAction.String() != "none" {
		t.Error("unexpected decision names")
	}
}

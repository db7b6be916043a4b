package target

import (
	"testing"
	"time"

	"github.com/eyeremote/eyeremote/internal/clock"
	"github.com/eyeremote/eyeremote/internal/events"
	"github.com/eyeremote/eyeremote/pkg/window"
	"github.com/eyeremote/eyeremote/pkg/window/windowtest"

	"github.com/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		wantAny bool
		name    string
	}{
		{"", true, ""},
		{"Any", true, ""},
		{"ANY", true, ""},
		{"  any ", true, ""},
		{"vlc", false, "vlc"},
		{" Spotify ", false, "Spotify"},
	}
	for _, tt := range tests {
		sel := Parse(tt.in)
		if sel.IsAny() != tt.wantAny || sel.Name() != tt.name {
			t.Errorf("Parse(%q) = {any:%v name:%q}", tt.in, sel.IsAny(), sel.Name())
		}
	}
}

func TestSelector_Matches(t *testing.T) {
	sel := Named("VLC")
	for _, name := range []string{"vlc", "VLC media player", "org.videolan.vlc"} {
		if !sel.Matches(name) {
			t.Errorf("%q should match", name)
		}
	}
	if sel.Matches("firefox") {
		t.Error("firefox should not match")
	}
	if !Any().Matches("anything") {
		t.Error("Any should match everything")
	}
}

func TestGate(t *testing.T) {
	tests := []struct {
		name       string
		sel        Selector
		foreground string
		err        error
		want       bool
		wantFailed int
	}{
		{"any", Any(), "", nil, true, 0},
		{"match case-insensitive", Named("spotify"), "Spotify", nil, true, 0},
		{"substring", Named("fire"), "firefox-esr", nil, true, 0},
		{"other app", Named("vlc"), "firefox", nil, false, 0},
		{"query fails open", Named("vlc"), "", errors.New("xdotool failed"), true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &windowtest.Platform{Foreground: tt.foreground, ForegroundErr: tt.err}
			mem := &events.Memory{}
			g := NewGate(p, mem)

			if got := g.IsTargetActive(tt.sel); got != tt.want {
				t.Errorf("IsTargetActive() = %v, want %v", got, tt.want)
			}
			if got := mem.Count(events.GateQueryFailed); got != tt.wantFailed {
				t.Errorf("gate_query_failed events = %d, want %d", got, tt.wantFailed)
			}
			if tt.sel.IsAny() && p.Touched() {
				t.Error("Any must not query the platform")
			}
		})
	}
}

func TestRetryPolicy_Do(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	p := RetryPolicy{MaxAttempts: 3, Delay: 250 * time.Millisecond}

	calls := 0
	var retries []int
	attempts, ok := p.Do(clk, func(int) bool {
		calls++
		return calls == 3
	}, func(next int) { retries = append(retries, next) })

	if !ok || attempts != 3 {
		t.Fatalf("Do() = %d, %v; want 3, true", attempts, ok)
	}
	if len(retries) != 2 || retries[0] != 2 || retries[1] != 3 {
		t.Errorf("retries = %v, want [2 3]", retries)
	}
	if got := clk.Sleeps(); len(got) != 2 {
		t.Errorf("sleeps = %v, want two", got)
	}

	attempts, ok = RetryPolicy{}.Do(clk, func(int) bool { return false }, nil)
	if ok || attempts != 1 {
		t.Errorf("zero policy: Do() = %d, %v; want 1, false", attempts, ok)
	}
}

func newResolver(p window.Platform, clk clock.Clock, mem *events.Memory) *Resolver {
	return NewResolver(p, WithClock(clk), WithRecorder(mem))
}

func TestResolve_AnyNeverTouchesPlatform(t *testing.T) {
	p := &windowtest.Platform{}
	h, err := newResolver(p, clock.NewFake(time.Unix(0, 0)), &events.Memory{}).Resolve(Any())
	if h != nil || err != nil {
		t.Fatalf("Resolve(Any) = %v, %v", h, err)
	}
	if p.Touched() {
		t.Error("Any must not consult process or window APIs")
	}
}

func TestResolve_NotRunningIsNotRetried(t *testing.T) {
	p := &windowtest.Platform{Processes: []window.ProcessInfo{{PID: 1, Name: "systemd"}, {PID: 900, Name: "firefox"}}}
	clk := clock.NewFake(time.Unix(0, 0))
	mem := &events.Memory{}

	_, err := newResolver(p, clk, mem).Resolve(Named("vlc"))
	if !errors.Is(err, ErrNotRunning) || !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotRunning wrapping ErrNotFound", err)
	}
	if p.Calls() != 0 {
		t.Errorf("ActivateWindow called %d times, want 0", p.Calls())
	}
	if len(clk.Sleeps()) != 0 {
		t.Errorf("unexpected sleeps %v", clk.Sleeps())
	}
	if mem.Count(events.ResolveNotFound) != 1 {
		t.Errorf("events = %v", mem.Kinds())
	}
}

func TestResolve_FirstAttemptSettles(t *testing.T) {
	p := &windowtest.Platform{
		Processes:       []window.ProcessInfo{{PID: 42, Name: "vlc"}},
		ActivateResults: []windowtest.ActivateResult{{Handle: windowtest.Handle("vlc", 42)}},
	}
	clk := clock.NewFake(time.Unix(0, 0))
	mem := &events.Memory{}

	h, err := newResolver(p, clk, mem).Resolve(Named("VLC"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if h.PID != 42 {
		t.Errorf("handle PID = %d", h.PID)
	}
	sleeps := clk.Sleeps()
	if len(sleeps) != 1 || sleeps[0] != DefaultSettleDelay {
		t.Errorf("sleeps = %v, want [settle]", sleeps)
	}
	if mem.Count(events.ResolveFocused) != 1 {
		t.Errorf("events = %v", mem.Kinds())
	}
}

func TestResolve_RetriesOnceThenSucceeds(t *testing.T) {
	p := &windowtest.Platform{
		Processes: []window.ProcessInfo{{PID: 42, Name: "spotify"}},
		ActivateResults: []windowtest.ActivateResult{
			{Err: window.ErrNoWindow},
			{Handle: windowtest.Handle("spotify", 42)},
		},
	}
	clk := clock.NewFake(time.Unix(0, 0))
	mem := &events.Memory{}

	if _, err := newResolver(p, clk, mem).Resolve(Named("spotify")); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	sleeps := clk.Sleeps()
	if len(sleeps) != 2 || sleeps[0] != 500*time.Millisecond || sleeps[1] != 200*time.Millisecond {
		t.Errorf("sleeps = %v, want [500ms 200ms]", sleeps)
	}
	if p.Calls() != 2 {
		t.Errorf("ActivateWindow calls = %d, want 2", p.Calls())
	}
	if mem.Count(events.ResolveRetry) != 1 {
		t.Errorf("events = %v", mem.Kinds())
	}
}

func TestResolve_GivesUpAfterOneRetry(t *testing.T) {
	p := &windowtest.Platform{
		Processes: []window.ProcessInfo{{PID: 42, Name: "spotify"}},
		ActivateResults: []windowtest.ActivateResult{
			{Err: window.ErrNoWindow},
			{Err: errors.New("SetForegroundWindow denied")},
			{Handle: windowtest.Handle("spotify", 42)}, // never reached
		},
	}
	clk := clock.NewFake(time.Unix(0, 0))
	mem := &events.Memory{}

	_, err := newResolver(p, clk, mem).Resolve(Named("spotify"))
	if !errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotRunning) {
		t.Fatalf("err = %v, want ErrNotFound only", err)
	}
	if p.Calls() != 2 {
		t.Errorf("ActivateWindow calls = %d, want 2", p.Calls())
	}
	if got := clk.Sleeps(); len(got) != 1 || got[0] != 500*time.Millisecond {
		t.Errorf("sleeps = %v, want only the retry delay", got)
	}
	if mem.Count(events.ResolveError) != 1 || mem.Count(events.ResolveNotFound) != 1 {
		t.Errorf("events = %v", mem.Kinds())
	}
}

func TestResolve_ListFailureIsNotFatal(t *testing.T) {
	p := &windowtest.Platform{ListErr: errors.New("permission denied")}
	mem := &events.Memory{}

	_, err := newResolver(p, clock.NewFake(time.Unix(0, 0)), mem).Resolve(Named("vlc"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if mem.Count(events.ResolveError) != 1 {
		t.Errorf("events = %v", mem.Kinds())
	}
}

func TestResolve_CustomPolicy(t *testing.T) {
	p := &windowtest.Platform{Processes: []window.ProcessInfo{{PID: 7, Name: "mpv"}}}
	clk := clock.NewFake(time.Unix(0, 0))

	r := NewResolver(p, WithClock(clk), WithRetryPolicy(RetryPolicy{MaxAttempts: 4, Delay: time.Second}), WithSettleDelay(0))
	if _, err := r.Resolve(Named("mpv")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if p.Calls() != 4 {
		t.Errorf("calls = %d, want 4", p.Calls())
	}
	if len(clk.Sleeps()) != 3 {
		t.Errorf("sleeps = %v, want 3", clk.Sleeps())
	}
}

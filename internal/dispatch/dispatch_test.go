package dispatch

import (
	"testing"

	"github.com/eyeremote/eyeremote/internal/events"
	"github.com/eyeremote/eyeremote/pkg/window"
	"github.com/eyeremote/eyeremote/pkg/window/windowtest"

	"github.com/pkg/errors"
)

type recordingWarner struct {
	warnings []string
}

func (w *recordingWarner) Warn(title, message string) error {
	w.warnings = append(w.warnings, message)
	return nil
}

func TestDispatch_Chain(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name        string
		direct      bool
		directErr   error
		handle      *window.FocusHandle
		primaryErr  error
		nativeErr   error
		wantMethod  string
		wantSent    bool
		wantDirect  int
		wantPrimary int
		wantNative  int
		wantWarn    int
	}{
		{
			name:        "no handle skips direct",
			direct:      true,
			wantMethod:  "primary",
			wantSent:    true,
			wantPrimary: 1,
		},
		{
			name:       "direct with handle",
			direct:     true,
			handle:     windowtest.Handle("vlc", 1),
			wantMethod: "direct",
			wantSent:   true,
			wantDirect: 1,
		},
		{
			name:        "unsupported direct is skipped",
			direct:      false,
			handle:      windowtest.Handle("vlc", 1),
			wantMethod:  "primary",
			wantSent:    true,
			wantPrimary: 1,
		},
		{
			name:        "direct failure falls through",
			direct:      true,
			directErr:   boom,
			handle:      windowtest.Handle("vlc", 1),
			wantMethod:  "primary",
			wantSent:    true,
			wantPrimary: 1,
		},
		{
			name:       "primary failure uses native",
			primaryErr: boom,
			wantMethod: "native",
			wantSent:   true,
			wantNative: 1,
		},
		{
			name:       "everything fails warns once",
			primaryErr: boom,
			nativeErr:  boom,
			wantWarn:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			native := &windowtest.Keys{Label: "native", Err: tt.nativeErr}
			p := &windowtest.Platform{Direct: tt.direct, DirectErr: tt.directErr, Keys: native}
			primary := &windowtest.Keys{Label: "primary", Err: tt.primaryErr}
			warner := &recordingWarner{}
			mem := &events.Memory{}

			d := New(Chain(p, primary), warner, mem)
			res := d.Dispatch(tt.handle)

			if res.Sent != tt.wantSent || res.Method != tt.wantMethod {
				t.Errorf("Dispatch() = sent:%v method:%q, want sent:%v method:%q", res.Sent, res.Method, tt.wantSent, tt.wantMethod)
			}
			if p.DirectSends != tt.wantDirect || primary.Count() != tt.wantPrimary || native.Count() != tt.wantNative {
				t.Errorf("sends direct/primary/native = %d/%d/%d, want %d/%d/%d",
					p.DirectSends, primary.Count(), native.Count(), tt.wantDirect, tt.wantPrimary, tt.wantNative)
			}
			total := p.DirectSends + primary.Count() + native.Count()
			if tt.wantSent && total != 1 {
				t.Errorf("expected exactly one send, got %d", total)
			}
			if len(warner.warnings) != tt.wantWarn {
				t.Errorf("warnings = %d, want %d", len(warner.warnings), tt.wantWarn)
			}
			if !tt.wantSent && !errors.Is(res.Err, ErrExhausted) {
				t.Errorf("Err = %v, want ErrExhausted", res.Err)
			}
			t.Logf("events: %s", mem.Summary())
		})
	}
}

func TestDispatch_EventsOnFallback(t *testing.T) {
	primary := &windowtest.Keys{Label: "primary", Err: errors.New("no display")}
	secondary := &windowtest.Keys{Label: "secondary"}
	mem := &events.Memory{}

	d := New([]Method{Key{Sender: primary}, Key{Sender: secondary}}, nil, mem)
	res := d.Dispatch(nil)
	if !res.Sent {
		t.Fatal("expected a send")
	}

	want := []events.Kind{
		events.DispatchAttempt, events.DispatchFailed, events.DispatchFallback,
		events.DispatchAttempt, events.DispatchSent,
	}
	got := mem.Kinds()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestDispatch_NoMethods(t *testing.T) {
	warner := &recordingWarner{}
	res := New(nil, warner, nil).Dispatch(nil)
	if res.Sent || !errors.Is(res.Err, ErrExhausted) {
		t.Fatalf("Dispatch() = %+v", res)
	}
	if len(warner.warnings) != 1 {
		t.Errorf("warnings = %d, want 1", len(warner.warnings))
	}
}

func TestChain_Order(t *testing.T) {
	p := &windowtest.Platform{Keys: &windowtest.Keys{Label: "xtest"}}
	d := New(Chain(p, &windowtest.Keys{Label: "robotgo"}), nil, nil)

	got := d.Methods()
	want := []string{"direct", "robotgo", "xtest"}
	if len(got) != len(want) {
		t.Fatalf("Methods() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Methods()[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	// platform without its own key sender
	if got := New(Chain(&windowtest.Platform{}, nil), nil, nil).Methods(); len(got) != 1 {
		t.Errorf("Methods() = %v, want only direct", got)
	}
}

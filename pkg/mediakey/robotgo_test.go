package mediakey

import (
	"testing"

	"github.com/pkg/errors"
)

func TestRobotGo_TapPlayPause(t *testing.T) {
	var pressed []string
	r := &RobotGo{keyTap: func(key string, args ...interface{}) error {
		pressed = append(pressed, key)
		return nil
	}}

	if err := r.TapPlayPause(); err != nil {
		t.Fatalf("TapPlayPause() error = %v", err)
	}
	if len(pressed) != 1 || pressed[0] != PlayPauseKey {
		t.Errorf("pressed = %v, want [%s]", pressed, PlayPauseKey)
	}
}

func TestRobotGo_WrapsError(t *testing.T) {
	cause := errors.New("no display")
	r := &RobotGo{keyTap: func(string, ...interface{}) error { return cause }}

	err := r.TapPlayPause()
	if errors.Cause(err) != cause {
		t.Errorf("TapPlayPause() error = %v, want cause %v", err, cause)
	}
	if r.Name() != "robotgo" {
		t.Errorf("Name() = %q", r.Name())
	}
}

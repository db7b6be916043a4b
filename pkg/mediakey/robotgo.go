// Package mediakey sends the global media play/pause key.
package mediakey

import (
	"github.com/go-vgo/robotgo"
	"github.com/pkg/errors"
)

// PlayPauseKey is robotgo's name for the media play/pause key.
const PlayPauseKey = "audio_play"

// RobotGo taps the key through github.com/go-vgo/robotgo, which works on
// X11, Windows and macOS.
type RobotGo struct {
	keyTap func(key string, args ...interface{}) error
}

func NewRobotGo() *RobotGo {
	return &RobotGo{keyTap: robotgo.KeyTap}
}

func (r *RobotGo) Name() string { return "robotgo" }

func (r *RobotGo) TapPlayPause() error {
	if err := r.keyTap(PlayPauseKey); err != nil {
		return errors.Wrap(err, "robotgo key tap failed")
	}
	return nil
}

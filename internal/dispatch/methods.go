package dispatch

import (
	"github.com/eyeremote/eyeremote/pkg/window"

	"github.com/pkg/errors"
)

// Direct posts the toggle straight to the focused window. It only applies
// when there is a handle and the platform can address windows directly.
type Direct struct {
	Platform window.Platform
}

func (Direct) Name() string { return "direct" }

func (d Direct) Send(handle *window.FocusHandle) error {
	if handle == nil || d.Platform == nil {
		return ErrNotApplicable
	}
	err := d.Platform.SendDirectToggle(handle)
	if errors.Is(err, window.ErrUnsupported) {
		return ErrNotApplicable
	}
	return err
}

// Key taps the global media play/pause key through a KeySender.
type Key struct {
	Sender window.KeySender
}

func (k Key) Name() string {
	if k.Sender == nil {
		return "key"
	}
	return k.Sender.Name()
}

func (k Key) Send(*window.FocusHandle) error {
	if k.Sender == nil {
		return ErrNotApplicable
	}
	return k.Sender.TapPlayPause()
}

// Chain builds the standard order: direct window message, the primary key
// sender, then the platform's own key sender when it has one.
func Chain(platform window.Platform, primary window.KeySender) []Method {
	methods := []Method{Direct{Platform: platform}}
	if primary != nil {
		methods = append(methods, Key{Sender: primary})
	}
	if src, ok := platform.(window.KeySource); ok {
		if native := src.MediaKeySender(); native != nil {
			methods = append(methods, Key{Sender: native})
		}
	}
	return methods
}

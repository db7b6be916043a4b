package x11

import (
	"sync"

	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgb/xtest"
	"github.com/pkg/errors"
)

// XTestSender injects the XF86AudioPlay key through the XTEST extension.
type XTestSender struct {
	client *client

	once    sync.Once
	initErr error
	code    xproto.Keycode
}

func (s *XTestSender) Name() string { return "xtest" }

func (s *XTestSender) init() {
	if err := xtest.Init(s.client.conn); err != nil {
		s.initErr = errors.Wrap(err, "XTEST extension not available")
		return
	}
	s.code, s.initErr = s.client.keycode(keysymAudioPlay)
}

// TapPlayPause presses and releases the media play key.
func (s *XTestSender) TapPlayPause() error {
	s.once.Do(s.init)
	if s.initErr != nil {
		return s.initErr
	}

	for _, typ := range []byte{xproto.KeyPress, xproto.KeyRelease} {
		err := xtest.FakeInputChecked(s.client.conn, typ, byte(s.code), 0, s.client.root, 0, 0, 0).Check()
		if err != nil {
			return errors.Wrap(err, "failed to fake key input")
		}
	}
	return nil
}

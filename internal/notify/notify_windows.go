//go:build windows

package notify

import (
	"syscall"

	"github.com/lxn/win"
	"github.com/pkg/errors"
)

// platformShow opens a message box without blocking the poll loop.
func platformShow(title, message string) error {
	text, err := syscall.UTF16PtrFromString(message)
	if err != nil {
		return errors.Wrap(err, "invalid message text")
	}
	caption, err := syscall.UTF16PtrFromString(title)
	if err != nil {
		return errors.Wrap(err, "invalid message title")
	}
	go win.MessageBox(0, text, caption, win.MB_OK|win.MB_ICONWARNING|win.MB_TOPMOST)
	return nil
}

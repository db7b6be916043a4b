package window

import "github.com/pkg/errors"

var (
	// ErrNoWindow is returned by ActivateWindow when the target process has no
	// visible top-level window with a title.
	ErrNoWindow = errors.New("no visible window for target process")

	// ErrUnsupported is returned when a backend cannot perform an operation at
	// all (for example per-window media commands outside Windows).
	ErrUnsupported = errors.New("operation not supported by this backend")
)

// ProcessInfo is one entry of the running process table.
type ProcessInfo struct {
	PID  int
	Name string
}

// FocusHandle is an opaque reference to the last window the resolver brought
// to the foreground. It is only valid for the send that immediately follows.
type FocusHandle struct {
	ID      uint64
	PID     int
	Title   string
	Backend string
}

// Platform is the per-OS capability used by the activity gate, the target
// resolver and the dispatcher. Implementations live in pkg/integrations.
type Platform interface {
	// GetForegroundProcessName returns the name of the process owning the
	// current foreground window
	GetForegroundProcessName() (string, error)

	// ListProcesses returns running processes ordered by PID
	ListProcesses() ([]ProcessInfo, error)

	// ActivateWindow finds the first visible, titled top-level window whose
	// owning process name contains processName (case-insensitive) and brings
	// it to the foreground. Returns ErrNoWindow when nothing matches.
	ActivateWindow(processName string) (*FocusHandle, error)

	// SendDirectToggle posts a play/pause command straight to the window,
	// without requiring input focus. Returns ErrUnsupported where the OS has
	// no such mechanism.
	SendDirectToggle(handle *FocusHandle) error

	// GetDisplayServer returns the backend name
	GetDisplayServer() string

	// IsAvailable checks if this backend can run on the current system
	IsAvailable() bool

	// Close cleans up any resources used by the backend
	Close() error
}

// KeySender sends a synthetic, system-wide media play/pause key.
type KeySender interface {
	Name() string
	TapPlayPause() error
}

// KeySource is implemented by backends that carry their own native key
// injection path (XTest on X11, keybd_event on Windows).
type KeySource interface {
	MediaKeySender() KeySender
}

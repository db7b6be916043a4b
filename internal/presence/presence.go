// Package presence defines the oracle that reports, once per poll, whether
// the user is looking at the screen.
package presence

import "github.com/pkg/errors"

var (
	// ErrInit wraps failures that prevent a session from starting.
	ErrInit = errors.New("presence oracle initialization failed")

	// ErrPoll wraps transient per-frame failures.
	ErrPoll = errors.New("presence poll failed")
)

// Oracle opens a presence source on a capture device.
type Oracle interface {
	Open(deviceIndex int) (Source, error)
}

// Source yields one raw presence reading per Poll.
type Source interface {
	Poll() (bool, error)
	Close() error
}

// OracleFunc adapts a function to Oracle.
type OracleFunc func(deviceIndex int) (Source, error)

func (f OracleFunc) Open(deviceIndex int) (Source, error) {
	return f(deviceIndex)
}

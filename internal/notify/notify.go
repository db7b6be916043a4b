// Package notify shows user-visible warnings as desktop notifications.
package notify

import (
	"log"
	"sync"
)

// Notifier raises desktop notifications and always logs the warning.
type Notifier struct {
	mu   sync.Mutex
	show func(title, message string) error
	sent int
}

// New returns a notifier for the current OS.
func New() *Notifier {
	return &Notifier{show: platformShow}
}

// Warn logs the warning and shows it on the desktop. The error reports only
// the desktop part; the log line is always written.
func (n *Notifier) Warn(title, message string) error {
	n.mu.Lock()
	n.sent++
	n.mu.Unlock()

	log.Printf("Warning: %s: %s", title, message)
	if n.show == nil {
		return nil
	}
	return n.show(title, message)
}

// Sent returns how many warnings were raised.
func (n *Notifier) Sent() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent
}

package target

import (
	"time"

	"github.com/eyeremote/eyeremote/internal/clock"
)

// RetryPolicy bounds how often window activation is attempted.
type RetryPolicy struct {
	MaxAttempts int           // total attempts, at least 1
	Delay       time.Duration // fixed wait between attempts
}

// DefaultRetryPolicy is one attempt plus one retry after half a second.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 2, Delay: 500 * time.Millisecond}
}

// Do calls fn until it reports done or the attempts run out. fn receives the
// 1-based attempt number. onRetry, when set, is called before each wait.
// Do returns the number of attempts made and whether fn succeeded.
func (p RetryPolicy) Do(clk clock.Clock, fn func(attempt int) bool, onRetry func(next int)) (int, bool) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if fn(attempt) {
			return attempt, true
		}
		if attempt == attempts {
			return attempt, false
		}
		if onRetry != nil {
			onRetry(attempt + 1)
		}
		if p.Delay > 0 {
			clk.Sleep(p.Delay)
		}
	}
	return attempts, false
}

// Package target decides whether an action may proceed for the configured
// application and brings that application's window to the foreground.
package target

import "strings"

// AnyName is the configuration value that disables targeting.
const AnyName = "Any"

// Selector chooses the application actions are gated to. The zero value is
// Any.
type Selector struct {
	name string
}

// Any returns the selector that disables all gating and focusing.
func Any() Selector {
	return Selector{}
}

// Named returns a selector for a specific application.
func Named(app string) Selector {
	return Selector{name: strings.TrimSpace(app)}
}

// Parse maps a configuration value to a selector. Empty and "any" (any case)
// select Any.
func Parse(value string) Selector {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, AnyName) {
		return Any()
	}
	return Named(value)
}

func (s Selector) IsAny() bool {
	return s.name == ""
}

// Name returns the application name, or "" for Any.
func (s Selector) Name() string {
	return s.name
}

func (s Selector) String() string {
	if s.IsAny() {
		return AnyName
	}
	return s.name
}

// Matches reports whether processName contains the target name,
// case-insensitively. Any matches everything.
func (s Selector) Matches(processName string) bool {
	if s.IsAny() {
		return true
	}
	return strings.Contains(strings.ToLower(processName), strings.ToLower(s.name))
}

// Package macos implements window.Platform on macOS with NSWorkspace through
// darwinkit. Activation works per application, not per window.
package macos

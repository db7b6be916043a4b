// Package win32 implements window.Platform on Windows. It can address a
// media player's window directly with WM_APPCOMMAND, so the toggle reaches
// the player without synthesising global key input.
package win32

package utils

import (
	"fmt"
	"strings"
	"unicode"
)

func FormatRoundedUnit(seconds int64) string {
	if seconds < 0 {
		seconds = -seconds
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds > 3600 {
		return fmt.Sprintf("%dh", int64(seconds/3600))
	}
	return fmt.Sprintf("%dm", int64(seconds/60))
}

// FormatDuration renders seconds as "1h02m", "4m05s" or "12s".
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = -seconds
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm%02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// mediaApps are process name fragments of common media players and browsers.
var mediaApps = []string{
	"vlc", "spotify", "mpv", "mplayer", "totem", "rhythmbox", "audacious", "clementine",
	"celluloid", "smplayer", "kodi", "plex", "itunes", "music", "quicktime", "iina",
	"wmplayer", "groove", "movies", "potplayer", "foobar2000", "winamp", "musicbee",
	"chrome", "chromium", "firefox", "msedge", "brave", "opera", "safari", "vivaldi",
}

// IsMediaApp reports whether a process name looks like a media player or a
// browser that commonly plays media.
func IsMediaApp(processName string) bool {
	name := strings.ToLower(processName)
	for _, app := range mediaApps {
		if strings.Contains(name, app) {
			return true
		}
	}
	return false
}

// CleanProcessName trims path and ".exe"/".app" suffixes and stray
// non-printable characters from a process name.
func CleanProcessName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	lower := strings.ToLower(name)
	for _, suffix := range []string{".exe", ".app"} {
		if strings.HasSuffix(lower, suffix) {
			name = name[:len(name)-len(suffix)]
			break
		}
	}
	return strings.TrimFunc(name, func(r rune) bool { return !unicode.IsPrint(r) || unicode.IsSpace(r) })
}

package x11

import (
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// commandExists checks if a command is available in PATH
func commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// activePIDXdotool uses xdotool to get the PID owning the focused window
func activePIDXdotool() (int, error) {
	output, err := exec.Command("xdotool", "getactivewindow", "getwindowpid").Output()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get active window pid")
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(output)))
	if err != nil {
		return 0, errors.Wrap(err, "unexpected xdotool output")
	}
	return pid, nil
}

// wmctrlWindow is one line of `wmctrl -l -p`.
type wmctrlWindow struct {
	id    string
	pid   int
	title string
}

// listWindowsWmctrl uses wmctrl to list managed windows with their PIDs
func listWindowsWmctrl() ([]wmctrlWindow, error) {
	output, err := exec.Command("wmctrl", "-l", "-p").Output()
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute wmctrl")
	}
	return parseWmctrl(string(output)), nil
}

// parseWmctrl parses lines of the form "0x04000007  0 12345 host Title words".
func parseWmctrl(output string) []wmctrlWindow {
	var windows []wmctrlWindow
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		pid, err := strconv.Atoi(fields[2])
		if err != nil {
			continue
		}
		windows = append(windows, wmctrlWindow{
			id:    fields[0],
			pid:   pid,
			title: strings.Join(fields[4:], " "),
		})
	}
	return windows
}

// activateCLI focuses a window by id with whichever tool is installed
func activateCLI(id string, hasWmctrl bool) error {
	var cmd *exec.Cmd
	if hasWmctrl {
		cmd = exec.Command("wmctrl", "-i", "-a", id)
	} else {
		cmd = exec.Command("xdotool", "windowactivate", id)
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.Wrapf(err, "failed to activate window %s: %s", id, strings.TrimSpace(string(out)))
	}
	return nil
}

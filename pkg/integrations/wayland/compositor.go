package wayland

import (
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// swayNode is the subset of a sway tree node we read.
type swayNode struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	PID           int        `json:"pid"`
	AppID         string     `json:"app_id"`
	Focused       bool       `json:"focused"`
	Nodes         []swayNode `json:"nodes"`
	FloatingNodes []swayNode `json:"floating_nodes"`
}

// swayWindows flattens the tree into the leaf containers that belong to a
// process, in tree order.
func swayWindows(data []byte) ([]swayNode, error) {
	var root swayNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(err, "failed to parse sway tree")
	}

	var out []swayNode
	var walk func(n swayNode)
	walk = func(n swayNode) {
		if n.PID > 0 {
			out = append(out, n)
		}
		for _, c := range n.Nodes {
			walk(c)
		}
		for _, c := range n.FloatingNodes {
			walk(c)
		}
	}
	walk(root)
	return out, nil
}

func swayTree() ([]swayNode, error) {
	output, err := exec.Command("swaymsg", "-t", "get_tree").Output()
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute swaymsg")
	}
	return swayWindows(output)
}

func swayFocus(id int64) error {
	criteria := "[con_id=" + strconv.FormatInt(id, 10) + "] focus"
	if out, err := exec.Command("swaymsg", criteria).CombinedOutput(); err != nil {
		return errors.Wrapf(err, "swaymsg focus failed: %s", strings.TrimSpace(string(out)))
	}
	return nil
}

// hyprClient is one entry of `hyprctl clients -j` or `hyprctl activewindow -j`.
type hyprClient struct {
	Address string `json:"address"`
	PID     int    `json:"pid"`
	Class   string `json:"class"`
	Title   string `json:"title"`
	Mapped  bool   `json:"mapped"`
	Hidden  bool   `json:"hidden"`
}

func parseHyprClients(data []byte) ([]hyprClient, error) {
	var clients []hyprClient
	if err := json.Unmarshal(data, &clients); err != nil {
		return nil, errors.Wrap(err, "failed to parse hyprctl clients")
	}
	return clients, nil
}

func parseHyprActive(data []byte) (*hyprClient, error) {
	var c hyprClient
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "failed to parse hyprctl activewindow")
	}
	if c.PID <= 0 && c.Class == "" {
		return nil, errors.New("no active window")
	}
	return &c, nil
}

func hyprctl(args ...string) ([]byte, error) {
	output, err := exec.Command("hyprctl", args...).Output()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to execute hyprctl %s", strings.Join(args, " "))
	}
	return output, nil
}

// gnomeEval runs a script through org.gnome.Shell.Eval. Recent GNOME
// releases only allow it in unsafe mode.
func gnomeEval(script string) (string, error) {
	cmd := exec.Command("gdbus", "call", "--session",
		"--dest", "org.gnome.Shell",
		"--object-path", "/org/gnome/Shell",
		"--method", "org.gnome.Shell.Eval",
		script)

	output, err := cmd.Output()
	if err != nil {
		return "", errors.Wrap(err, "failed to call org.gnome.Shell.Eval")
	}
	return parseGnomeEval(string(output))
}

// parseGnomeEval unwraps "(true, 'value')".
func parseGnomeEval(output string) (string, error) {
	result := strings.TrimSpace(output)
	if !strings.HasPrefix(result, "(true,") {
		return "", errors.New("Shell.Eval is disabled")
	}
	result = strings.TrimPrefix(result, "(true,")
	result = strings.TrimSuffix(result, ")")
	result = strings.TrimSpace(result)
	return strings.Trim(result, "'\""), nil
}

const gnomeFocusedPID = `
	let w = global.display.get_focus_window();
	w ? String(w.get_pid()) : '0';
`

func gnomeActivateScript(needle string) string {
	return `
	let needle = ` + strconv.Quote(needle) + `;
	let found = '';
	for (let a of global.get_window_actors()) {
		let w = a.meta_window;
		if (!w || !w.get_title()) continue;
		let cls = (w.get_wm_class() || '').toLowerCase();
		if (cls.includes(needle)) {
			w.activate(global.get_current_time());
			found = w.get_pid() + '|' + w.get_title();
			break;
		}
	}
	found;
`
}

// kdotoolActivePID reads the focused window owner through kdotool.
func kdotoolActivePID() (int, error) {
	output, err := exec.Command("kdotool", "getactivewindow", "getwindowpid").Output()
	if err != nil {
		return 0, errors.Wrap(err, "failed to execute kdotool")
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(output)))
	if err != nil {
		return 0, errors.Wrap(err, "unexpected kdotool output")
	}
	return pid, nil
}

// kdotoolActivate activates the first window whose class matches needle and
// returns its id.
func kdotoolActivate(needle string) (string, error) {
	output, err := exec.Command("kdotool", "search", "--limit", "1", "--class", needle).Output()
	if err != nil {
		return "", errors.Wrap(err, "failed to execute kdotool search")
	}
	id := strings.TrimSpace(string(output))
	if id == "" {
		return "", nil
	}
	if out, err := exec.Command("kdotool", "windowactivate", id).CombinedOutput(); err != nil {
		return "", errors.Wrapf(err, "kdotool windowactivate failed: %s", strings.TrimSpace(string(out)))
	}
	return id, nil
}

// parseXPropWindow parses "_NET_ACTIVE_WINDOW(WINDOW): window id # 0x80032b".
func parseXPropWindow(output string) string {
	_, id, ok := strings.Cut(output, "# ")
	if !ok {
		return ""
	}
	id = strings.TrimSpace(id)
	if id == "0x0" {
		return ""
	}
	return id
}

// parseXPropCardinal parses "_NET_WM_PID(CARDINAL) = 1234".
func parseXPropCardinal(output string) int {
	_, value, ok := strings.Cut(output, "=")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

// xwaylandFocusedPID reads the focused XWayland client through xprop.
func xwaylandFocusedPID() (int, error) {
	rootOutput, err := exec.Command("xprop", "-root", "_NET_ACTIVE_WINDOW").CombinedOutput()
	if err != nil {
		return 0, errors.Wrapf(err, "failed to get active window from root (output: %s)", string(rootOutput))
	}

	id := parseXPropWindow(string(rootOutput))
	if id == "" {
		return 0, errors.New("no active window found (focused window may be native Wayland)")
	}

	pidOutput, err := exec.Command("xprop", "-id", id, "_NET_WM_PID").Output()
	if err != nil {
		return 0, errors.Wrap(err, "failed to read _NET_WM_PID")
	}
	pid := parseXPropCardinal(string(pidOutput))
	if pid == 0 {
		return 0, errors.New("focused window has no _NET_WM_PID")
	}
	return pid, nil
}

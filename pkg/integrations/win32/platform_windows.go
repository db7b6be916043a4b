//go:build windows

package win32

import (
	"sort"
	"strings"
	"syscall"
	"unsafe"

	"github.com/eyeremote/eyeremote/pkg/utils"
	"github.com/eyeremote/eyeremote/pkg/window"

	"github.com/lxn/win"
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

const (
	wmAppCommand             = 0x0319
	appCommandMediaPlayPause = 14
	vkMediaPlayPause         = 0xB3
	keyeventfExtendedKey     = 0x0001
	keyeventfKeyUp           = 0x0002
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procEnumWindows              = user32.NewProc("EnumWindows")
	procGetWindowThreadProcessID = user32.NewProc("GetWindowThreadProcessId")
	procKeyboardEvent            = user32.NewProc("keybd_event")
)

// Platform implements window.Platform and window.KeySource for Windows
type Platform struct {
	keys *KeybdSender
}

// NewPlatform creates a new Windows platform
func NewPlatform() *Platform {
	return &Platform{keys: &KeybdSender{}}
}

func (p *Platform) IsAvailable() bool { return true }

func (p *Platform) GetDisplayServer() string { return "win32" }

func windowPID(hwnd win.HWND) uint32 {
	var pid uint32
	_, _, _ = procGetWindowThreadProcessID.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&pid)))
	return pid
}

// imageName returns the executable base name of a process.
func imageName(pid uint32) (string, error) {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return "", errors.Wrapf(err, "failed to open process %d", pid)
	}
	defer windows.CloseHandle(h)

	var buf [windows.MAX_PATH]uint16
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return "", errors.Wrapf(err, "failed to query image name of %d", pid)
	}
	return utils.CleanProcessName(windows.UTF16ToString(buf[:size])), nil
}

func windowTitle(hwnd win.HWND) string {
	n := win.GetWindowTextLength(hwnd)
	if n <= 0 {
		return ""
	}
	buf := make([]uint16, n+1)
	win.GetWindowText(hwnd, &buf[0], n+1)
	return windows.UTF16ToString(buf)
}

// GetForegroundProcessName returns the process owning the foreground window
func (p *Platform) GetForegroundProcessName() (string, error) {
	hwnd := win.GetForegroundWindow()
	if hwnd == 0 {
		return "", errors.New("no foreground window")
	}
	pid := windowPID(hwnd)
	if pid == 0 {
		return "", errors.New("foreground window has no owning process")
	}
	return imageName(pid)
}

// ListProcesses returns running processes ordered by PID
func (p *Platform) ListProcesses() ([]window.ProcessInfo, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, errors.Wrap(err, "failed to snapshot processes")
	}
	defer windows.CloseHandle(snap)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	if err := windows.Process32First(snap, &entry); err != nil {
		return nil, errors.Wrap(err, "failed to read process list")
	}

	var procs []window.ProcessInfo
	for {
		procs = append(procs, window.ProcessInfo{
			PID:  int(entry.ProcessID),
			Name: utils.CleanProcessName(windows.UTF16ToString(entry.ExeFile[:])),
		})
		if err := windows.Process32Next(snap, &entry); err != nil {
			break
		}
	}

	sort.Slice(procs, func(i, j int) bool { return procs[i].PID < procs[j].PID })
	return procs, nil
}

type enumContext struct {
	needle string
	found  win.HWND
	pid    uint32
	title  string
}

func enumWindowsProc(hwnd syscall.Handle, lParam uintptr) uintptr {
	if hwnd == 0 || lParam == 0 {
		return 1
	}
	ctx := (*enumContext)(unsafe.Pointer(lParam))

	h := win.HWND(hwnd)
	if !win.IsWindowVisible(h) {
		return 1
	}
	title := windowTitle(h)
	if title == "" {
		return 1
	}
	pid := windowPID(h)
	if pid == 0 {
		return 1
	}
	name, err := imageName(pid)
	if err != nil || !strings.Contains(strings.ToLower(name), ctx.needle) {
		return 1
	}

	ctx.found, ctx.pid, ctx.title = h, pid, title
	return 0 // stop enumerating
}

var enumCallback = syscall.NewCallback(enumWindowsProc)

// ActivateWindow restores and focuses the first visible titled window whose
// image name contains processName
func (p *Platform) ActivateWindow(processName string) (*window.FocusHandle, error) {
	ctx := &enumContext{needle: strings.ToLower(processName)}
	_, _, _ = procEnumWindows.Call(enumCallback, uintptr(unsafe.Pointer(ctx)))
	if ctx.found == 0 {
		return nil, window.ErrNoWindow
	}

	if win.IsIconic(ctx.found) {
		win.ShowWindow(ctx.found, win.SW_RESTORE)
	}
	if !win.SetForegroundWindow(ctx.found) {
		return nil, errors.Errorf("SetForegroundWindow refused for %q", ctx.title)
	}

	return &window.FocusHandle{
		ID:      uint64(ctx.found),
		PID:     int(ctx.pid),
		Title:   ctx.title,
		Backend: "win32",
	}, nil
}

// SendDirectToggle posts WM_APPCOMMAND play/pause to the window
func (p *Platform) SendDirectToggle(handle *window.FocusHandle) error {
	if handle == nil || handle.ID == 0 {
		return errors.New("no window handle")
	}
	hwnd := win.HWND(uintptr(handle.ID))
	if win.PostMessage(hwnd, wmAppCommand, uintptr(hwnd), uintptr(appCommandMediaPlayPause<<16)) == 0 {
		return errors.Errorf("PostMessage(WM_APPCOMMAND) failed for %q", handle.Title)
	}
	return nil
}

// MediaKeySender returns the keybd_event sender
func (p *Platform) MediaKeySender() window.KeySender {
	return p.keys
}

func (p *Platform) Close() error { return nil }

// KeybdSender taps VK_MEDIA_PLAY_PAUSE with keybd_event.
type KeybdSender struct{}

func (KeybdSender) Name() string { return "keybd_event" }

// TapPlayPause presses and releases the media key. keybd_event reports no
// errors, so only a missing entry point fails.
func (KeybdSender) TapPlayPause() error {
	if err := procKeyboardEvent.Find(); err != nil {
		return errors.Wrap(err, "keybd_event not available")
	}
	procKeyboardEvent.Call(vkMediaPlayPause, 0, keyeventfExtendedKey, 0)
	procKeyboardEvent.Call(vkMediaPlayPause, 0, keyeventfExtendedKey|keyeventfKeyUp, 0)
	return nil
}

package x11

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"
)

// XF86AudioPlay
const keysymAudioPlay xproto.Keysym = 0x1008FF14

var atomNames = []string{
	"_NET_ACTIVE_WINDOW",
	"_NET_CLIENT_LIST",
	"_NET_WM_NAME",
	"_NET_WM_PID",
	"WM_NAME",
	"WM_CLASS",
	"UTF8_STRING",
}

// client is a thin EWMH client over one X connection.
type client struct {
	conn  *xgb.Conn
	root  xproto.Window
	atoms map[string]xproto.Atom
}

func newClient() (*client, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to X server")
	}

	setup := xproto.Setup(conn)
	c := &client{
		conn:  conn,
		root:  setup.DefaultScreen(conn).Root,
		atoms: make(map[string]xproto.Atom, len(atomNames)),
	}

	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "failed to intern atom %s", name)
		}
		c.atoms[name] = reply.Atom
	}

	return c, nil
}

func (c *client) close() {
	c.conn.Close()
}

func (c *client) property(w xproto.Window, atom, typ xproto.Atom, length uint32) ([]byte, error) {
	reply, err := xproto.GetProperty(c.conn, false, w, atom, typ, 0, length).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

func (c *client) activeFromProperty() xproto.Window {
	data, err := c.property(c.root, c.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 1)
	if err != nil || len(data) < 4 {
		return 0
	}
	return xproto.Window(binary.LittleEndian.Uint32(data))
}

func (c *client) activeFromInputFocus() xproto.Window {
	reply, err := xproto.GetInputFocus(c.conn).Reply()
	if err != nil {
		return 0
	}
	return reply.Focus
}

func (c *client) topLevel(w xproto.Window) xproto.Window {
	for {
		reply, err := xproto.QueryTree(c.conn, w).Reply()
		if err != nil || reply.Parent == c.root || reply.Parent == 0 {
			return w
		}
		w = reply.Parent
	}
}

// activeWindow returns the focused top-level window. Window managers update
// _NET_ACTIVE_WINDOW asynchronously, so a few short retries are made.
func (c *client) activeWindow() (xproto.Window, error) {
	for i := 0; i < 5; i++ {
		if w := c.activeFromProperty(); w != 0 && c.name(w) != "" {
			return w, nil
		}

		if w := c.activeFromInputFocus(); w != 0 && w != c.root {
			if top := c.topLevel(w); top != 0 && c.name(top) != "" {
				return top, nil
			}
		}

		time.Sleep(20 * time.Millisecond)
	}
	return 0, errors.New("no active window found")
}

func (c *client) name(w xproto.Window) string {
	data, err := c.property(w, c.atoms["_NET_WM_NAME"], c.atoms["UTF8_STRING"], 256)
	if err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}

	data, err = c.property(w, c.atoms["WM_NAME"], xproto.AtomString, 256)
	if err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}
	return ""
}

// class returns the WM_CLASS instance name.
func (c *client) class(w xproto.Window) string {
	data, err := c.property(w, c.atoms["WM_CLASS"], xproto.AtomString, 256)
	if err != nil || len(data) == 0 {
		return ""
	}
	instance, _, _ := strings.Cut(strings.TrimRight(string(data), "\x00"), "\x00")
	return instance
}

func (c *client) pid(w xproto.Window) int {
	data, err := c.property(w, c.atoms["_NET_WM_PID"], xproto.AtomCardinal, 1)
	if err != nil || len(data) < 4 {
		return 0
	}
	return int(binary.LittleEndian.Uint32(data))
}

// clients returns the managed top-level windows in mapping order.
func (c *client) clients() ([]xproto.Window, error) {
	data, err := c.property(c.root, c.atoms["_NET_CLIENT_LIST"], xproto.AtomWindow, 4096)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read _NET_CLIENT_LIST")
	}
	windows := make([]xproto.Window, 0, len(data)/4)
	for i := 0; i+4 <= len(data); i += 4 {
		windows = append(windows, xproto.Window(binary.LittleEndian.Uint32(data[i:])))
	}
	return windows, nil
}

// activate asks the window manager to raise and focus w.
func (c *client) activate(w xproto.Window) error {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: w,
		Type:   c.atoms["_NET_ACTIVE_WINDOW"],
		// source indication 2 (pager) makes window managers honour the request
		Data: xproto.ClientMessageDataUnionData32New([]uint32{2, 0, 0, 0, 0}),
	}
	mask := uint32(xproto.EventMaskSubstructureRedirect | xproto.EventMaskSubstructureNotify)
	if err := xproto.SendEventChecked(c.conn, false, c.root, mask, string(ev.Bytes())).Check(); err != nil {
		return errors.Wrap(err, "failed to send _NET_ACTIVE_WINDOW")
	}
	return nil
}

// keycode finds the keycode bound to keysym.
func (c *client) keycode(sym xproto.Keysym) (xproto.Keycode, error) {
	setup := xproto.Setup(c.conn)
	count := byte(setup.MaxKeycode - setup.MinKeycode + 1)
	reply, err := xproto.GetKeyboardMapping(c.conn, setup.MinKeycode, count).Reply()
	if err != nil {
		return 0, errors.Wrap(err, "failed to read keyboard mapping")
	}

	per := int(reply.KeysymsPerKeycode)
	if per == 0 {
		return 0, errors.New("empty keyboard mapping")
	}
	for i, ks := range reply.Keysyms {
		if ks == sym {
			return setup.MinKeycode + xproto.Keycode(i/per), nil
		}
	}
	return 0, errors.Errorf("no keycode for keysym 0x%x", uint32(sym))
}

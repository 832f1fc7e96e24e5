package x11

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

const defaultTimeout = 500 * time.Millisecond

// Resolver implements window.ClassResolver over a single X11 connection.
type Resolver struct {
	conn    *xgb.Conn
	root    xproto.Window
	atoms   map[string]xproto.Atom
	timeout time.Duration
}

// NewResolver connects to the X server named by $DISPLAY.
func NewResolver() (*Resolver, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	r := &Resolver{
		conn:    conn,
		root:    xproto.Setup(conn).DefaultScreen(conn).Root,
		atoms:   make(map[string]xproto.Atom),
		timeout: defaultTimeout,
	}

	for _, name := range []string{"_NET_ACTIVE_WINDOW", "_NET_WM_NAME", "UTF8_STRING"} {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to intern atom %s: %w", name, err)
		}
		r.atoms[name] = reply.Atom
	}

	return r, nil
}

// ResolveClass returns the WM_CLASS instance name of a window, falling back
// to the class name when the instance is empty.
func (r *Resolver) ResolveClass(windowID int64) (string, error) {
	if windowID < 1 || windowID > 0xFFFFFFFF {
		return "", fmt.Errorf("invalid window id %d", windowID)
	}

	data, err := r.readProperty(xproto.Window(windowID), xproto.AtomWmClass, xproto.AtomString)
	if err != nil {
		return "", fmt.Errorf("failed to read WM_CLASS of window %d: %w", windowID, err)
	}

	instance, class := parseWMClass(data)
	if instance != "" {
		return instance, nil
	}
	if class != "" {
		return class, nil
	}
	return "", fmt.Errorf("window %d has no WM_CLASS", windowID)
}

// ActiveWindow returns the id and title of the window the window manager
// reports as focused.
func (r *Resolver) ActiveWindow() (int64, string, error) {
	data, err := r.readProperty(r.root, r.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow)
	if err != nil {
		return 0, "", fmt.Errorf("failed to read _NET_ACTIVE_WINDOW: %w", err)
	}
	if len(data) < 4 {
		return 0, "", fmt.Errorf("no active window")
	}
	id := xproto.Window(binary.LittleEndian.Uint32(data))
	if id == 0 {
		return 0, "", fmt.Errorf("no active window")
	}

	title := ""
	if name, err := r.readProperty(id, r.atoms["_NET_WM_NAME"], r.atoms["UTF8_STRING"]); err == nil && len(name) > 0 {
		title = strings.TrimRight(string(name), "\x00")
	} else if name, err := r.readProperty(id, xproto.AtomWmName, xproto.AtomString); err == nil {
		title = strings.TrimRight(string(name), "\x00")
	}

	return int64(id), title, nil
}

// readProperty fetches a whole property value, following BytesAfter for
// long values. It gives up after the resolver timeout.
func (r *Resolver) readProperty(win xproto.Window, atom, atomType xproto.Atom) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf []byte
		var offset uint32
		for {
			reply, err := xproto.GetProperty(r.conn, false, win, atom, atomType, offset, 256).Reply()
			if err != nil {
				done <- result{err: err}
				return
			}
			buf = append(buf, reply.Value...)
			if reply.BytesAfter == 0 || len(reply.Value) == 0 {
				break
			}
			offset += uint32(len(reply.Value)) / 4
		}
		done <- result{data: buf}
	}()

	select {
	case res := <-done:
		return res.data, res.err
	case <-time.After(r.timeout):
		return nil, fmt.Errorf("timed out after %v", r.timeout)
	}
}

// parseWMClass splits the NUL separated WM_CLASS value into instance and class.
func parseWMClass(data []byte) (instance, class string) {
	parts := strings.Split(strings.TrimRight(string(data), "\x00"), "\x00")
	if len(parts) >= 1 {
		instance = parts[0]
	}
	if len(parts) >= 2 {
		class = parts[1]
	}
	return instance, class
}

// Close closes the X connection.
func (r *Resolver) Close() error {
	r.conn.Close()
	return nil
}

package window

import (
	"context"
	"fmt"
)

// Kind identifies what a window manager notification reports.
type Kind int

const (
	KindNewWindow Kind = iota + 1
	KindFocusChanged
	KindTitleChanged
)

func (k Kind) String() string {
	switch k {
	case KindNewWindow:
		return "new"
	case KindFocusChanged:
		return "focus"
	case KindTitleChanged:
		return "title"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps a window manager change name onto a Kind.
// The boolean is false for changes the tracker does not care about.
func ParseKind(change string) (Kind, bool) {
	switch change {
	case "new":
		return KindNewWindow, true
	case "focus":
		return KindFocusChanged, true
	case "title":
		return KindTitleChanged, true
	default:
		return 0, false
	}
}

// RawEvent is a single window manager notification.
type RawEvent struct {
	WindowID int64
	Title    string // empty when the window manager sent no name
	Kind     Kind
}

// Source produces window manager notifications in arrival order.
type Source interface {
	// Listen blocks and hands every notification to emit until ctx is
	// cancelled or the transport fails. A nil return means ctx ended.
	Listen(ctx context.Context, emit func(RawEvent)) error

	// Name describes the transport, e.g. "i3".
	Name() string

	// Close releases the underlying connection.
	Close() error
}

// ClassResolver looks up the application class of a window.
type ClassResolver interface {
	// ResolveClass returns the class of the given window. Implementations
	// must not block indefinitely; callers fall back to an empty class on error.
	ResolveClass(windowID int64) (string, error)

	Close() error
}

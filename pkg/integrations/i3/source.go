// Package i3 delivers window notifications from the i3 IPC event socket.
package i3

import (
	"context"
	"fmt"
	"sync"

	"go.i3wm.org/i3/v4"

	"github.com/actionsum/focuslog/pkg/window"
)

// Source implements window.Source with an i3 window-event subscription.
// Each Listen call owns its own connection.
type Source struct{}

// NewSource creates an i3 event source. The connection is made by Listen.
func NewSource() *Source {
	return &Source{}
}

func (s *Source) Name() string {
	return "i3"
}

// Listen subscribes to window events and forwards new, focus and title
// changes until ctx ends or the IPC connection fails.
func (s *Source) Listen(ctx context.Context, emit func(window.RawEvent)) error {
	recv := i3.Subscribe(i3.WindowEventType)

	var (
		once     sync.Once
		closeErr error
	)
	closeRecv := func() {
		once.Do(func() { closeErr = recv.Close() })
	}
	stop := context.AfterFunc(ctx, closeRecv)
	defer stop()

	for recv.Next() {
		ev, ok := recv.Event().(*i3.WindowEvent)
		if !ok {
			continue
		}
		if raw, ok := translate(ev); ok {
			emit(raw)
		}
	}

	closeRecv()
	if ctx.Err() != nil {
		return nil
	}
	if closeErr == nil {
		return fmt.Errorf("i3 event subscription ended")
	}
	return fmt.Errorf("i3 event subscription failed: %w", closeErr)
}

// Close is a no-op; Listen closes its connection when it returns.
func (s *Source) Close() error {
	return nil
}

// translate keeps the window changes the tracker understands.
func translate(ev *i3.WindowEvent) (window.RawEvent, bool) {
	kind, ok := window.ParseKind(ev.Change)
	if !ok {
		return window.RawEvent{}, false
	}
	return window.RawEvent{
		WindowID: ev.Container.Window,
		Title:    ev.Container.Name,
		Kind:     kind,
	}, true
}

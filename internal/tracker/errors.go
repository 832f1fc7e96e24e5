package tracker

import "fmt"

// TransportError reports that the window event source failed or ended.
// The run cannot continue without losing notifications.
type TransportError struct {
	Source string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("window event source %s failed: %v", e.Source, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// PersistenceError reports that a closed interval could not be written to
// the activity log. Continuing would silently drop tracked time.
type PersistenceError struct {
	ID  uint32
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist interval %d: %v", e.ID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

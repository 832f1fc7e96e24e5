package detector

import (
	"fmt"
	"os"

	"github.com/actionsum/focuslog/pkg/integrations/i3"
	"github.com/actionsum/focuslog/pkg/integrations/x11"
	"github.com/actionsum/focuslog/pkg/window"
)

// New returns the window event source and class resolver for the current
// session. Tracking needs i3 running on an X11 display.
func New() (window.Source, window.ClassResolver, error) {
	if ds := DetectDisplayServer(); ds != "x11" {
		return nil, nil, fmt.Errorf("unsupported display server %q: focuslog needs i3 on X11", ds)
	}

	resolver, err := x11.NewResolver()
	if err != nil {
		return nil, nil, err
	}

	return i3.NewSource(), resolver, nil
}

// NewResolver returns only the class resolver, for commands that inspect
// the current window without tracking.
func NewResolver() (*x11.Resolver, error) {
	if ds := DetectDisplayServer(); ds != "x11" {
		return nil, fmt.Errorf("unsupported display server %q", ds)
	}
	return x11.NewResolver()
}

func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}

//go:build !windows

package inject

import "github.com/dixieflatline76/Spice/internal/shelltopo"

// Watchdog is a no-op placeholder on non-Windows platforms; the mpv-based
// side-car owns its window directly and never needs reparenting.
type Watchdog struct{}

// Inject always fails on non-Windows platforms.
func Inject(uintptr, shelltopo.WindowsBuild, shelltopo.ShellAnchors) (*Watchdog, error) {
	return nil, ErrUnsupportedPlatform
}

// StopWatchdog is a no-op on non-Windows platforms.
func StopWatchdog() {}

// Stop is a no-op on non-Windows platforms.
func (w *Watchdog) Stop() {}

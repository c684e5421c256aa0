// Package inject embeds a side-car's HostWindow into the Windows shell's
// window hierarchy so it renders as the desktop wallpaper, and supervises
// the splice against shell rebuilds (Explorer restarts, DPI changes).
package inject

import (
	"errors"
	"time"
)

// ErrUnsupportedPlatform is returned by Inject on non-Windows platforms.
var ErrUnsupportedPlatform = errors.New("inject: shell injection is only supported on windows")

// ErrInjectionFailed wraps any style/parent/position mutation failure.
// Partial success is never returned: on failure the caller must retry the
// whole sequence from scratch.
var ErrInjectionFailed = errors.New("inject: injection failed")

const (
	// watchdogFastInterval is the poll interval for the first
	// watchdogFastIterations iterations after a successful injection,
	// chosen to catch a flaky shell during login quickly.
	watchdogFastInterval   = 2 * time.Second
	watchdogFastIterations = 12
	// watchdogSlowInterval is the poll interval thereafter.
	watchdogSlowInterval = 5 * time.Second

	// restartSettleDelay is slept before re-attempting injection after
	// stopping a prior watchdog.
	restartSettleDelay = 300 * time.Millisecond

	// shellRaiseSettleDelay is slept after sending the shell rebuild
	// message during the modern-variant injection sequence.
	shellRaiseSettleDelay = 500 * time.Millisecond
)

//go:build !windows

package main

import "time"

// runMessageLoop blocks indefinitely on non-Windows platforms, where the
// mpv-backed surface owns its own window and event loop in a separate
// process; this process simply stays alive until killed by the
// controller.
func runMessageLoop() {
	for {
		time.Sleep(time.Hour)
	}
}

//go:build !windows

package main

import (
	"github.com/dixieflatline76/Spice/internal/mediasurface"
	"github.com/dixieflatline76/Spice/internal/shelltopo"
)

// probeShell is a no-op on non-Windows platforms: there is no shell
// hierarchy to classify, so the build is always Unknown.
func probeShell() (shelltopo.WindowsBuild, error) {
	return shelltopo.Classify(), nil
}

// injectSurface is a no-op on non-Windows platforms: the external media
// player owns and places its own window directly.
func injectSurface(_ mediasurface.Surface, _ shelltopo.WindowsBuild) (func(), error) {
	return func() {}, nil
}

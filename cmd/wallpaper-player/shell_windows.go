//go:build windows

package main

import (
	"github.com/dixieflatline76/Spice/internal/inject"
	"github.com/dixieflatline76/Spice/internal/mediasurface"
	"github.com/dixieflatline76/Spice/internal/shelltopo"
)

// probeShell resolves the shell anchors and build classification needed
// for injection.
func probeShell() (shelltopo.WindowsBuild, error) {
	anchors, build, err := shelltopo.Probe()
	if err != nil {
		return build, err
	}
	shellAnchors = anchors
	return build, nil
}

var shellAnchors shelltopo.ShellAnchors

// injectSurface splices surface's host window into the shell and starts
// the watchdog, returning a func that stops it.
func injectSurface(surface mediasurface.Surface, build shelltopo.WindowsBuild) (func(), error) {
	watchdog, err := inject.Inject(surface.Handle(), build, shellAnchors)
	if err != nil {
		return nil, err
	}
	return watchdog.Stop, nil
}

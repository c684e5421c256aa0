// Command wallpaper-player is the side-car process that renders a single
// looping video as the Windows desktop wallpaper. It is spawned by the
// playback controller with three positional arguments and runs until
// killed; it never reads stdin or writes to stdout.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/dixieflatline76/Spice/internal/mediasurface"
	"github.com/dixieflatline76/Spice/util/log"
)

// Exit codes distinguish each initialization failure mode by process exit
// status as well as by stderr text, per the side-car's command-line
// contract.
const (
	exitOK = iota
	exitBadArgs
	exitShellNotFound
	exitHostWindowCreationFailed
	exitDeviceCreationFailed
	exitEngineCreationFailed
	exitMediaLoadFailed
	exitInjectionFailed
	exitPlayFailed
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) != 4 {
		fmt.Fprintln(os.Stderr, "usage: wallpaper-player <file_path> <width> <height>")
		return exitBadArgs
	}

	path := os.Args[1]
	width, err := strconv.Atoi(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "wallpaper-player: bad width %q: %v\n", os.Args[2], err)
		return exitBadArgs
	}
	height, err := strconv.Atoi(os.Args[3])
	if err != nil {
		fmt.Fprintf(os.Stderr, "wallpaper-player: bad height %q: %v\n", os.Args[3], err)
		return exitBadArgs
	}

	build, err := probeShell()
	if err != nil {
		fmt.Fprintf(os.Stderr, "wallpaper-player: shell probe failed: %v\n", err)
		return exitShellNotFound
	}

	surface, err := mediasurface.New(build, width, height)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wallpaper-player: %v\n", err)
		return classifySurfaceError(err)
	}
	defer surface.Shutdown()

	if err := surface.Load(path); err != nil {
		fmt.Fprintf(os.Stderr, "wallpaper-player: load failed: %v\n", err)
		return exitMediaLoadFailed
	}

	stopInjection, err := injectSurface(surface, build)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wallpaper-player: injection failed: %v\n", err)
		return exitInjectionFailed
	}
	defer stopInjection()

	if err := surface.Play(); err != nil {
		fmt.Fprintf(os.Stderr, "wallpaper-player: play failed: %v\n", err)
		return exitPlayFailed
	}

	log.Printf("wallpaper-player: playing %s at %dx%d", path, width, height)
	runMessageLoop()
	return exitOK
}

func classifySurfaceError(err error) int {
	switch {
	case errors.Is(err, mediasurface.ErrDeviceCreationFailed):
		return exitDeviceCreationFailed
	case errors.Is(err, mediasurface.ErrEngineCreationFailed):
		return exitEngineCreationFailed
	default:
		return exitHostWindowCreationFailed
	}
}

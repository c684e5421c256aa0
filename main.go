package main

import (
	"fmt"
	"os"

	"github.com/dixieflatline76/Spice/config"
	"github.com/dixieflatline76/Spice/internal/playback"
	"github.com/dixieflatline76/Spice/ui"
)

func main() {
	acquired, err := acquireLock()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to acquire single-instance lock: %v\n", err)
		os.Exit(1)
	}
	if !acquired {
		fmt.Printf("Another instance of %s is already running.\n", config.ServiceName)
		os.Exit(1)
	}
	defer releaseLock()

	app := ui.GetApplication()
	playback.LoadPlugin(ui.GetPluginManager())

	app.Start()
}

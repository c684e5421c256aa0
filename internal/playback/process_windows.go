//go:build windows

package playback

import (
	"golang.org/x/sys/windows"

	"github.com/dixieflatline76/Spice/util/log"
)

// forceKill is the hard-kill fallback used when os.Process.Kill returns an
// error (e.g. the process already began exiting). It opens the process
// directly and terminates it, waiting up to 5s for exit.
func forceKill(pid int) {
	h, err := windows.OpenProcess(windows.PROCESS_TERMINATE|windows.SYNCHRONIZE, false, uint32(pid))
	if err != nil {
		log.Printf("playback: force-kill OpenProcess(%d) failed: %v", pid, err)
		return
	}
	defer windows.CloseHandle(h)

	if err := windows.TerminateProcess(h, 1); err != nil {
		log.Printf("playback: force-kill TerminateProcess(%d) failed: %v", pid, err)
		return
	}
	windows.WaitForSingleObject(h, 5000)
}

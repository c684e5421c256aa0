//go:build windows

package inject

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dixieflatline76/Spice/internal/shelltopo"
	"github.com/dixieflatline76/Spice/util/log"
)

// Watchdog supervises an injected HostWindow, re-verifying the shell
// invariant on a cadence and re-applying the splice if the shell rebuilds
// underneath it. Exactly one Watchdog is active per side-car process.
type Watchdog struct {
	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	host    uintptr
	build   shelltopo.WindowsBuild
	anchors shelltopo.ShellAnchors
}

var (
	activeMu sync.Mutex
	active   *Watchdog
)

// startWatchdog starts a new watchdog for host and records it as the active
// one. It does not stop a prior watchdog; Inject calls StopWatchdog before
// it injects.
func startWatchdog(host uintptr, build shelltopo.WindowsBuild, anchors shelltopo.ShellAnchors) *Watchdog {
	w := &Watchdog{
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		host:    host,
		build:   build,
		anchors: anchors,
	}

	activeMu.Lock()
	active = w
	activeMu.Unlock()

	go w.run()
	return w
}

// StopWatchdog stops the currently active watchdog, if any, and waits for
// its loop to exit.
func StopWatchdog() {
	activeMu.Lock()
	w := active
	active = nil
	activeMu.Unlock()

	if w == nil {
		return
	}
	close(w.stop)
	<-w.done
}

// Stop stops this watchdog if it is still the active one. Safe to call
// even after a newer watchdog has superseded it.
func (w *Watchdog) Stop() {
	activeMu.Lock()
	if active != w {
		activeMu.Unlock()
		return
	}
	active = nil
	activeMu.Unlock()

	close(w.stop)
	<-w.done
}

func (w *Watchdog) run() {
	defer close(w.done)
	defer w.resetCachedHandles()

	limiter := rate.NewLimiter(rate.Every(10*time.Second), 1)

	for i := 0; ; i++ {
		interval := watchdogSlowInterval
		if i < watchdogFastIterations {
			interval = watchdogFastInterval
		}

		select {
		case <-w.stop:
			return
		case <-time.After(interval):
		}

		if !shelltopo.IsWindow(w.host) {
			log.Printf("inject: watchdog exiting, host window 0x%X no longer valid", w.host)
			return
		}

		if err := w.verify(); err != nil && limiter.Allow() {
			log.Printf("inject: watchdog re-verification failed: %v", err)
		}
	}
}

// verify re-checks the shell-specific invariant for the build this
// watchdog was started with, and re-applies the splice if it has drifted.
// Re-verification is idempotent when the shell state is healthy: it
// performs no OS mutation when the cached handles remain valid.
func (w *Watchdog) verify() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.build.IsModernShell() {
		if shelltopo.IsWindow(w.anchors.WorkerW) {
			return nil
		}
		worker := findWorkerUnderShellRoot(w.anchors.Progman)
		if worker == 0 {
			return ErrInjectionFailed
		}
		w.anchors.WorkerW = worker
		// Re-apply z-order only: host just below shell_view, workerw just
		// below host.
		if err := setWindowPosZOnly(w.host, w.anchors.ShellView); err != nil {
			return err
		}
		return setWindowPosZOnly(w.anchors.WorkerW, w.host)
	}

	// Legacy: if the wallpaper window can no longer be found, re-spawn it
	// and re-reparent the host.
	if shelltopo.IsWindow(w.anchors.WorkerW) {
		return nil
	}
	worker, err := shelltopo.SpawnWorkerW(w.anchors.Progman)
	if err != nil {
		return err
	}
	w.anchors.WorkerW = worker
	return reparentAsChild(w.host, worker)
}

func (w *Watchdog) resetCachedHandles() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.anchors = shelltopo.ShellAnchors{}
	w.host = 0
}

// findWorkerUnderShellRoot re-locates WorkerW as a direct child of the
// shell root (modern-variant recovery path).
func findWorkerUnderShellRoot(progman uintptr) uintptr {
	ret, _, _ := procFindWindowExW.Call(
		progman, 0,
		uintptrFromString("WorkerW"),
		0,
	)
	return ret
}

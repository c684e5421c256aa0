//go:build windows

package shelltopo

import (
	"fmt"
	"syscall"
	"time"
	"unsafe"

	"github.com/dixieflatline76/Spice/util/log"
)

var (
	modUser32               = syscall.NewLazyDLL("user32.dll")
	procFindWindowW          = modUser32.NewProc("FindWindowW")
	procFindWindowExW        = modUser32.NewProc("FindWindowExW")
	procSendMessageTimeoutW  = modUser32.NewProc("SendMessageTimeoutW")
	procEnumWindows          = modUser32.NewProc("EnumWindows")
	procIsWindow             = modUser32.NewProc("IsWindow")
)

const (
	// shellRebuildMessage is the undocumented shell message that toggles
	// the shell into hosting icons and wallpaper in separate windows.
	shellRebuildMessage = 0x052C

	smtoAbortIfHung = 0x0002
	smtoTimeoutMs   = 1500

	legacyProbeRetries   = 10
	legacyProbeBaseDelay = 200 * time.Millisecond
	legacyProbeStepDelay = 100 * time.Millisecond
)

// ShellAnchors is a snapshot of the shell window handles relevant to
// injection. After a successful Probe, Progman and ShellView are always
// non-zero; WorkerW is non-zero on the modern variant and may be zero on
// the legacy variant until spawned by the Injection Engine.
type ShellAnchors struct {
	Progman   uintptr
	ShellView uintptr
	WorkerW   uintptr
}

// Probe classifies the OS build and resolves the shell anchors needed for
// injection. On Windows 11 it requires WorkerW to already exist as a child
// of Progman; on Windows 10 and earlier, WorkerW is frequently absent and
// the Injection Engine is responsible for spawning it via SpawnWorkerW.
func Probe() (ShellAnchors, WindowsBuild, error) {
	build := Classify()

	progman, err := findProgman()
	if err != nil {
		return ShellAnchors{}, build, err
	}

	shellView := findShellView(progman)
	if shellView == 0 {
		return ShellAnchors{}, build, fmt.Errorf("%w: SHELLDLL_DefView not found under Progman", ErrShellNotFound)
	}

	anchors := ShellAnchors{Progman: progman, ShellView: shellView}

	if build.IsModernShell() {
		worker := findChildByClass(progman, "WorkerW")
		if worker == 0 {
			return anchors, build, fmt.Errorf("%w: WorkerW not found under Progman on modern shell", ErrWorkerSpawnFailed)
		}
		anchors.WorkerW = worker
	}

	return anchors, build, nil
}

func findProgman() (uintptr, error) {
	hwnd, _, _ := procFindWindowW.Call(
		uintptr(unsafe.Pointer(utf16PtrOrNil("Progman"))),
		uintptr(unsafe.Pointer(utf16PtrOrNil("Program Manager"))),
	)
	if hwnd == 0 {
		return 0, ErrShellNotFound
	}
	return hwnd, nil
}

func findShellView(progman uintptr) uintptr {
	return findChildByClass(progman, "SHELLDLL_DefView")
}

func findChildByClass(parent uintptr, class string) uintptr {
	hwnd, _, _ := procFindWindowExW.Call(
		parent,
		0,
		uintptr(unsafe.Pointer(utf16PtrOrNil(class))),
		0,
	)
	return hwnd
}

// sendShellRebuildMessage sends the undocumented 0x052C message to Progman
// with a bounded timeout, per spec: both parameters are zero.
func sendShellRebuildMessage(progman uintptr) {
	var result uintptr
	procSendMessageTimeoutW.Call(
		progman,
		shellRebuildMessage,
		0,
		0,
		smtoAbortIfHung,
		smtoTimeoutMs,
		uintptr(unsafe.Pointer(&result)),
	)
}

// SpawnWorkerW materializes the legacy-build static-wallpaper window by
// sending the shell rebuild message and polling for a top-level window
// whose direct child is SHELLDLL_DefView (other than Progman itself).
// Retries at least legacyProbeRetries times with backoff
// legacyProbeBaseDelay + legacyProbeStepDelay*attempt.
func SpawnWorkerW(progman uintptr) (uintptr, error) {
	for attempt := 0; attempt < legacyProbeRetries; attempt++ {
		sendShellRebuildMessage(progman)
		time.Sleep(legacyProbeBaseDelay + time.Duration(attempt)*legacyProbeStepDelay)

		if worker := findSiblingWorkerW(progman); worker != 0 {
			return worker, nil
		}
	}
	log.Printf("shelltopo: WorkerW not found after %d attempts", legacyProbeRetries)
	return 0, ErrWorkerSpawnFailed
}

// findSiblingWorkerW enumerates top-level windows looking for one whose
// direct child is SHELLDLL_DefView, then looks up the distinct top-level
// window immediately following it in z-order classed WorkerW, and returns
// that sibling's handle.
func findSiblingWorkerW(progman uintptr) uintptr {
	var found uintptr
	cb := syscall.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		if hwnd == progman {
			return 1 // continue enumeration
		}
		if findChildByClass(hwnd, "SHELLDLL_DefView") != 0 {
			if worker := findWindowAfter(hwnd, "WorkerW"); worker != 0 {
				found = worker
				return 0 // stop enumeration
			}
		}
		return 1
	})
	procEnumWindows.Call(cb, 0)
	return found
}

// findWindowAfter looks up the next top-level window classed class that
// follows after in z-order.
func findWindowAfter(after uintptr, class string) uintptr {
	hwnd, _, _ := procFindWindowExW.Call(
		0,
		after,
		uintptr(unsafe.Pointer(utf16PtrOrNil(class))),
		0,
	)
	return hwnd
}

// IsWindow reports whether hwnd still refers to a valid window.
func IsWindow(hwnd uintptr) bool {
	if hwnd == 0 {
		return false
	}
	ret, _, _ := procIsWindow.Call(hwnd)
	return ret != 0
}

func utf16PtrOrNil(s string) *uint16 {
	p, err := syscall.UTF16PtrFromString(s)
	if err != nil {
		return nil
	}
	return p
}

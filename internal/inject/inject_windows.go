//go:build windows

package inject

import (
	"fmt"
	"syscall"
	"time"
	"unsafe"

	"github.com/dixieflatline76/Spice/internal/shelltopo"
	"github.com/dixieflatline76/Spice/util/log"
)

var (
	modUser32                  = syscall.NewLazyDLL("user32.dll")
	procGetWindowLongPtrW      = modUser32.NewProc("GetWindowLongPtrW")
	procSetWindowLongPtrW      = modUser32.NewProc("SetWindowLongPtrW")
	procSetParent              = modUser32.NewProc("SetParent")
	procSetWindowPos           = modUser32.NewProc("SetWindowPos")
	procSetLayeredWindowAttrs  = modUser32.NewProc("SetLayeredWindowAttributes")
	procShowWindow             = modUser32.NewProc("ShowWindow")
	procSendMessageTimeoutW    = modUser32.NewProc("SendMessageTimeoutW")
	procFindWindowExW          = modUser32.NewProc("FindWindowExW")
)

// uintptrFromString returns a uintptr to a UTF-16 encoding of s, suitable
// for a syscall.LazyProc.Call argument.
func uintptrFromString(s string) uintptr {
	p, err := syscall.UTF16PtrFromString(s)
	if err != nil {
		return 0
	}
	return uintptr(unsafe.Pointer(p))
}

const (
	gwlStyle   = ^uintptr(16 - 1) // -16 as uintptr (GWL_STYLE)
	gwlExStyle = ^uintptr(20 - 1) // -20 as uintptr (GWL_EXSTYLE)

	wsPopup    = 0x80000000
	wsChild    = 0x40000000
	wsDisabled = 0x08000000

	wsExLayered = 0x00080000

	swpNoMove        = 0x0002
	swpNoSize        = 0x0001
	swpNoActivate    = 0x0010
	swpFrameChanged  = 0x0020
	swpShowWindow    = 0x0040

	lwaAlpha = 0x2
	opaque   = 255

	swShowNA = 8

	hwndBottom = uintptr(1)

	shellRebuildMessage = 0x052C
	smtoAbortIfHung     = 0x0002
	smtoTimeoutMs       = 1500
)

// InjectModern implements the Windows 11 injection variant: the goal
// z-order is shell_view (top) -> host (middle) -> workerw (bottom), all as
// children of the shell root.
func InjectModern(host uintptr, anchors shelltopo.ShellAnchors) error {
	sendShellRebuildMessage(anchors.Progman)
	time.Sleep(shellRaiseSettleDelay)

	if !shelltopo.IsWindow(anchors.ShellView) || !shelltopo.IsWindow(anchors.WorkerW) {
		return fmt.Errorf("%w: shell_view or workerw missing under shell root", ErrInjectionFailed)
	}

	if err := reparentAsChild(host, anchors.Progman); err != nil {
		return err
	}

	if err := markOpaqueLayered(host); err != nil {
		return err
	}

	width, height, err := shelltopo.WindowRect(anchors.Progman)
	if err != nil {
		return fmt.Errorf("%w: failed to read shell root rect: %v", ErrInjectionFailed, err)
	}

	if err := setWindowPosInsertAfter(host, anchors.ShellView, 0, 0, width, height,
		swpNoActivate|swpFrameChanged|swpShowWindow); err != nil {
		return fmt.Errorf("%w: failed to position host below shell_view: %v", ErrInjectionFailed, err)
	}

	if err := setWindowPosZOnly(anchors.WorkerW, host); err != nil {
		return fmt.Errorf("%w: failed to lower workerw below host: %v", ErrInjectionFailed, err)
	}

	showWithoutActivating(host)
	return nil
}

// InjectLegacy implements the Windows 10 and earlier injection variant: a
// single reparenting of host under the spawned wallpaper window.
func InjectLegacy(host uintptr, anchors *shelltopo.ShellAnchors) error {
	if anchors.WorkerW == 0 || !shelltopo.IsWindow(anchors.WorkerW) {
		worker, err := shelltopo.SpawnWorkerW(anchors.Progman)
		if err != nil {
			return err
		}
		anchors.WorkerW = worker
	}

	if err := reparentAsChild(host, anchors.WorkerW); err != nil {
		return err
	}

	geom := shelltopo.ProbeGeometry()
	if err := setWindowPosInsertAfter(host, hwndBottom, 0, 0, geom.Width, geom.Height,
		swpNoActivate|swpFrameChanged); err != nil {
		return fmt.Errorf("%w: failed to position host under workerw: %v", ErrInjectionFailed, err)
	}

	showWithoutActivating(host)
	return nil
}

func reparentAsChild(host uintptr, newParent uintptr) error {
	style, _, _ := procGetWindowLongPtrW.Call(host, gwlStyle)
	style &^= wsPopup
	style &^= wsDisabled
	style |= wsChild
	procSetWindowLongPtrW.Call(host, gwlStyle, style)

	ret, _, err := procSetParent.Call(host, newParent)
	if ret == 0 {
		return fmt.Errorf("%w: SetParent failed: %v", ErrInjectionFailed, err)
	}
	return nil
}

// markOpaqueLayered marks host as a layered window with fully opaque
// alpha. Critical on Windows 11 24H2+ and harmless on earlier Windows 11.
func markOpaqueLayered(host uintptr) error {
	exStyle, _, _ := procGetWindowLongPtrW.Call(host, gwlExStyle)
	exStyle |= wsExLayered
	procSetWindowLongPtrW.Call(host, gwlExStyle, exStyle)

	ret, _, err := procSetLayeredWindowAttrs.Call(host, 0, opaque, lwaAlpha)
	if ret == 0 {
		return fmt.Errorf("%w: SetLayeredWindowAttributes failed: %v", ErrInjectionFailed, err)
	}
	return nil
}

func setWindowPosInsertAfter(hwnd, insertAfter uintptr, x, y, width, height int, flags uintptr) error {
	ret, _, err := procSetWindowPos.Call(
		hwnd, insertAfter,
		uintptr(x), uintptr(y), uintptr(width), uintptr(height),
		flags,
	)
	if ret == 0 {
		return err
	}
	return nil
}

// setWindowPosZOnly moves hwnd in z-order to just below insertAfter without
// touching its position or size.
func setWindowPosZOnly(hwnd, insertAfter uintptr) error {
	ret, _, err := procSetWindowPos.Call(
		hwnd, insertAfter,
		0, 0, 0, 0,
		swpNoMove|swpNoSize|swpNoActivate,
	)
	if ret == 0 {
		return err
	}
	return nil
}

func showWithoutActivating(hwnd uintptr) {
	procShowWindow.Call(hwnd, swShowNA)
}

func sendShellRebuildMessage(progman uintptr) {
	var result uintptr
	procSendMessageTimeoutW.Call(
		progman, shellRebuildMessage, 0, 0,
		smtoAbortIfHung, smtoTimeoutMs,
		uintptr(unsafe.Pointer(&result)),
	)
}

// Inject dispatches to the build-appropriate injection routine and starts
// the watchdog on success. It always stops any prior watchdog and sleeps
// restartSettleDelay before proceeding, per spec.
func Inject(host uintptr, build shelltopo.WindowsBuild, anchors shelltopo.ShellAnchors) (*Watchdog, error) {
	StopWatchdog()
	time.Sleep(restartSettleDelay)

	var err error
	if build.IsModernShell() {
		err = InjectModern(host, anchors)
	} else {
		err = InjectLegacy(host, &anchors)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("inject: host window 0x%X injected (build=%s)", host, build)
	return startWatchdog(host, build, anchors), nil
}

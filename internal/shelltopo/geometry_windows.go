//go:build windows

package shelltopo

import (
	"syscall"
	"unsafe"
)

const (
	smXVirtualScreen  = 76
	smYVirtualScreen  = 77
	smCXVirtualScreen = 78
	smCYVirtualScreen = 79
)

var procGetSystemMetrics = modUser32.NewProc("GetSystemMetrics")

// DesktopGeometry is the bounding rectangle of the virtual desktop, in
// physical pixels. OriginX/OriginY may be negative on multi-monitor
// layouts where a monitor extends left of or above the primary.
type DesktopGeometry struct {
	OriginX int
	OriginY int
	Width   int
	Height  int
}

// ProbeGeometry computes the virtual desktop rectangle from the system
// metrics for the virtual screen. It is recomputed at injection time and
// is not cached across re-injections.
func ProbeGeometry() DesktopGeometry {
	return DesktopGeometry{
		OriginX: int(getSystemMetric(smXVirtualScreen)),
		OriginY: int(getSystemMetric(smYVirtualScreen)),
		Width:   int(getSystemMetric(smCXVirtualScreen)),
		Height:  int(getSystemMetric(smCYVirtualScreen)),
	}
}

func getSystemMetric(index int) int32 {
	ret, _, _ := procGetSystemMetrics.Call(uintptr(index))
	return int32(ret)
}

type rect struct {
	Left, Top, Right, Bottom int32
}

var procGetWindowRect = modUser32.NewProc("GetWindowRect")

// WindowRect returns the current screen rectangle of hwnd, used by the
// Injection Engine to re-read the shell root's actual dimensions
// immediately before its final resize (see SPEC_FULL.md §4, "Supplemented
// features").
func WindowRect(hwnd uintptr) (width, height int, err error) {
	var r rect
	ret, _, e := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&r)))
	if ret == 0 {
		return 0, 0, e
	}
	return int(r.Right - r.Left), int(r.Bottom - r.Top), nil
}

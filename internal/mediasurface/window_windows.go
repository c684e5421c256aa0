//go:build windows

package mediasurface

import (
	"fmt"
	"sync"
	"syscall"
	"unsafe"

	"github.com/dixieflatline76/Spice/internal/shelltopo"
)

var (
	modUser32                 = syscall.NewLazyDLL("user32.dll")
	procRegisterClassExW      = modUser32.NewProc("RegisterClassExW")
	procCreateWindowExW       = modUser32.NewProc("CreateWindowExW")
	procDefWindowProcW        = modUser32.NewProc("DefWindowProcW")
	procDestroyWindow         = modUser32.NewProc("DestroyWindow")
	procPostQuitMessage       = modUser32.NewProc("PostQuitMessage")
	procSetLayeredWindowAttrs = modUser32.NewProc("SetLayeredWindowAttributes")
	procSetWindowPos          = modUser32.NewProc("SetWindowPos")
	modKernel32               = syscall.NewLazyDLL("kernel32.dll")
	procGetModuleHandleW      = modKernel32.NewProc("GetModuleHandleW")
)

const (
	className = "ColorWallHostWindow"

	wsPopup = 0x80000000

	wsExLayered        = 0x00080000
	wsExTransparent    = 0x00000020
	wsExToolWindow     = 0x00000080
	wsExNoActivate     = 0x08000000
	wsExNoParentNotify = 0x00000004

	wmActivate       = 0x0006
	wmMouseActivate  = 0x0021
	wmSetFocus       = 0x0007
	wmSetCursor      = 0x0020
	wmEraseBkgnd     = 0x0014
	wmNCHitTest      = 0x0084
	wmDestroy        = 0x0002

	maNoActivateAndEat = 4
	htTransparent      = -1

	lwaAlpha = 0x2
	opaque   = 255

	hwndBottom    = 1
	swpNoMove     = 0x0002
	swpNoSize     = 0x0001
	swpNoActivate = 0x0010
	swpHideWindow = 0x0080
)

var (
	classOnce       sync.Once
	classRegistered bool
	wndProcCallback = syscall.NewCallback(hostWndProc)
)

type wndClassExW struct {
	cbSize        uint32
	style         uint32
	lpfnWndProc   uintptr
	cbClsExtra    int32
	cbWndExtra    int32
	hInstance     uintptr
	hIcon         uintptr
	hCursor       uintptr
	hbrBackground uintptr
	lpszMenuName  *uint16
	lpszClassName *uint16
	hIconSm       uintptr
}

// hostWndProc swallows activation, hit-testing, focus, cursor, and
// erase-background messages so the host window is entirely inert; WM_DESTROY
// posts a quit message. Everything else gets the default behavior.
func hostWndProc(hwnd uintptr, msg uint32, wparam, lparam uintptr) uintptr {
	switch msg {
	case wmMouseActivate:
		return maNoActivateAndEat
	case wmNCHitTest:
		return uintptr(htTransparent)
	case wmActivate, wmSetFocus, wmSetCursor, wmEraseBkgnd:
		return 1
	case wmDestroy:
		procPostQuitMessage.Call(0)
		return 0
	}
	ret, _, _ := procDefWindowProcW.Call(hwnd, uintptr(msg), wparam, lparam)
	return ret
}

func registerHostWindowClass() error {
	var outerErr error
	classOnce.Do(func() {
		hInstance, _, _ := procGetModuleHandleW.Call(0)
		namePtr, err := syscall.UTF16PtrFromString(className)
		if err != nil {
			outerErr = err
			return
		}

		wc := wndClassExW{
			lpfnWndProc:   wndProcCallback,
			hInstance:     hInstance,
			lpszClassName: namePtr,
		}
		wc.cbSize = uint32(unsafe.Sizeof(wc))

		atom, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc)))
		if atom == 0 {
			outerErr = fmt.Errorf("RegisterClassExW failed: %w", err)
			return
		}
		classRegistered = true
	})
	if !classRegistered {
		return outerErr
	}
	return nil
}

// createHostWindow creates the side-car's host window at the given size,
// with extended style selected by the running Windows build: Windows 11
// 24H2+ requires the layered bit for the raised-desktop composition to
// accept an embedded surface; older builds use a transparent click-through
// style instead.
func createHostWindow(build shelltopo.WindowsBuild, width, height int) (uintptr, error) {
	if err := registerHostWindowClass(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrHostWindowCreationFailed, err)
	}

	exStyle := uintptr(wsExTransparent | wsExToolWindow | wsExNoActivate | wsExNoParentNotify)
	if build == shelltopo.Windows1124H2Plus {
		exStyle = wsExLayered | wsExToolWindow | wsExNoActivate | wsExNoParentNotify
	}

	namePtr, _ := syscall.UTF16PtrFromString(className)
	titlePtr, _ := syscall.UTF16PtrFromString("ColorWall Video Surface")

	hwnd, _, err := procCreateWindowExW.Call(
		exStyle,
		uintptr(unsafe.Pointer(namePtr)),
		uintptr(unsafe.Pointer(titlePtr)),
		wsPopup,
		0, 0, uintptr(width), uintptr(height),
		0, 0, 0, 0,
	)
	if hwnd == 0 {
		return 0, fmt.Errorf("%w: CreateWindowExW: %v", ErrHostWindowCreationFailed, err)
	}

	if build == shelltopo.Windows1124H2Plus {
		ret, _, err := procSetLayeredWindowAttrs.Call(hwnd, 0, opaque, lwaAlpha)
		if ret == 0 {
			return 0, fmt.Errorf("%w: SetLayeredWindowAttributes: %v", ErrHostWindowCreationFailed, err)
		}
	}

	procSetWindowPos.Call(hwnd, hwndBottom, 0, 0, 0, 0,
		swpNoMove|swpNoSize|swpNoActivate|swpHideWindow)

	return hwnd, nil
}

func destroyHostWindow(hwnd uintptr) {
	if hwnd != 0 {
		procDestroyWindow.Call(hwnd)
	}
}

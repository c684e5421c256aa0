//go:build windows

package shelltopo

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/dixieflatline76/Spice/util/log"
)

var (
	modNtdll         = windows.NewLazySystemDLL("ntdll.dll")
	procRtlGetVersion = modNtdll.NewProc("RtlGetVersion")
)

// osVersionInfoEx mirrors RTL_OSVERSIONINFOEXW. Only the leading fields are
// read; the struct must still match the OS's expected size.
type osVersionInfoEx struct {
	dwOSVersionInfoSize uint32
	dwMajorVersion      uint32
	dwMinorVersion      uint32
	dwBuildNumber       uint32
	dwPlatformId        uint32
	szCSDVersion        [128]uint16
	wServicePackMajor   uint16
	wServicePackMinor   uint16
	wSuiteMask          uint16
	wProductType        byte
	wReserved           byte
}

var (
	classifyOnce   sync.Once
	cachedBuild    WindowsBuild
	cachedBuildNum uint32
)

// Classify returns the cached WindowsBuild classification, resolving it via
// the kernel-level RtlGetVersion on first use. RtlGetVersion is used
// instead of GetVersionEx because the latter is subject to the
// application-compatibility shim and can misreport the real build number.
func Classify() WindowsBuild {
	classifyOnce.Do(func() {
		build, err := rtlGetVersionBuild()
		if err != nil {
			log.Printf("shelltopo: RtlGetVersion failed, defaulting to Unknown: %v", err)
			cachedBuild = Unknown
			return
		}
		cachedBuildNum = build
		cachedBuild = classify(build)
		log.Printf("shelltopo: classified Windows build %d as %s", build, cachedBuild)
	})
	return cachedBuild
}

func rtlGetVersionBuild() (uint32, error) {
	var info osVersionInfoEx
	info.dwOSVersionInfoSize = uint32(unsafe.Sizeof(info))

	r0, _, _ := procRtlGetVersion.Call(uintptr(unsafe.Pointer(&info)))
	// RtlGetVersion always returns STATUS_SUCCESS (0).
	if r0 != 0 {
		return 0, windows.Errno(r0)
	}
	return info.dwBuildNumber, nil
}

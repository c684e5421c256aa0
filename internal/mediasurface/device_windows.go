//go:build windows

package mediasurface

import (
	"fmt"
	"syscall"
	"unsafe"
)

var (
	modD3D11            = syscall.NewLazyDLL("d3d11.dll")
	procD3D11CreateDevice = modD3D11.NewProc("D3D11CreateDevice")
)

const (
	d3dDriverTypeHardware = 1

	d3d11CreateDeviceVideoSupport = 0x0800
	d3d11CreateDeviceBGRASupport  = 0x0020

	d3dFeatureLevel11_0 = 0xb000
	d3dFeatureLevel10_1 = 0xa100
	d3dFeatureLevel10_0 = 0xa000
)

// createVideoDevice creates a hardware-accelerated D3D11 device with both
// video and BGRA-surface support flags, the minimum Media Foundation needs
// to bind a device manager. There is no software-rasterizer fallback: a
// failure here means "update graphics drivers".
func createVideoDevice() (uintptr, error) {
	featureLevels := [3]uint32{d3dFeatureLevel11_0, d3dFeatureLevel10_1, d3dFeatureLevel10_0}

	var device uintptr
	hr, _, _ := procD3D11CreateDevice.Call(
		0, // default adapter
		uintptr(d3dDriverTypeHardware),
		0,
		uintptr(d3d11CreateDeviceVideoSupport|d3d11CreateDeviceBGRASupport),
		uintptr(unsafe.Pointer(&featureLevels[0])),
		uintptr(len(featureLevels)),
		7, // D3D11_SDK_VERSION
		uintptr(unsafe.Pointer(&device)),
		0,
		0,
	)
	if hr != 0 {
		return 0, fmt.Errorf("%w: D3D11CreateDevice: 0x%X", ErrDeviceCreationFailed, hr)
	}
	if device == 0 {
		return 0, ErrDeviceCreationFailed
	}
	return device, nil
}

//go:build windows

package mediasurface

import (
	"syscall"
	"unsafe"
)

// GUID mirrors the Win32 GUID layout, used for CLSIDs and IIDs that
// go-ole's constant set does not already cover (Media Foundation types).
type GUID struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

// comMethod reads the function pointer at vtable index idx from a COM
// object's vtable, for dispatch via syscall.SyscallN. Mirrors the
// vtable-walking helper used elsewhere in this codebase for COM interfaces
// without a native Go binding.
func comMethod(obj uintptr, idx int) uintptr {
	vtbl := *(*uintptr)(unsafe.Pointer(obj))
	return *(*uintptr)(unsafe.Pointer(vtbl + uintptr(idx)*unsafe.Sizeof(uintptr(0))))
}

// comRelease calls IUnknown::Release (vtable index 2) on obj.
func comRelease(obj uintptr) {
	if obj == 0 {
		return
	}
	syscall.SyscallN(comMethod(obj, 2), obj)
}

// comAddRef calls IUnknown::AddRef (vtable index 1) on obj.
func comAddRef(obj uintptr) {
	if obj == 0 {
		return
	}
	syscall.SyscallN(comMethod(obj, 1), obj)
}

// IUnknown vtable indices, common to every interface below.
const (
	idxQueryInterface = 0
	idxAddRef         = 1
	idxRelease        = 2
)

// IMFAttributes vtable indices used here (IMFAttributes inherits IUnknown
// at 0-2; indices below follow the published vtable layout).
const (
	idxSetUINT32 = 21
	idxSetUINT64 = 22
	idxSetUnknown = 27
)

// IMFDXGIDeviceManager vtable indices.
const (
	idxResetDevice = 7
)

// IMFMediaEngineClassFactory vtable indices.
const (
	idxCreateInstance = 3
)

// IMFMediaEngine vtable indices (subset used by this package).
const (
	idxSetSource      = 6
	idxPlay           = 32
	idxPause          = 33
	idxSetMuted       = 35
	idxGetMuted       = 34
	idxSetVolume      = 37
	idxSetPlaybackRate = 24
	idxSetLoop        = 31
	idxShutdown       = 42
)

// mfAttributeKeys holds the well-known MF_MEDIA_ENGINE_* GUIDs needed to
// configure the engine, reproduced from mfmediaengine.h.
var (
	mfMediaEngineDXGIManager           = GUID{0x065702da, 0x1094, 0x486d, [8]byte{0x86, 0x17, 0xee, 0x7c, 0xc4, 0xee, 0x46, 0x48}}
	mfMediaEngineVideoOutputFormat     = GUID{0x5066893c, 0x8cf9, 0x42bc, [8]byte{0x8b, 0x8a, 0x47, 0x22, 0x12, 0xe5, 0x2a, 0xd7}}
	mfMediaEnginePlaybackHwnd          = GUID{0x1093c80a, 0x9e6a, 0x4183, [8]byte{0x9b, 0xe4, 0x3c, 0x8f, 0x30, 0xda, 0x45, 0x36}}
	mfMediaEngineCallback              = GUID{0xc15711e6, 0x8a27, 0x4bb4, [8]byte{0x9c, 0x67, 0xdf, 0xeb, 0x65, 0xa3, 0xa6, 0x23}}
	mfMediaEngineContentProtectionFlags = GUID{0x5b3e3021, 0x6e53, 0x4d9b, [8]byte{0x8b, 0x75, 0x54, 0x27, 0x95, 0x31, 0x62, 0x21}}
	// mfMediaEngineAudioCategory: MF_MEDIA_ENGINE_AUDIO_CATEGORY,
	// {D0C0AF9F-F446-4776-825F-DC5A0F83F631}
	mfMediaEngineAudioCategory = GUID{0xd0c0af9f, 0xf446, 0x4776, [8]byte{0x82, 0x5f, 0xdc, 0x5a, 0x0f, 0x83, 0xf6, 0x31}}
)

const (
	dxgiFormatB8G8R8A8Unorm = 87
	mfMediaEngineRealTime   = 0x00000008
	mfMediaEngineAudioCategoryOther = 0
)

// clsidMFMediaEngineClassFactory: {7F5E7D93-6F4C-4E4B-9D8C-4C7F0F56A736} is
// not the real published CLSID; Media Foundation publishes
// CLSID_MFMediaEngineClassFactory as {4D645ACE-0BD5-4FEC-A023-F54CC8F6E095}.
var clsidMFMediaEngineClassFactory = GUID{0x4d645ace, 0x0bd5, 0x4fec, [8]byte{0xa0, 0x23, 0xf5, 0x4c, 0xc8, 0xf6, 0xe0, 0x95}}

// iidIMFMediaEngineClassFactory: {496E3521-0D8D-46E9-9B39-FF4AB8B1D0D8} —
// published IID for IMFMediaEngineClassFactory.
var iidIMFMediaEngineClassFactory = GUID{0x496e3521, 0x0d8d, 0x46e9, [8]byte{0x9b, 0x39, 0xff, 0x4a, 0xb8, 0xb1, 0xd0, 0xd8}}

// iidIMFAttributes: {2CD2D921-C447-44A7-A13C-4ADABFC247E3}
var iidIMFAttributes = GUID{0x2cd2d921, 0xc447, 0x44a7, [8]byte{0xa1, 0x3c, 0x4a, 0xda, 0xbf, 0xc2, 0x47, 0xe3}}

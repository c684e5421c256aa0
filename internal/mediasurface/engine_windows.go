//go:build windows

package mediasurface

import (
	"fmt"
	"strings"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"github.com/go-ole/go-ole"

	"github.com/dixieflatline76/Spice/internal/shelltopo"
	"github.com/dixieflatline76/Spice/util/log"
)

var (
	modMfplat              = syscall.NewLazyDLL("mfplat.dll")
	procMFStartup          = modMfplat.NewProc("MFStartup")
	procMFShutdown         = modMfplat.NewProc("MFShutdown")
	procMFCreateAttributes = modMfplat.NewProc("MFCreateAttributes")

	modMfsrcsnk                  = syscall.NewLazyDLL("mf.dll")
	procMFCreateDXGIDeviceManager = modMfsrcsnk.NewProc("MFCreateDXGIDeviceManager")
)

const mfSdkVersion = 0x0002<<16 | 0x0070 // MF_SDK_VERSION / MF_API_VERSION packed, per mfapi.h convention
const loadSettleDelay = 150 * time.Millisecond

// wmfSurface is the Windows implementation of Surface, built on Media
// Foundation's hardware media engine. Exactly one wmfSurface is live per
// side-car process; the package enforces this with a single in-flight
// notify sink (see notifySink below).
type wmfSurface struct {
	mu       sync.Mutex
	hwnd     uintptr
	device   uintptr
	devMgr   uintptr
	engine   uintptr
	notify   *notifySink
	loaded   bool
}

// New constructs the host window, the hardware device, the device-manager
// bridge, and the media engine, in that order: the window must exist
// before the engine is built because the engine attributes embed its
// handle, and the device must outlive the engine.
func New(build shelltopo.WindowsBuild, width, height int) (Surface, error) {
	if err := initApartmentAndMF(); err != nil {
		return nil, err
	}

	hwnd, err := createHostWindow(build, width, height)
	if err != nil {
		return nil, err
	}

	device, err := createVideoDevice()
	if err != nil {
		destroyHostWindow(hwnd)
		return nil, err
	}

	devMgr, err := createDXGIDeviceManager(device)
	if err != nil {
		destroyHostWindow(hwnd)
		return nil, err
	}

	sink := newNotifySink()

	engine, err := createMediaEngine(devMgr, hwnd, sink)
	if err != nil {
		sink.release()
		destroyHostWindow(hwnd)
		return nil, err
	}

	log.Printf("mediasurface: engine ready, hwnd=0x%X size=%dx%d", hwnd, width, height)

	return &wmfSurface{
		hwnd:   hwnd,
		device: device,
		devMgr: devMgr,
		engine: engine,
		notify: sink,
	}, nil
}

var (
	mfInitOnce sync.Once
	mfInitErr  error
)

// initApartmentAndMF initializes the single-threaded apartment and starts
// Media Foundation. Both are process-wide and only ever initialized once
// per side-car process.
func initApartmentAndMF() error {
	mfInitOnce.Do(func() {
		if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
			if oleErr, ok := err.(*ole.OleError); !ok || oleErr.Code() != 1 {
				mfInitErr = fmt.Errorf("CoInitializeEx: %w", err)
				return
			}
		}
		hr, _, _ := procMFStartup.Call(uintptr(mfSdkVersion), 0)
		if hr != 0 {
			mfInitErr = fmt.Errorf("MFStartup failed: 0x%X", hr)
		}
	})
	return mfInitErr
}

func (s *wmfSurface) Handle() uintptr { return s.hwnd }

// Load normalizes path into a file:// URL, passes it to the engine's
// source, then sleeps briefly to let the engine's opener complete before
// enabling loop/mute.
func (s *wmfSurface) Load(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	url := toFileURL(path)
	urlPtr, err := syscall.UTF16PtrFromString(url)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMediaLoadFailed, err)
	}

	hr, _, _ := syscall.SyscallN(comMethod(s.engine, idxSetSource), s.engine, uintptr(unsafe.Pointer(urlPtr)))
	if hr != 0 {
		return fmt.Errorf("%w: SetSource 0x%X", ErrMediaLoadFailed, hr)
	}

	time.Sleep(loadSettleDelay)

	syscall.SyscallN(comMethod(s.engine, idxSetLoop), s.engine, 1)
	syscall.SyscallN(comMethod(s.engine, idxSetMuted), s.engine, 1)
	callPlaybackRate(comMethod(s.engine, idxSetVolume), s.engine, 0)

	s.loaded = true
	return nil
}

// Play sets playback rate to 1.0 and starts the engine.
func (s *wmfSurface) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return fmt.Errorf("%w: play called before load", ErrMediaLoadFailed)
	}

	callPlaybackRate(comMethod(s.engine, idxSetPlaybackRate), s.engine, 1.0)

	hr, _, _ := syscall.SyscallN(comMethod(s.engine, idxPlay), s.engine)
	if hr != 0 {
		return fmt.Errorf("mediasurface: Play failed: 0x%X", hr)
	}
	return nil
}

// Shutdown pauses playback, shuts down the engine, destroys the window,
// and releases the OS subsystems this surface initialized. Safe to call
// at most once; a second call is a no-op.
func (s *wmfSurface) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == 0 {
		return
	}

	syscall.SyscallN(comMethod(s.engine, idxPause), s.engine)
	syscall.SyscallN(comMethod(s.engine, idxShutdown), s.engine)
	comRelease(s.engine)
	s.engine = 0

	if s.notify != nil {
		s.notify.release()
		s.notify = nil
	}

	comRelease(s.devMgr)
	s.devMgr = 0
	comRelease(s.device)
	s.device = 0

	destroyHostWindow(s.hwnd)
	s.hwnd = 0

	procMFShutdown.Call()
}

func createDXGIDeviceManager(device uintptr) (uintptr, error) {
	var devMgr uintptr
	var resetToken uint32
	hr, _, _ := procMFCreateDXGIDeviceManager.Call(
		uintptr(unsafe.Pointer(&resetToken)),
		uintptr(unsafe.Pointer(&devMgr)),
	)
	if hr != 0 {
		return 0, fmt.Errorf("%w: MFCreateDXGIDeviceManager: 0x%X", ErrEngineCreationFailed, hr)
	}

	hr, _, _ = syscall.SyscallN(comMethod(devMgr, idxResetDevice), devMgr, device, uintptr(resetToken))
	if hr != 0 {
		comRelease(devMgr)
		return 0, fmt.Errorf("%w: IMFDXGIDeviceManager.ResetDevice: 0x%X", ErrEngineCreationFailed, hr)
	}
	return devMgr, nil
}

// createMediaEngine builds the IMFAttributes bag (device manager, output
// format, playback hwnd, callback, content protection, audio category),
// then instantiates the engine in real-time mode.
func createMediaEngine(devMgr, hwnd uintptr, sink *notifySink) (uintptr, error) {
	var attrs uintptr
	hr, _, _ := procMFCreateAttributes.Call(uintptr(unsafe.Pointer(&attrs)), 6)
	if hr != 0 {
		return 0, fmt.Errorf("%w: MFCreateAttributes: 0x%X", ErrEngineCreationFailed, hr)
	}
	defer comRelease(attrs)

	setUnknown(attrs, &mfMediaEngineDXGIManager, devMgr)
	setUINT64(attrs, &mfMediaEngineVideoOutputFormat, dxgiFormatB8G8R8A8Unorm)
	setUINT64(attrs, &mfMediaEnginePlaybackHwnd, uint64(hwnd))
	setUnknown(attrs, &mfMediaEngineCallback, sink.comPtr())
	setUINT32(attrs, &mfMediaEngineContentProtectionFlags, 0)
	setUINT32(attrs, &mfMediaEngineAudioCategory, mfMediaEngineAudioCategoryOther)

	factory, err := createClassFactory()
	if err != nil {
		return 0, err
	}
	defer comRelease(factory)

	var engine uintptr
	hr, _, _ = syscall.SyscallN(
		comMethod(factory, idxCreateInstance),
		factory, uintptr(mfMediaEngineRealTime), attrs, uintptr(unsafe.Pointer(&engine)),
	)
	if hr != 0 {
		return 0, fmt.Errorf("%w: IMFMediaEngineClassFactory.CreateInstance: 0x%X", ErrEngineCreationFailed, hr)
	}
	return engine, nil
}

func createClassFactory() (uintptr, error) {
	unk, err := ole.CreateInstance(toOleGUID(clsidMFMediaEngineClassFactory), toOleGUID(iidIMFMediaEngineClassFactory))
	if err != nil {
		return 0, fmt.Errorf("%w: CoCreateInstance(MFMediaEngineClassFactory): %v", ErrEngineCreationFailed, err)
	}
	return uintptr(unsafe.Pointer(unk)), nil
}

func setUnknown(attrs uintptr, key *GUID, value uintptr) {
	syscall.SyscallN(comMethod(attrs, idxSetUnknown), attrs, uintptr(unsafe.Pointer(key)), value)
}

func setUINT32(attrs uintptr, key *GUID, value uint32) {
	syscall.SyscallN(comMethod(attrs, idxSetUINT32), attrs, uintptr(unsafe.Pointer(key)), uintptr(value))
}

func setUINT64(attrs uintptr, key *GUID, value uint64) {
	syscall.SyscallN(comMethod(attrs, idxSetUINT64), attrs, uintptr(unsafe.Pointer(key)), uintptr(value))
}

func toOleGUID(g GUID) *ole.GUID {
	return &ole.GUID{Data1: g.Data1, Data2: g.Data2, Data3: g.Data3, Data4: g.Data4}
}

// toFileURL strips any extended-length prefix, normalizes separators, and
// wraps path as a file:/// URL.
func toFileURL(path string) string {
	p := strings.TrimPrefix(path, `\\?\`)
	p = strings.ReplaceAll(p, `\`, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "file://" + p
}

// callPlaybackRate invokes fn(this, rate), an IMFMediaEngine::SetPlaybackRate-
// shaped vtable method taking a double by value. The Win64 calling
// convention passes a double argument in XMM1, not a general-purpose
// register, so syscall.SyscallN (which only ever populates RCX/RDX/R8/R9)
// cannot make this call correctly; the trampoline in
// playbackrate_windows.s loads rate into XMM1 directly before calling fn.
func callPlaybackRate(fn, this uintptr, rate float64) uintptr

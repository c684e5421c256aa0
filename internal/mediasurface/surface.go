// Package mediasurface produces a window whose client area is continuously
// filled by the decoded frames of a local media file, using hardware
// acceleration, with no user-visible controls, no focus grab, no audio,
// and no taskbar presence.
package mediasurface

import "errors"

// ErrHostWindowCreationFailed is returned when the private window class or
// the host window itself could not be created.
var ErrHostWindowCreationFailed = errors.New("mediasurface: host window creation failed")

// ErrDeviceCreationFailed is returned when the hardware-accelerated
// graphics device could not be created. There is no software fallback.
var ErrDeviceCreationFailed = errors.New("mediasurface: graphics device creation failed, update graphics drivers")

// ErrEngineCreationFailed is returned when the media engine or any of its
// supporting COM objects could not be constructed.
var ErrEngineCreationFailed = errors.New("mediasurface: media engine creation failed")

// ErrMediaLoadFailed is returned when the source file is rejected by the
// media pipeline (missing file, unsupported codec, bad path).
var ErrMediaLoadFailed = errors.New("mediasurface: media load failed")

// Surface is a hardware-accelerated, borderless, input-inert window that
// plays a single local video file on loop, muted, with no transport
// controls beyond Play and Shutdown. Exactly one Surface is live per
// side-car process.
type Surface interface {
	// Handle returns the OS handle of the host window, for use by the
	// Injection Engine. It is stable for the Surface's lifetime.
	Handle() uintptr
	// Load prepares path for playback. It does not check the file's
	// extension or existence; the playback controller rejects other
	// extensions and missing files before spawning the side-car.
	Load(path string) error
	// Play starts looped, muted playback at normal speed.
	Play() error
	// Shutdown pauses playback, releases the media engine, and destroys
	// the host window. Safe to call at most once.
	Shutdown()
}

// SupportedExtensions lists the file extensions the side-car accepts.
var SupportedExtensions = map[string]bool{
	".mp4": true,
	".mkv": true,
}

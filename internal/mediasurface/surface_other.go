//go:build !windows

package mediasurface

import (
	"fmt"
	"os/exec"
	"strconv"
	"sync"

	"github.com/dixieflatline76/Spice/internal/shelltopo"
	"github.com/dixieflatline76/Spice/util/log"
)

// mpvSurface wraps an external mpv process rendering into its own
// borderless, geometry-placed window, for the non-Windows fallback path
// named in SPEC_FULL.md §4. It satisfies the same Surface contract as the
// Windows Media Foundation implementation so Controller and
// cmd/wallpaper-player build and are testable on any GOOS. Unlike the
// Windows path, this window is never embedded behind the desktop icons:
// the pack carries no X11 embedding library to build that on; this is not
// the core injection/media path the specification concentrates on.
type mpvSurface struct {
	mu     sync.Mutex
	cmd    *exec.Cmd
	width  int
	height int
}

// New constructs the non-Windows Surface. The build argument is accepted
// for interface parity with the Windows constructor but unused: there is
// no shell hierarchy to classify outside Windows.
func New(_ shelltopo.WindowsBuild, width, height int) (Surface, error) {
	return &mpvSurface{width: width, height: height}, nil
}

func (s *mpvSurface) Handle() uintptr { return 0 }

func (s *mpvSurface) Load(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cmd = exec.Command("mpv",
		"--volume=0",
		"--loop-file",
		"--keep-open",
		"--no-border",
		"--no-osc",
		"--cursor-autohide=no",
		"--input-default-bindings=no",
		fmt.Sprintf("--geometry=%dx%d+0+0", s.width, s.height),
		path,
	)
	return nil
}

func (s *mpvSurface) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd == nil {
		return fmt.Errorf("%w: play called before load", ErrMediaLoadFailed)
	}
	if err := s.cmd.Start(); err != nil {
		return fmt.Errorf("%w: mpv: %v", ErrEngineCreationFailed, err)
	}
	log.Printf("mediasurface: mpv started, pid=%s", strconv.Itoa(s.cmd.Process.Pid))
	return nil
}

func (s *mpvSurface) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd == nil || s.cmd.Process == nil {
		return
	}
	_ = s.cmd.Process.Kill()
	s.cmd = nil
}

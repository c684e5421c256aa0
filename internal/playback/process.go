package playback

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dixieflatline76/Spice/util/log"
)

// stopSettleDelay is slept after killing the side-car, to let the OS
// unparent and destroy its child windows before the caller proceeds.
const stopSettleDelay = 200 * time.Millisecond

// sidecar tracks the single side-car process this controller owns. Only
// one side-car is ever alive at a time; Spawn always stops a prior one
// first.
type sidecar struct {
	mu      sync.Mutex
	cmd     *exec.Cmd
	spawnID string
}

func sidecarBinaryName() string {
	if os.PathSeparator == '\\' {
		return "wallpaper-player.exe"
	}
	return "wallpaper-player"
}

// sidecarPath locates the side-car executable next to the controller's own
// executable.
func sidecarPath() (string, error) {
	exePath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("playback: failed to resolve own executable path: %w", err)
	}
	path := filepath.Join(filepath.Dir(exePath), sidecarBinaryName())
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("playback: side-car binary not found at %s: %w", path, err)
	}
	return path, nil
}

// Spawn stops any previously running side-car, then launches a new one
// with the given file path and dimensions.
func (s *sidecar) Spawn(videoPath string, width, height int) error {
	s.Stop()

	binPath, err := sidecarPath()
	if err != nil {
		return err
	}

	id := uuid.NewString()
	cmd := exec.Command(binPath, videoPath, fmt.Sprintf("%d", width), fmt.Sprintf("%d", height))
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("playback: failed to spawn side-car: %w", err)
	}

	s.mu.Lock()
	s.cmd = cmd
	s.spawnID = id
	s.mu.Unlock()

	log.Printf("playback: side-car spawned pid=%d spawn=%s file=%s size=%dx%d", cmd.Process.Pid, id, videoPath, width, height)

	go s.watchEarlyExit(cmd, id)
	return nil
}

// watchEarlyExit logs a side-car that exits within 3s of spawn. It does
// nothing else: Set has already returned success by then, and the
// persisted state still records the wallpaper as active.
func (s *sidecar) watchEarlyExit(cmd *exec.Cmd, id string) {
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		log.Printf("playback: side-car spawn=%s exited early: %v", id, err)
	case <-time.After(3 * time.Second):
	}
}

// Stop kills the side-car process, if any, and waits briefly for cleanup.
// Fire-and-forget: there is no wait timeout, since the OS destroys the
// side-car's child windows on process death regardless of how the kill
// itself completed.
func (s *sidecar) Stop() {
	s.mu.Lock()
	cmd := s.cmd
	s.cmd = nil
	s.spawnID = ""
	s.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return
	}

	log.Printf("playback: stopping side-car pid=%d", cmd.Process.Pid)
	if err := cmd.Process.Kill(); err != nil {
		forceKill(cmd.Process.Pid)
	}
	time.Sleep(stopSettleDelay)
}

// IsRunning reports whether a side-car process is currently tracked.
func (s *sidecar) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd != nil
}

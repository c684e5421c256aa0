package playback

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dixieflatline76/Spice/internal/mediasurface"
	"github.com/dixieflatline76/Spice/internal/shelltopo"
	"github.com/dixieflatline76/Spice/util/log"
)

// heartbeatInterval is how often the active-state heartbeat rewrites the
// persisted record, guarding against a crash-before-save. Overridable via
// an optional tuning file; see tuning.go.
var heartbeatInterval = 30 * time.Second

// restoreSettleDelay is the small delay before RestoreOnStartup re-invokes
// Set, taken from the original implementation's 800ms sleep before
// re-establishing the wallpaper. Overridable via an optional tuning file.
var restoreSettleDelay = 800 * time.Millisecond

// Controller supervises the side-car playback process and the persisted
// wallpaper state. One Controller exists per application instance.
type Controller struct {
	mu         sync.Mutex
	sc         sidecar
	downloader Downloader
	cancelHB   context.CancelFunc
}

var (
	instance     *Controller
	instanceOnce sync.Once
)

// Get returns the process-wide Controller singleton.
func Get() *Controller {
	instanceOnce.Do(func() {
		applyTuning()
		instance = &Controller{}
	})
	return instance
}

// SetDownloader installs the extension point used by RestoreOnStartup when
// the persisted local file is missing but an original URL is known.
func (c *Controller) SetDownloader(d Downloader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.downloader = d
}

// Set validates path's extension and existence, stops any running side-car,
// computes the virtual desktop geometry, spawns the side-car, and only then
// persists the new state — spawn-then-persist, never the reverse, so a
// crash mid-call never leaves a persisted record pointing at a side-car
// that never started. A missing path is rejected before anything running
// is touched, so a failed Set leaves the previous wallpaper (if any) alone.
func (c *Controller) Set(path string, originalURL *string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !mediasurface.SupportedExtensions[ext] {
		return fmt.Errorf("playback: unsupported extension %q, use .mp4 or .mkv", ext)
	}

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s: %v", mediasurface.ErrMediaLoadFailed, path, err)
	}

	geom := shelltopo.ProbeGeometry()

	if err := c.sc.Spawn(path, geom.Width, geom.Height); err != nil {
		return err
	}

	now := time.Now().Unix()
	state := &State{
		IsActive:    true,
		VideoPath:   strPtr(path),
		VideoURL:    strPtr("file://" + filepath.ToSlash(path)),
		OriginalURL: originalURL,
		SetAt:       int64Ptr(now),
	}
	if err := SaveState(state); err != nil {
		log.Printf("playback: %v", err)
	}

	c.ensureHeartbeat()
	return nil
}

// Stop kills the side-car and persists is_active=false while retaining
// source_url/set_at for a later restoration attempt.
func (c *Controller) Stop() error {
	c.sc.Stop()
	c.stopHeartbeat()

	prev, _ := LoadState()
	state := &State{IsActive: false}
	if prev != nil {
		state.OriginalURL = prev.OriginalURL
		state.SetAt = prev.SetAt
	}
	if err := SaveState(state); err != nil {
		log.Printf("playback: %v", err)
		return err
	}
	return nil
}

// Status returns the current persisted state, or a zero-value inactive
// state if none has ever been written.
func (c *Controller) Status() State {
	s, _ := LoadState()
	if s == nil {
		return State{}
	}
	return *s
}

// RestoreOnStartup reads the persisted state after a small settle delay
// and best-effort re-invokes Set. If the local path still exists, it is
// used directly; otherwise, if an original URL is known and a Downloader
// is installed, the file is re-fetched. Any failure along the way clears
// is_active and stops — restoration never retries beyond this single
// attempt, so a poisonous persisted state can never cause a startup loop.
func (c *Controller) RestoreOnStartup(ctx context.Context) error {
	time.Sleep(restoreSettleDelay)

	s, _ := LoadState()
	if s == nil || !s.IsActive {
		return nil
	}

	if s.VideoPath != nil {
		if err := c.Set(*s.VideoPath, s.OriginalURL); err == nil {
			return nil
		}
		log.Printf("playback: restore from saved path %s failed, falling back to original url", *s.VideoPath)
	}

	if s.OriginalURL != nil {
		c.mu.Lock()
		dl := c.downloader
		c.mu.Unlock()

		if dl != nil {
			path, err := dl.Download(ctx, *s.OriginalURL)
			if err == nil {
				if err := c.Set(path, s.OriginalURL); err == nil {
					return nil
				}
			} else {
				log.Printf("playback: re-download from %s failed: %v", *s.OriginalURL, err)
			}
		}
	}

	log.Printf("playback: no valid path or original url to restore from, clearing state")
	return SaveState(&State{IsActive: false})
}

func (c *Controller) ensureHeartbeat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelHB != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelHB = cancel

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if s, _ := LoadState(); s != nil && s.IsActive {
					_ = SaveState(s)
				}
			}
		}
	})
}

func (c *Controller) stopHeartbeat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelHB != nil {
		c.cancelHB()
		c.cancelHB = nil
	}
}

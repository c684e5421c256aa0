// Package playback supervises the side-car playback process (spawn/kill)
// and persists active-wallpaper state to disk, restoring it at startup.
package playback

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dixieflatline76/Spice/config"
)

// ErrPersistFailed wraps a disk-write failure for the persisted state. The
// wallpaper keeps running; the failure is only logged by the caller.
var ErrPersistFailed = errors.New("playback: failed to persist wallpaper state")

// State is the on-disk record of the active video wallpaper. Field names
// use camelCase JSON tags per the external schema.
type State struct {
	IsActive    bool    `json:"isActive"`
	VideoPath   *string `json:"videoPath,omitempty"`
	VideoURL    *string `json:"videoUrl,omitempty"`
	OriginalURL *string `json:"originalUrl,omitempty"`
	SetAt       *int64  `json:"setAt,omitempty"`
}

func statePath() (string, error) {
	dir, err := config.AppDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, config.WallpaperStateFile), nil
}

// LoadState reads the persisted state file. A missing file or any read/parse
// error returns (nil, nil): callers must treat "no prior state" the same as
// "can't tell" and restore nothing, never loop on a poisonous file.
func LoadState() (*State, error) {
	path, err := statePath()
	if err != nil {
		return nil, nil //nolint:nilerr
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil //nolint:nilerr
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, nil //nolint:nilerr
	}
	return &s, nil
}

// SaveState writes the state file, creating its parent directory if
// necessary. MarshalIndent/WriteFile mirrors config.Config.Save's pattern.
func SaveState(s *State) error {
	path, err := statePath()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	return nil
}

func strPtr(s string) *string { return &s }
func int64Ptr(v int64) *int64 { return &v }

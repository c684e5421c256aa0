package playback

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/dixieflatline76/Spice/config"
	"github.com/dixieflatline76/Spice/util/log"
)

// tuningFile is the optional override file read once at startup. Its
// absence is normal and silent; only a malformed file is logged.
const tuningFile = "tuning.toml"

// tuning mirrors the overridable interval knobs. Durations are expressed
// in whole seconds in the file since TOML has no native duration type.
type tuning struct {
	HeartbeatIntervalSeconds  int `toml:"heartbeat_interval_seconds"`
	RestoreSettleDelaySeconds int `toml:"restore_settle_delay_seconds"`
}

// applyTuning reads an optional tuning file from the app data directory
// and overrides the package-level interval variables. Called once at
// Controller construction; a missing file keeps the built-in defaults.
func applyTuning() {
	dir, err := config.AppDataDir()
	if err != nil {
		return
	}

	path := filepath.Join(dir, tuningFile)
	if _, err := os.Stat(path); err != nil {
		return
	}

	var t tuning
	if _, err := toml.DecodeFile(path, &t); err != nil {
		log.Printf("playback: ignoring malformed tuning file %s: %v", path, err)
		return
	}

	if t.HeartbeatIntervalSeconds > 0 {
		heartbeatInterval = time.Duration(t.HeartbeatIntervalSeconds) * time.Second
	}
	if t.RestoreSettleDelaySeconds > 0 {
		restoreSettleDelay = time.Duration(t.RestoreSettleDelaySeconds) * time.Second
	}
}

package config

// AppVersion is the version of the service.
var AppVersion string // Or get it from version.txt during build

// ServiceName is the name of the service.
const ServiceName = "Spice"

// EulaPreferenceKey is the key for the EULA acceptance preference.
const EULAPreferenceKey = "eula_acceptance"

// AppName is the base file name used for the rotated log file.
const AppName = "spice"

// LogExt is the extension appended to AppName for the rotated log file.
const LogExt = ".log"

// LogSubDir is the log directory, relative to the user's home directory, on
// platforms other than Windows.
const LogSubDir = "." + ServiceName + "/log"

// LogWinSubDir is the log directory, relative to the user's cache directory,
// on Windows.
const LogWinSubDir = ServiceName + "/log"

// AppDataSubDir is the directory, relative to the OS per-user application
// data directory, that holds the video wallpaper engine's persisted state.
const AppDataSubDir = "ColorWall"

// WallpaperStateFile is the file name of the persisted video wallpaper
// state, written under AppDataSubDir.
const WallpaperStateFile = "wallpaper_state.json"

// VideoCacheSubDir is the directory, under the OS temp directory, reserved
// for downloaded video files (populated by an external downloader; this
// module only reserves the name).
const VideoCacheSubDir = "wallpaper_cache"

// UserVideoSubDir is the directory, under the OS temp directory, reserved
// for user-supplied video files outside the download cache.
const UserVideoSubDir = "user_wallpapers"

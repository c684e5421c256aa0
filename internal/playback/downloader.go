package playback

import "context"

// Downloader fetches a remote video into a local file and returns its
// path. It is the extension point for restoring a wallpaper whose
// previously-local file has since been removed but whose originating URL
// is still known; this module performs no HTTP itself (download/caching of
// media files is an explicit non-goal), so a nil Downloader simply makes
// that restoration branch fail closed.
type Downloader interface {
	Download(ctx context.Context, url string) (localPath string, err error)
}

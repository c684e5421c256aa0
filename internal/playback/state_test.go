package playback

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateAppData(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("LOCALAPPDATA", dir)
}

func TestLoadStateMissingFileReturnsNilNil(t *testing.T) {
	isolateAppData(t)

	s, err := LoadState()
	assert.NoError(t, err)
	assert.Nil(t, s)
}

func TestSaveLoadStateRoundTrip(t *testing.T) {
	isolateAppData(t)

	path := "/tmp/demo.mp4"
	url := "file:///tmp/demo.mp4"
	setAt := int64(1700000000)

	original := &State{
		IsActive:  true,
		VideoPath: &path,
		VideoURL:  &url,
		SetAt:     &setAt,
	}
	require.NoError(t, SaveState(original))

	loaded, err := LoadState()
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, original.IsActive, loaded.IsActive)
	assert.Equal(t, *original.VideoPath, *loaded.VideoPath)
	assert.Equal(t, *original.VideoURL, *loaded.VideoURL)
	assert.Equal(t, *original.SetAt, *loaded.SetAt)
	assert.Nil(t, loaded.OriginalURL)
}

func TestStopRetainsOriginalURLAndSetAt(t *testing.T) {
	isolateAppData(t)

	url := "https://x/y.mp4"
	setAt := int64(1700000000)
	require.NoError(t, SaveState(&State{
		IsActive:    true,
		OriginalURL: &url,
		SetAt:       &setAt,
	}))

	prev, err := LoadState()
	require.NoError(t, err)
	require.NotNil(t, prev)

	require.NoError(t, (&Controller{}).Stop())

	reloaded, err := LoadState()
	require.NoError(t, err)
	require.NotNil(t, reloaded)

	assert.False(t, reloaded.IsActive)
	assert.Nil(t, reloaded.VideoPath)
	require.NotNil(t, reloaded.OriginalURL)
	assert.Equal(t, url, *reloaded.OriginalURL)
	require.NotNil(t, reloaded.SetAt)
	assert.Equal(t, setAt, *reloaded.SetAt)
}

func TestLoadStateMalformedFileReturnsNilNil(t *testing.T) {
	isolateAppData(t)

	path, err := statePath()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	s, err := LoadState()
	assert.NoError(t, err)
	assert.Nil(t, s)
}

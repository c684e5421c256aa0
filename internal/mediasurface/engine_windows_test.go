//go:build windows

package mediasurface

import "testing"

func TestToFileURL(t *testing.T) {
	cases := map[string]string{
		`C:\Users\me\video.mp4`:        "file:///C:/Users/me/video.mp4",
		`\\?\C:\Users\me\video.mp4`:    "file:///C:/Users/me/video.mp4",
		`/tmp/demo.mp4`:                "file:///tmp/demo.mp4",
	}
	for in, want := range cases {
		if got := toFileURL(in); got != want {
			t.Errorf("toFileURL(%q) = %q, want %q", in, got, want)
		}
	}
}

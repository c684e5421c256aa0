package mediasurface

import "testing"

func TestSupportedExtensions(t *testing.T) {
	if !SupportedExtensions[".mp4"] || !SupportedExtensions[".mkv"] {
		t.Fatalf("expected .mp4 and .mkv to be supported")
	}
	if SupportedExtensions[".avi"] {
		t.Fatalf("did not expect .avi to be supported")
	}
}

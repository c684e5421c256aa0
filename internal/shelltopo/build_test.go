package shelltopo

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		build uint32
		want  WindowsBuild
	}{
		{9200, Unknown},
		{10240, Windows10},
		{19045, Windows10},
		{22000, Windows11Pre24H2},
		{22631, Windows11Pre24H2},
		{26100, Windows1124H2Plus},
		{26200, Windows1124H2Plus},
	}

	for _, c := range cases {
		if got := classify(c.build); got != c.want {
			t.Errorf("classify(%d) = %s, want %s", c.build, got, c.want)
		}
	}
}

func TestWindowsBuildString(t *testing.T) {
	if Windows1124H2Plus.String() != "Windows1124H2Plus" {
		t.Errorf("unexpected String(): %s", Windows1124H2Plus.String())
	}
	if WindowsBuild(99).String() != "Unknown" {
		t.Errorf("expected unknown classification to stringify as Unknown")
	}
}

func TestIsModernShell(t *testing.T) {
	if Windows10.IsModernShell() {
		t.Errorf("Windows10 must not be classified as modern shell")
	}
	if !Windows11Pre24H2.IsModernShell() || !Windows1124H2Plus.IsModernShell() {
		t.Errorf("both Windows 11 variants must be classified as modern shell")
	}
}

//go:build !windows

package watching

import "testing"

func TestNormalizeWatchPathIdentity(t *testing.T) {
	paths := []string{"/tmp/project", "/var/lib/data/sub/dir", ""}
	for _, p := range paths {
		if got := string(NormalizeWatchPath(p)); got != p {
			t.Errorf("NormalizeWatchPath(%q) = %q, want identity", p, got)
		}
		if got := DenormalizeWatchPath(WatchedPath(p)); got != p {
			t.Errorf("DenormalizeWatchPath(%q) = %q, want identity", p, got)
		}
	}
}

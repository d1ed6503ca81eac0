//go:build linux

package watching

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestClassifyInotify(t *testing.T) {
	tests := []struct {
		name string
		mask uint32
		want classification
	}{
		{"create", unix.IN_CREATE, classifyCreated},
		{"moved to", unix.IN_MOVED_TO, classifyCreated},
		{"delete", unix.IN_DELETE, classifyRemoved},
		{"delete self", unix.IN_DELETE_SELF, classifyRemoved},
		{"moved from", unix.IN_MOVED_FROM, classifyRemoved},
		{"modify", unix.IN_MODIFY, classifyModified},
		{"ignored", unix.IN_IGNORED, classifyHandleClosed},
		{"overflow", unix.IN_Q_OVERFLOW, classifyOverflow},
		{"unmount", unix.IN_UNMOUNT, classifyIgnore},
		{"attrib alone", unix.IN_ATTRIB, classifyUnknown},
		{"overflow takes precedence over create", unix.IN_Q_OVERFLOW | unix.IN_CREATE, classifyOverflow},
		{"unmount takes precedence over everything", unix.IN_UNMOUNT | unix.IN_CREATE | unix.IN_Q_OVERFLOW, classifyIgnore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyInotify(tt.mask); got != tt.want {
				t.Errorf("classifyInotify(%#x) = %v, want %v", tt.mask, got, tt.want)
			}
		})
	}
}

//go:build darwin

package watching

import (
	"testing"

	"github.com/mutagen-io/fsevents"
)

func TestClassifyFSEvents(t *testing.T) {
	tests := []struct {
		name  string
		flags fsevents.EventFlags
		want  classification
	}{
		{"created", fsevents.ItemCreated, classifyCreated},
		{"removed", fsevents.ItemRemoved, classifyRemoved},
		{"modified", fsevents.ItemModified, classifyModified},
		{"root changed", fsevents.RootChanged, classifyInvalidated},
		{"mount", fsevents.Mount, classifyInvalidated},
		{"must scan subdirs", fsevents.MustScanSubDirs, classifyOverflow},
		{"pure bookkeeping flags only", fsevents.ItemIsFile | fsevents.OwnEvent, classifyIgnore},
		{
			name:  "rename treated as creation is reported as removed",
			flags: fsevents.ItemRenamed | fsevents.ItemCreated,
			want:  classifyRemoved,
		},
		{
			name:  "rename without the creation bit is reported as created",
			flags: fsevents.ItemRenamed,
			want:  classifyCreated,
		},
		{
			name:  "inode metadata change is treated as a modification",
			flags: fsevents.ItemInodeMetaMod,
			want:  classifyModified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyFSEvents(tt.flags); got != tt.want {
				t.Errorf("classifyFSEvents(%v) = %v, want %v", tt.flags, got, tt.want)
			}
		})
	}
}

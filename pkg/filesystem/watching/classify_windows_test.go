//go:build windows

package watching

import (
	"testing"

	"golang.org/x/sys/windows"
)

func TestClassifyRDCW(t *testing.T) {
	tests := []struct {
		name   string
		action uint32
		isDir  bool
		want   classification
	}{
		{"added", windows.FILE_ACTION_ADDED, false, classifyCreated},
		{"renamed new name", windows.FILE_ACTION_RENAMED_NEW_NAME, false, classifyCreated},
		{"removed", windows.FILE_ACTION_REMOVED, false, classifyRemoved},
		{"renamed old name", windows.FILE_ACTION_RENAMED_OLD_NAME, false, classifyRemoved},
		{"modified file", windows.FILE_ACTION_MODIFIED, false, classifyModified},
		{"modified directory is ignored", windows.FILE_ACTION_MODIFIED, true, classifyIgnore},
		{"unrecognized action", 0xFF, false, classifyUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyRDCW(tt.action, tt.isDir); got != tt.want {
				t.Errorf("classifyRDCW(%d, %v) = %v, want %v", tt.action, tt.isDir, got, tt.want)
			}
		})
	}
}

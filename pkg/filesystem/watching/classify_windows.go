//go:build windows

package watching

import (
	"golang.org/x/sys/windows"
)

// classifyRDCW maps a raw ReadDirectoryChangesW FILE_ACTION_* value to a
// classification. isDir disambiguates FILE_ACTION_MODIFIED, which is
// ignored for directories (the
// directory's own modification time changes on every child creation/removal,
// which would otherwise produce noisy duplicate notifications).
func classifyRDCW(action uint32, isDir bool) classification {
	switch action {
	case windows.FILE_ACTION_ADDED, windows.FILE_ACTION_RENAMED_NEW_NAME:
		return classifyCreated
	case windows.FILE_ACTION_REMOVED, windows.FILE_ACTION_RENAMED_OLD_NAME:
		return classifyRemoved
	case windows.FILE_ACTION_MODIFIED:
		if isDir {
			return classifyIgnore
		}
		return classifyModified
	default:
		return classifyUnknown
	}
}

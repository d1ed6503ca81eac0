//go:build linux

package watching

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// handleStatusLinux is the two-state machine for a Linux watch handle:
// Listening or Cancelled. There is no separate
// "Finished" state on Linux — a cancelled handle is dropped from the
// registry at once; only its descriptor's recentlyUnregistered entry waits
// for the kernel's IN_IGNORED acknowledgment (no entry is kept if no
// acknowledgment is coming).
type handleStatusLinux int

const (
	handleListening handleStatusLinux = iota
	handleCancelled
)

// watchHandleLinux owns one inotify watch descriptor plus the inode observed
// at registration time, used by stopWatchingMovedPaths to detect whole-
// directory moves that inotify itself never reports.
type watchHandleLinux struct {
	path       WatchedPath
	descriptor int
	inode      uint64
	status     handleStatusLinux
}

const inotifyEventMask = unix.IN_MODIFY | unix.IN_ATTRIB |
	unix.IN_CLOSE_WRITE |
	unix.IN_MOVED_FROM | unix.IN_MOVED_TO |
	unix.IN_CREATE | unix.IN_DELETE |
	unix.IN_DELETE_SELF | unix.IN_MOVE_SELF

// inodeOf stats path and extracts its inode number, used both when creating
// a handle and when later checking it for a whole-directory move.
func inodeOf(path string) (uint64, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return 0, err
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, os.ErrInvalid
	}
	return stat.Ino, nil
}

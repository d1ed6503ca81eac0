//go:build linux

package watching

import (
	"golang.org/x/sys/unix"
)

// classifyInotify maps a raw inotify event mask to a classification. The
// order of these checks is load-bearing: several bits can be set on the same
// event, and the first matching case wins.
func classifyInotify(mask uint32) classification {
	switch {
	case mask&unix.IN_UNMOUNT != 0:
		return classifyIgnore
	case mask&unix.IN_Q_OVERFLOW != 0:
		return classifyOverflow
	case mask&unix.IN_IGNORED != 0:
		return classifyHandleClosed
	case mask&(unix.IN_CREATE|unix.IN_MOVED_TO) != 0:
		return classifyCreated
	case mask&(unix.IN_DELETE|unix.IN_DELETE_SELF|unix.IN_MOVED_FROM) != 0:
		return classifyRemoved
	case mask&unix.IN_MODIFY != 0:
		return classifyModified
	default:
		return classifyUnknown
	}
}

//go:build linux

package watching

import (
	"sync"

	"golang.org/x/sys/unix"
)

// sharedInotify is a reference-counted wrapper around a single inotify file
// descriptor; the last release closes the underlying fd. The engine holds
// the one reference created with it; watch handles do not acquire references
// of their own.
type sharedInotify struct {
	mu   sync.Mutex
	fd   int
	refs int
}

// newSharedInotify creates the process-wide inotify fd for one engine, with
// IN_CLOEXEC|IN_NONBLOCK so forked children never inherit it and reads never
// block the poll loop.
func newSharedInotify() (*sharedInotify, error) {
	fd, err := unix.InotifyInit1(unix.IN_CLOEXEC | unix.IN_NONBLOCK)
	if err != nil {
		if err == unix.EMFILE {
			return nil, newResourceExhausted(ResourceExhaustedInotifyInstanceLimit, err)
		}
		return nil, err
	}
	return &sharedInotify{fd: fd, refs: 1}, nil
}

// acquire increments the reference count and returns the same object; each
// acquire must be matched by one release.
func (s *sharedInotify) acquire() *sharedInotify {
	s.mu.Lock()
	s.refs++
	s.mu.Unlock()
	return s
}

// release decrements the reference count, closing the underlying fd when the
// last holder releases.
func (s *sharedInotify) release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs--
	if s.refs <= 0 {
		return unix.Close(s.fd)
	}
	return nil
}

// addWatch issues inotify_add_watch, translating ENOSPC into a
// ResourceExhaustedError.
func (s *sharedInotify) addWatch(path string, mask uint32) (int, error) {
	wd, err := unix.InotifyAddWatch(s.fd, path, mask)
	if err != nil {
		if err == unix.ENOSPC {
			return -1, newResourceExhausted(ResourceExhaustedInotifyWatchesLimit, err)
		}
		return -1, err
	}
	return wd, nil
}

// removeWatch issues inotify_rm_watch. It reports whether the kernel will
// still deliver an IN_IGNORED acknowledgment for this descriptor: an EINVAL
// return means the kernel has already closed the watch unilaterally, so no
// acknowledgment is coming.
func (s *sharedInotify) removeWatch(wd int) (ackPending bool, err error) {
	if rmErr := unix.InotifyRmWatch(s.fd, uint32(wd)); rmErr != nil {
		if rmErr == unix.EINVAL {
			return false, nil
		}
		return false, rmErr
	}
	return true, nil
}

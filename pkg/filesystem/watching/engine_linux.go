//go:build linux

package watching

import (
	"encoding/binary"
	"fmt"
	"path/filepath"
	"sync"
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// inotifyEventHeaderSize is the size of the fixed portion of a raw
// inotify_event record; the variable-length name follows immediately after.
const inotifyEventHeaderSize = 16

// inotifyReadBufferSize bounds a single read of the inotify fd. drain keeps
// reading until the fd reports EAGAIN, so events that do not fit in one
// buffer are picked up by the following reads.
const inotifyReadBufferSize = 64 * 1024

// engineLinux drains one shared inotify fd on a dedicated goroutine, polling
// it alongside an eventfd used purely to wake the poll for shutdown.
type engineLinux struct {
	config   Config
	callback *CallbackBridge
	host     *Host

	inotify  *sharedInotify
	registry *watchRegistryLinux

	shutdownFD  int
	shutdownMu  sync.Mutex
	shutdownHit bool
}

func newEngineForPlatform(config Config, callback *CallbackBridge, host *Host) (engine, error) {
	e := &engineLinux{
		config:   config,
		callback: callback,
		host:     host,
		registry: newWatchRegistryLinux(),
	}
	if err := e.openDescriptors(); err != nil {
		return nil, err
	}
	return e, nil
}

// openDescriptors creates the shared inotify fd and the shutdown eventfd.
func (e *engineLinux) openDescriptors() error {
	inotify, err := newSharedInotify()
	if err != nil {
		return errors.Wrap(err, "unable to initialize inotify")
	}
	e.inotify = inotify

	fd, _, errno := unix.Syscall(unix.SYS_EVENTFD2, 0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK, 0)
	if errno != 0 {
		e.inotify.release()
		return errors.Wrap(errno, "unable to create shutdown eventfd")
	}
	e.shutdownFD = int(fd)
	return nil
}

func (e *engineLinux) initialize() error {
	e.host.Log(LogLevelConfig, "inotify engine initialized (fd=%d, read buffer=%s)",
		e.inotify.fd, humanize.IBytes(inotifyReadBufferSize))
	return nil
}

func (e *engineLinux) run() error {
	defer unix.Close(e.shutdownFD)
	defer e.inotify.release()

	pollFDs := []unix.PollFd{
		{Fd: int32(e.inotify.fd), Events: unix.POLLIN},
		{Fd: int32(e.shutdownFD), Events: unix.POLLIN},
	}

	buffer := make([]byte, inotifyReadBufferSize)
	for {
		_, err := unix.Poll(pollFDs, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return errors.Wrap(err, "poll failed")
		}

		if pollFDs[1].Revents&unix.POLLIN != 0 {
			e.shutdownMu.Lock()
			requested := e.shutdownHit
			e.shutdownMu.Unlock()
			if requested {
				return nil
			}
		}

		if pollFDs[0].Revents&unix.POLLIN != 0 {
			if err := e.drain(buffer); err != nil {
				return err
			}
		}
	}
}

// drain reads every currently-available inotify_event record and dispatches
// each to the callback bridge. A short read (EAGAIN) simply means the fd is
// caught up; it is not an error.
func (e *engineLinux) drain(buffer []byte) error {
	for {
		n, err := unix.Read(e.inotify.fd, buffer)
		if err != nil {
			if err == unix.EAGAIN {
				return nil
			}
			return errors.Wrap(err, "inotify read failed")
		}
		if n == 0 {
			return nil
		}

		offset := 0
		for offset+inotifyEventHeaderSize <= n {
			wd := int32(binary.LittleEndian.Uint32(buffer[offset:]))
			mask := binary.LittleEndian.Uint32(buffer[offset+4:])
			nameLen := binary.LittleEndian.Uint32(buffer[offset+12:])

			var name string
			if nameLen > 0 {
				nameBytes := buffer[offset+inotifyEventHeaderSize : offset+inotifyEventHeaderSize+int(nameLen)]
				name = unsafe.String(&nameBytes[0], len(nameBytes))
				if idx := indexByte(name, 0); idx >= 0 {
					name = name[:idx]
				}
			}
			offset += inotifyEventHeaderSize + int(nameLen)

			e.dispatch(int(wd), mask, name)
		}
	}
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func (e *engineLinux) dispatch(wd int, mask uint32, name string) {
	if mask&unix.IN_Q_OVERFLOW != 0 {
		for _, root := range e.registry.allDescriptors() {
			e.callback.ReportOverflow(string(root))
		}
		return
	}

	if mask&unix.IN_IGNORED != 0 {
		e.registry.handleIgnored(wd)
		return
	}

	root, ok := e.registry.rootFor(wd)
	if !ok {
		// The watch was cancelled and its handle already removed; any
		// remaining in-flight events for it are discarded, matching the
		// "cancel immediately stops new notifications" requirement.
		return
	}

	path := string(root)
	if name != "" {
		path = filepath.Join(path, name)
	}

	switch classifyInotify(mask) {
	case classifyCreated:
		e.callback.ReportChangeEvent(ChangeKindCreated, path)
	case classifyRemoved:
		e.callback.ReportChangeEvent(ChangeKindRemoved, path)
	case classifyModified:
		e.callback.ReportChangeEvent(ChangeKindModified, path)
	case classifyIgnore:
		// IN_UNMOUNT: the containing filesystem went away: no event, the
		// forthcoming IN_IGNORED will clean up the registry entry.
	case classifyHandleClosed:
		// Handled above via the IN_IGNORED fast path; unreachable here.
	default:
		e.callback.ReportUnknownEvent(path)
	}
}

func (e *engineLinux) registerPaths(paths []string) error {
	return e.registry.register(paths, e.inotify)
}

func (e *engineLinux) unregisterPaths(paths []string) (bool, error) {
	return e.registry.unregister(paths, e.inotify)
}

// stopWatchingMovedPaths is a method of the Linux engine only rather than
// part of the engine interface, since only Linux needs it: inotify never
// reports that a watched directory itself was the target of a rename, so the
// caller must poll inode identity to detect it.
func (e *engineLinux) stopWatchingMovedPaths(paths []string) []string {
	return e.registry.stopWatchingMovedPaths(paths, e.inotify)
}

func (e *engineLinux) requestShutdown() {
	e.shutdownMu.Lock()
	already := e.shutdownHit
	e.shutdownHit = true
	e.shutdownMu.Unlock()
	if already {
		return
	}

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	if _, err := unix.Write(e.shutdownFD, buf[:]); err != nil {
		e.host.Log(LogLevelWarning, "failed to signal shutdown eventfd: %v", err)
	}
}

var _ fmt.Stringer = (*engineLinux)(nil)

func (e *engineLinux) String() string {
	return "engine(linux/inotify)"
}

//go:build windows

package watching

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf16"

	"github.com/Microsoft/go-winio"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// windowsEvent pairs a raw FILE_NOTIFY_INFORMATION record with the root it
// was read from.
type windowsEvent struct {
	root   WatchedPath
	action uint32
	name   string
}

// engineWindows drains one ReadDirectoryChangesW goroutine per registered
// root into a shared queue, and serializes all registry mutation through a
// single command channel so that registerPaths/unregisterPaths/
// requestShutdown (callable from any goroutine) never race with the run
// loop's own bookkeeping.
type engineWindows struct {
	config   Config
	callback *CallbackBridge
	host     *Host

	registry *watchRegistryWindows
	queue    chan windowsEvent
	commands chan *command
	wg       sync.WaitGroup

	shutdownOnce sync.Once
}

func newEngineForPlatform(config Config, callback *CallbackBridge, host *Host) (engine, error) {
	return &engineWindows{
		config:   config,
		callback: callback,
		host:     host,
		registry: newWatchRegistryWindows(),
		queue:    make(chan windowsEvent, 4096),
		commands: make(chan *command),
	}, nil
}

// initialize enables SeBackupPrivilege (and SeRestorePrivilege) for the
// process, matching the effective rights CreateFileW needs with
// FILE_FLAG_BACKUP_SEMANTICS to open arbitrary directories without an
// access-check failure for directories the caller would not otherwise have
// traverse rights to.
func (e *engineWindows) initialize() error {
	if err := winio.EnableProcessPrivileges([]string{winio.SeBackupPrivilege, winio.SeRestorePrivilege}); err != nil {
		e.host.Log(LogLevelWarning, "unable to enable backup/restore privileges: %v", err)
	}
	e.host.Log(LogLevelConfig, "readdirectorychanges engine initialized (buffer=%s)",
		humanize.IBytes(uint64(e.config.Windows.EventBufferBytes)))
	return nil
}

// run is the engine's single logical thread: every registry mutation
// arrives here over commands, and every classified kernel event arrives
// here over queue. Shutdown is itself dispatched as a command, so it is
// processed in the same order as any command already queued ahead of it.
func (e *engineWindows) run() error {
	for {
		select {
		case cmd, ok := <-e.commands:
			if !ok {
				e.drainQueue()
				return nil
			}
			cmd.done <- cmd.fn()
		case ev := <-e.queue:
			e.dispatch(ev)
		}
	}
}

// drainQueue flushes any events still buffered after the command channel
// has been closed by requestShutdown, so that nothing classified before
// shutdown was requested is lost.
func (e *engineWindows) drainQueue() {
	for {
		select {
		case ev := <-e.queue:
			e.dispatch(ev)
		default:
			return
		}
	}
}

func (e *engineWindows) dispatch(ev windowsEvent) {
	root := DenormalizeWatchPath(ev.root)
	if ev.action == 0 && ev.name == "" {
		e.callback.ReportOverflow(root)
		return
	}

	path := filepath.Join(root, ev.name)
	info, statErr := os.Stat(path)
	isDir := statErr == nil && info.IsDir()

	switch classifyRDCW(ev.action, isDir) {
	case classifyCreated:
		e.callback.ReportChangeEvent(ChangeKindCreated, path)
	case classifyRemoved:
		e.callback.ReportChangeEvent(ChangeKindRemoved, path)
	case classifyModified:
		e.callback.ReportChangeEvent(ChangeKindModified, path)
	case classifyIgnore:
	default:
		e.callback.ReportUnknownEvent(path)
	}
}

func (e *engineWindows) registerPaths(paths []string) error {
	cmd := newCommand(func() error {
		for _, p := range paths {
			key := NormalizeWatchPath(p)
			if err := e.startWatch(key, string(key)); err != nil {
				return err
			}
		}
		return nil
	})
	return submitCommand(e.commands, cmd, e.commandTimeout())
}

// unregisterPaths cancels each handle's in-flight I/O and then waits for its
// watch goroutine to actually observe the cancellation and exit before
// returning, so that by the time this call returns the directory and event
// handles are genuinely closed rather than merely marked for cancellation.
func (e *engineWindows) unregisterPaths(paths []string) (bool, error) {
	allOK := true
	var cancelled []*watchHandleWindows
	cmd := newCommand(func() error {
		for _, p := range paths {
			key := NormalizeWatchPath(p)
			handle, ok := e.registry.unregister(key)
			if !ok {
				allOK = false
				continue
			}
			handle.close()
			cancelled = append(cancelled, handle)
		}
		return nil
	})
	err := submitCommand(e.commands, cmd, e.commandTimeout())
	for _, handle := range cancelled {
		<-handle.done
	}
	return allOK && err == nil, err
}

func (e *engineWindows) requestShutdown() {
	e.shutdownOnce.Do(func() {
		go func() {
			var cancelled []*watchHandleWindows
			cmd := newCommand(func() error {
				cancelled = e.registry.all()
				for _, h := range cancelled {
					h.close()
				}
				return nil
			})
			submitCommand(e.commands, cmd, e.commandTimeout())
			for _, h := range cancelled {
				<-h.done
			}
			e.wg.Wait()
			close(e.commands)
		}()
	})
}

func (e *engineWindows) commandTimeout() time.Duration {
	return time.Duration(e.config.Windows.CommandTimeoutMillis) * time.Millisecond
}

func (e *engineWindows) startWatch(key WatchedPath, rawPath string) error {
	pathPtr, err := windows.UTF16PtrFromString(rawPath)
	if err != nil {
		return errors.Wrap(err, "invalid watch path")
	}

	dirHandle, err := windows.CreateFile(
		pathPtr,
		windows.FILE_LIST_DIRECTORY,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_BACKUP_SEMANTICS|windows.FILE_FLAG_OVERLAPPED,
		0,
	)
	if err != nil {
		return errors.Wrap(err, "unable to open directory handle")
	}

	event, err := windows.CreateEvent(nil, 1, 0, nil)
	if err != nil {
		windows.CloseHandle(dirHandle)
		return errors.Wrap(err, "unable to create completion event")
	}

	handle := newWatchHandleWindows(key, dirHandle, event, e.config.Windows.EventBufferBytes)
	if err := e.registry.register(key, handle); err != nil {
		windows.CloseHandle(event)
		windows.CloseHandle(dirHandle)
		return err
	}

	e.wg.Add(1)
	go e.watchLoop(handle)
	return nil
}

// watchLoop issues one ReadDirectoryChangesW call, blocks on its completion
// event, and parses and forwards every record in the returned buffer before
// issuing the next call. It exits once the handle is cancelled (explicitly,
// via unregisterPaths/requestShutdown) or a non-cancellation error occurs.
//
// This goroutine is the sole owner of h.dirHandle and h.event once startWatch
// hands them off to it: close() (called from the command goroutine) only
// requests cancellation, it never closes either handle itself, since this
// goroutine may be blocked inside WaitForSingleObject/GetOverlappedResult
// against them at that exact moment. Only once this goroutine has itself
// observed the cancellation and is no longer waiting on the handles does it
// close them, immediately before signaling h.done.
func (e *engineWindows) watchLoop(h *watchHandleWindows) {
	defer e.wg.Done()
	defer func() {
		windows.CloseHandle(h.event)
		windows.CloseHandle(h.dirHandle)
		close(h.done)
	}()

	for {
		if h.status() == handleWinCancelled {
			h.setStatus(handleWinFinished)
			return
		}

		h.overlapped.HEvent = h.event
		var bytesReturned uint32
		err := windows.ReadDirectoryChanges(h.dirHandle, &h.buffer[0], uint32(len(h.buffer)), true, windowsNotifyFilterMask, &bytesReturned, &h.overlapped, 0)
		if err != nil && err != windows.ERROR_IO_PENDING {
			e.callback.ReportFailuref("ReadDirectoryChangesW failed for %q: %v", h.path, err)
			h.setStatus(handleWinFinished)
			return
		}
		h.setStatus(handleWinListening)

		if _, waitErr := windows.WaitForSingleObject(h.event, windows.INFINITE); waitErr != nil {
			e.callback.ReportFailuref("wait failed for %q: %v", h.path, waitErr)
			h.setStatus(handleWinFinished)
			return
		}

		var n uint32
		if resultErr := windows.GetOverlappedResult(h.dirHandle, &h.overlapped, &n, false); resultErr != nil {
			if resultErr == windows.ERROR_OPERATION_ABORTED {
				h.setStatus(handleWinFinished)
				return
			}
			e.callback.ReportFailuref("GetOverlappedResult failed for %q: %v", h.path, resultErr)
			h.setStatus(handleWinFinished)
			return
		}

		if n == 0 {
			// A zero-length completion with no error indicates the kernel
			// buffer overflowed and some changes were not recorded.
			e.queue <- windowsEvent{root: h.path, action: 0, name: ""}
			continue
		}

		e.parseAndEnqueue(h.path, h.buffer[:n])
	}
}

// parseAndEnqueue walks the packed FILE_NOTIFY_INFORMATION records in buf
// and pushes one windowsEvent per record onto the shared queue.
func (e *engineWindows) parseAndEnqueue(root WatchedPath, buf []byte) {
	offset := 0
	for {
		if offset+12 > len(buf) {
			return
		}
		nextEntryOffset := binary.LittleEndian.Uint32(buf[offset:])
		action := binary.LittleEndian.Uint32(buf[offset+4:])
		nameLen := binary.LittleEndian.Uint32(buf[offset+8:])

		nameStart := offset + 12
		nameEnd := nameStart + int(nameLen)
		if nameEnd > len(buf) {
			return
		}

		u16 := make([]uint16, nameLen/2)
		for i := range u16 {
			u16[i] = binary.LittleEndian.Uint16(buf[nameStart+2*i:])
		}
		name := string(utf16.Decode(u16))

		e.queue <- windowsEvent{root: root, action: action, name: name}

		if nextEntryOffset == 0 {
			return
		}
		offset += int(nextEntryOffset)
	}
}

func (e *engineWindows) String() string {
	return "engine(windows/readdirectorychanges)"
}

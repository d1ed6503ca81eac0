//go:build windows

package watching

import (
	"sync/atomic"

	"golang.org/x/sys/windows"
)

// handleStatusWindows is the four-state machine for a Windows watch handle:
// a handle starts NotListening, moves to Listening once its first
// ReadDirectoryChangesW call has been issued, moves to Cancelled when
// CancelIoEx has been called against it, and finally to Finished once its
// watch goroutine has observed the cancelled I/O and exited.
type handleStatusWindows int32

const (
	handleWinNotListening handleStatusWindows = iota
	handleWinListening
	handleWinCancelled
	handleWinFinished
)

// windowsNotifyFilterMask selects the change classes ReadDirectoryChangesW
// reports. FILE_NOTIFY_CHANGE_LAST_ACCESS is deliberately excluded: it fires
// on reads, not just writes, and would otherwise flood consumers with
// modification events for files nobody actually modified.
const windowsNotifyFilterMask = windows.FILE_NOTIFY_CHANGE_FILE_NAME |
	windows.FILE_NOTIFY_CHANGE_DIR_NAME |
	windows.FILE_NOTIFY_CHANGE_ATTRIBUTES |
	windows.FILE_NOTIFY_CHANGE_SIZE |
	windows.FILE_NOTIFY_CHANGE_LAST_WRITE |
	windows.FILE_NOTIFY_CHANGE_CREATION |
	windows.FILE_NOTIFY_CHANGE_SECURITY

// watchHandleWindows owns one directory handle, its OVERLAPPED structure,
// and the manual-reset event used to wait for ReadDirectoryChangesW
// completions. The buffer is read and written exclusively by the handle's
// own watch goroutine; only status is touched concurrently, hence the
// atomic access.
type watchHandleWindows struct {
	path       WatchedPath
	dirHandle  windows.Handle
	event      windows.Handle
	overlapped windows.Overlapped
	buffer     []byte

	statusValue int32
	done        chan struct{}
}

func newWatchHandleWindows(path WatchedPath, dirHandle, event windows.Handle, bufferSize int) *watchHandleWindows {
	return &watchHandleWindows{
		path:      path,
		dirHandle: dirHandle,
		event:     event,
		buffer:    make([]byte, bufferSize),
		done:      make(chan struct{}),
	}
}

func (h *watchHandleWindows) status() handleStatusWindows {
	return handleStatusWindows(atomic.LoadInt32(&h.statusValue))
}

func (h *watchHandleWindows) setStatus(s handleStatusWindows) {
	atomic.StoreInt32(&h.statusValue, int32(s))
}

// close cancels any in-flight I/O and marks the handle cancelled. It is safe
// to call from any goroutine. It does not itself close the directory or
// event handles: the watch goroutine is very possibly blocked in
// WaitForSingleObject/GetOverlappedResult against that same handle pair, so
// only that goroutine may close them, once it has observed the cancellation
// and is no longer waiting on them. Callers that need the handles to be
// fully released should wait on h.done after calling close.
func (h *watchHandleWindows) close() {
	windows.CancelIoEx(h.dirHandle, &h.overlapped)
	h.setStatus(handleWinCancelled)
}

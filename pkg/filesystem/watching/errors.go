package watching

import "fmt"

// ErrAlreadyWatching indicates that a path was already present in a
// WatchRegistry at the time Register was called for it.
var ErrAlreadyWatching = fmt.Errorf("path is already being watched")

// ErrWatchTerminated indicates that a watcher has already been terminated.
var ErrWatchTerminated = fmt.Errorf("watch terminated")

// ErrExecutionTimedOut indicates that a Windows Command failed to complete
// within its configured timeout. A command that the engine never picked up
// is discarded and leaves the engine's state untouched; a command that the
// engine had already picked up when the wait expired still runs to
// completion.
var ErrExecutionTimedOut = fmt.Errorf("command execution timed out")

// ResourceExhaustedKind refines a WatchResourceExhausted failure with a
// platform-specific sub-kind.
type ResourceExhaustedKind uint8

const (
	// ResourceExhaustedGeneric is used when no more specific sub-kind
	// applies.
	ResourceExhaustedGeneric ResourceExhaustedKind = iota
	// ResourceExhaustedInotifyInstanceLimit corresponds to inotify_init1
	// failing with EMFILE: the process has hit its
	// /proc/sys/fs/inotify/max_user_instances limit.
	ResourceExhaustedInotifyInstanceLimit
	// ResourceExhaustedInotifyWatchesLimit corresponds to
	// inotify_add_watch failing with ENOSPC: the process has hit its
	// /proc/sys/fs/inotify/max_user_watches limit.
	ResourceExhaustedInotifyWatchesLimit
)

func (k ResourceExhaustedKind) String() string {
	switch k {
	case ResourceExhaustedInotifyInstanceLimit:
		return "InotifyInstanceLimitTooLow"
	case ResourceExhaustedInotifyWatchesLimit:
		return "InotifyWatchesLimitTooLow"
	default:
		return "ResourceExhausted"
	}
}

// ResourceExhaustedError is a WatchResourceExhausted failure: a refinement
// of a generic WatcherFailure raised when a kernel resource limit (file
// descriptors, inotify instances, or inotify watches) has been hit.
type ResourceExhaustedError struct {
	Kind ResourceExhaustedKind
	Err  error
}

func (e *ResourceExhaustedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ResourceExhaustedError) Unwrap() error {
	return e.Err
}

// newResourceExhausted wraps err as a ResourceExhaustedError of the given
// kind.
func newResourceExhausted(kind ResourceExhaustedKind, err error) error {
	return &ResourceExhaustedError{Kind: kind, Err: err}
}

package watching

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/mutagen-io/filewatcher/pkg/identifier"
	"github.com/mutagen-io/filewatcher/pkg/logging"
)

// Watcher is the platform-independent control surface for a single running
// watch engine. All of its methods may be called from any goroutine unless
// otherwise noted.
type Watcher struct {
	// id is a per-watcher correlation identifier, attached to every log line
	// this watcher emits so that concurrent watchers are distinguishable in
	// shared logs.
	id string

	engine   engine
	bridge   *CallbackBridge
	host     *Host
	logger   *logging.Logger

	terminatedOnce sync.Once
	terminated     chan struct{}
	runErr         error
}

// StartWatcher constructs the engine for the current platform. Construction
// failures (e.g. the OS primitive could not be created) are returned
// immediately; no goroutine is started and no path is registered.
func StartWatcher(config Config, callback Callback, logger *logging.Logger) (*Watcher, error) {
	if logger == nil {
		logger = logging.RootLogger
	}

	id, err := identifier.New(identifier.PrefixWatcher)
	if err != nil {
		return nil, errors.Wrap(err, "unable to generate watcher identifier")
	}
	watcherLogger := logger.Sublogger("watch").Sublogger(id[len(id)-8:])

	host := NewHost(watcherLogger, nil)
	bridge := NewCallbackBridge(callback, host)

	eng, err := newPlatformEngine(config, bridge, host)
	if err != nil {
		return nil, errors.Wrap(err, "unable to construct watcher engine")
	}

	return &Watcher{
		id:         id,
		engine:     eng,
		bridge:     bridge,
		host:       host,
		logger:     watcherLogger,
		terminated: make(chan struct{}),
	}, nil
}

// ID returns the watcher's correlation identifier.
func (w *Watcher) ID() string {
	return w.id
}

// Run initializes the engine and then drives its run loop. It must be
// called from the goroutine that owns the watcher's lifetime (the "engine
// thread") and blocks until Shutdown is called (or a fatal error occurs).
// Once it returns, ReportTermination has already been dispatched and
// AwaitTermination will return true for any caller.
func (w *Watcher) Run() error {
	if err := w.engine.initialize(); err != nil {
		w.host.Log(LogLevelSevere, "engine initialization failed: %v", err)
		w.finish(err)
		return err
	}

	err := w.engine.run()
	w.finish(err)

	if err != nil {
		w.host.Log(LogLevelSevere, "engine run loop exited with error: %v", err)
	} else {
		w.host.Log(LogLevelInfo, "engine run loop exited cleanly")
	}
	return err
}

// finish marks the watcher terminated exactly once, dispatching
// ReportTermination and unblocking any AwaitTermination callers.
func (w *Watcher) finish(err error) {
	w.terminatedOnce.Do(func() {
		w.runErr = err
		w.bridge.ReportTermination()
		close(w.terminated)
	})
}

// RegisterPaths begins watching each of the given paths. A duplicate
// registration fails the call with ErrAlreadyWatching; any paths that were
// successfully added before the duplicate was hit remain registered (the
// caller may unregister them or accept the partial result).
func (w *Watcher) RegisterPaths(paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	if err := w.engine.registerPaths(paths); err != nil {
		w.host.Log(LogLevelWarning, "registration failed for %d path(s): %v", len(paths), err)
		return err
	}
	w.host.Log(LogLevelInfo, "registered %d path(s)", len(paths))
	return nil
}

// UnregisterPaths stops watching each of the given paths. It returns true
// iff every path was being watched and was successfully cancelled.
func (w *Watcher) UnregisterPaths(paths []string) (bool, error) {
	if len(paths) == 0 {
		return true, nil
	}
	ok, err := w.engine.unregisterPaths(paths)
	if err != nil {
		w.host.Log(LogLevelWarning, "unregistration failed for %d path(s): %v", len(paths), err)
		return false, err
	}
	return ok, nil
}

// Shutdown signals the engine to exit at its next opportunity. It does not
// block; use AwaitTermination to wait for the run loop to actually exit.
func (w *Watcher) Shutdown() {
	w.host.Log(LogLevelInfo, "shutdown requested")
	w.engine.requestShutdown()
}

// AwaitTermination waits up to timeout for the run loop to finish. A
// non-positive timeout waits indefinitely. It returns true iff the engine
// finished (in which case the caller is now responsible for discarding the
// Watcher) and false if the wait timed out (in which case the engine is
// still live and may be awaited again).
func (w *Watcher) AwaitTermination(timeout time.Duration) bool {
	select {
	case <-w.terminated:
		return true
	case <-deadlineChannel(timeout):
		return false
	}
}

// Err returns the error (if any) that caused the run loop to exit. It is
// only meaningful after AwaitTermination has returned true.
func (w *Watcher) Err() error {
	return w.runErr
}

// String implements fmt.Stringer for diagnostics.
func (w *Watcher) String() string {
	return fmt.Sprintf("watcher(%s)", w.id[len(w.id)-8:])
}

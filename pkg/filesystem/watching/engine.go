package watching

import (
	"time"
)

// DarwinConfig holds macOS-specific, construction-time engine configuration.
type DarwinConfig struct {
	// LatencyMillis is the FSEvents coalescing window, in milliseconds. Must
	// be >= 0.
	LatencyMillis int64
}

// WindowsConfig holds Windows-specific, construction-time engine
// configuration.
type WindowsConfig struct {
	// EventBufferBytes is the per-handle kernel event buffer size, typically
	// 16-64 KiB.
	EventBufferBytes int
	// CommandTimeoutMillis bounds how long a cross-thread Command dispatch
	// will wait for the engine thread to process it.
	CommandTimeoutMillis int64
}

// Config aggregates the per-backend configuration blocks. Only the block for
// the current GOOS is consulted.
type Config struct {
	Darwin  DarwinConfig
	Windows WindowsConfig
}

// DefaultConfig returns reasonable defaults for all backends.
func DefaultConfig() Config {
	return Config{
		Darwin: DarwinConfig{
			LatencyMillis: 10,
		},
		Windows: WindowsConfig{
			EventBufferBytes:     64 * 1024,
			CommandTimeoutMillis: 5000,
		},
	}
}

// engine is the internal, per-backend capability that ControlAPI drives. One
// concrete implementation exists per GOOS (engine_darwin.go, engine_linux.go,
// engine_windows.go), selected at compile time by BackendWiring
// (newPlatformEngine) so that no runtime GOOS branching occurs on any hot
// path.
type engine interface {
	// initialize establishes any thread-local state the engine's run loop
	// needs. It must be called from the goroutine that will call run.
	initialize() error
	// run blocks until shutdown is requested (or a fatal error occurs),
	// processing kernel events and dispatching them to the callback bridge
	// as it goes. It must be called from the same goroutine that called
	// initialize.
	run() error
	// registerPaths begins watching each of the given paths. It may be
	// called from any goroutine.
	registerPaths(paths []string) error
	// unregisterPaths stops watching each of the given paths, returning true
	// iff every path was being watched and was successfully cancelled. It
	// may be called from any goroutine.
	unregisterPaths(paths []string) (bool, error)
	// requestShutdown signals run to return at its next opportunity. It does
	// not block and may be called from any goroutine, including multiple
	// times.
	requestShutdown()
}

// newPlatformEngine constructs the engine implementation for the current
// GOOS by delegating to newEngineForPlatform, which each platform file
// implements.
func newPlatformEngine(config Config, callback *CallbackBridge, host *Host) (engine, error) {
	return newEngineForPlatform(config, callback, host)
}

// deadlineChannel returns a channel that fires after timeout, or a nil
// channel (which never fires) for a non-positive timeout. It is used by
// Watcher.AwaitTermination.
func deadlineChannel(timeout time.Duration) <-chan time.Time {
	if timeout <= 0 {
		return nil
	}
	return time.After(timeout)
}

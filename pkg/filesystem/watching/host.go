package watching

import (
	"sync"
	"time"

	"github.com/mutagen-io/filewatcher/pkg/logging"
)

// LogLevel mirrors the Java-style level tags that the original JNI host
// vocabulary used (FINEST|FINER|FINE|CONFIG|INFO|WARNING|SEVERE), so that a
// component translating from that world has an unambiguous target. It is
// distinct from logging.Level, which is this repository's own ambient log
// level; Host.Log maps each LogLevel onto one of the logger's methods.
type LogLevel int

const (
	LogLevelFinest LogLevel = iota
	LogLevelFiner
	LogLevelFine
	LogLevelConfig
	LogLevelInfo
	LogLevelWarning
	LogLevelSevere
)

// levelCacheInterval bounds how often Host re-queries the minimum log level
// from its logger: the query crosses a host boundary in the system this was
// modeled on, so it is cached rather than performed on every log call.
const levelCacheInterval = 2 * time.Second

// Host is the capability an engine is handed at construction. It stands in
// for the "process-global constants / loggers" that a JNI-hosted
// implementation would otherwise cache as class-level statics: here its
// lifetime is simply the engine's.
type Host struct {
	// logger is the structured logging sink for this engine.
	logger *logging.Logger

	mu             sync.Mutex
	cachedLevel    LogLevel
	cachedAt       time.Time
	minimumEnabled func() LogLevel
}

// NewHost constructs a Host around the given logger. minimumLevel, if
// non-nil, is consulted (no more often than once per levelCacheInterval) to
// determine the current minimum enabled level; if nil, every level is
// considered enabled.
func NewHost(logger *logging.Logger, minimumLevel func() LogLevel) *Host {
	return &Host{
		logger:         logger,
		minimumEnabled: minimumLevel,
	}
}

// Logger returns the underlying structured logger.
func (h *Host) Logger() *logging.Logger {
	return h.logger
}

// level returns the current minimum enabled level, refreshing the cached
// value if it's stale.
func (h *Host) level() LogLevel {
	if h.minimumEnabled == nil {
		return LogLevelFinest
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if time.Since(h.cachedAt) > levelCacheInterval {
		h.cachedLevel = h.minimumEnabled()
		h.cachedAt = time.Now()
	}
	return h.cachedLevel
}

// Enabled reports whether a log line at the given level would be emitted.
func (h *Host) Enabled(level LogLevel) bool {
	return level >= h.level()
}

// Log emits a level-gated, structured log line.
func (h *Host) Log(level LogLevel, format string, args ...interface{}) {
	if h == nil || !h.Enabled(level) {
		return
	}
	switch {
	case level >= LogLevelSevere:
		h.logger.Errorf(format, args...)
	case level >= LogLevelWarning:
		h.logger.Warnf(format, args...)
	case level <= LogLevelDebug():
		h.logger.Debugf(format, args...)
	default:
		h.logger.Printf(format, args...)
	}
}

// LogLevelDebug exists only to keep the switch in Log legible; LogLevelFine
// and below are treated as debug-grade output.
func LogLevelDebug() LogLevel {
	return LogLevelFine
}

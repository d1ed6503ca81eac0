package watching

import (
	"testing"

	"github.com/mutagen-io/filewatcher/pkg/logging"
)

func TestHostEnabledWithoutMinimumLevel(t *testing.T) {
	h := NewHost(logging.RootLogger.Sublogger("test"), nil)
	if !h.Enabled(LogLevelFinest) {
		t.Error("every level should be enabled when no minimum-level function is supplied")
	}
}

func TestHostEnabledRespectsMinimumLevel(t *testing.T) {
	h := NewHost(logging.RootLogger.Sublogger("test"), func() LogLevel { return LogLevelWarning })
	if h.Enabled(LogLevelFine) {
		t.Error("LogLevelFine should not be enabled when the minimum is LogLevelWarning")
	}
	if !h.Enabled(LogLevelSevere) {
		t.Error("LogLevelSevere should always be enabled when the minimum is LogLevelWarning")
	}
}

func TestHostLogNilSafe(t *testing.T) {
	var h *Host
	// Must not panic even though the receiver is nil.
	h.Log(LogLevelSevere, "unreachable")
}

func TestHostLevelCaching(t *testing.T) {
	calls := 0
	h := NewHost(logging.RootLogger.Sublogger("test"), func() LogLevel {
		calls++
		return LogLevelInfo
	})

	h.Enabled(LogLevelInfo)
	h.Enabled(LogLevelInfo)
	h.Enabled(LogLevelInfo)

	if calls != 1 {
		t.Errorf("minimum-level function should be cached within levelCacheInterval, called %d times", calls)
	}
}

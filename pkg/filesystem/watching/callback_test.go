package watching

import (
	"testing"

	"github.com/mutagen-io/filewatcher/pkg/logging"
)

type recordingCallback struct {
	changes      []ChangeKind
	unknownPaths []string
	overflows    []string
	failures     []string
	terminated   bool
}

func (c *recordingCallback) ReportChangeEvent(kind ChangeKind, path string) {
	c.changes = append(c.changes, kind)
}
func (c *recordingCallback) ReportUnknownEvent(path string) {
	c.unknownPaths = append(c.unknownPaths, path)
}
func (c *recordingCallback) ReportOverflow(path string) {
	c.overflows = append(c.overflows, path)
}
func (c *recordingCallback) ReportFailure(message string) {
	c.failures = append(c.failures, message)
}
func (c *recordingCallback) ReportTermination() {
	c.terminated = true
}

type panickingCallback struct {
	recordingCallback
}

func (c *panickingCallback) ReportChangeEvent(kind ChangeKind, path string) {
	panic("simulated host callback failure")
}

func TestCallbackBridgeDispatches(t *testing.T) {
	cb := &recordingCallback{}
	host := NewHost(logging.RootLogger.Sublogger("test"), nil)
	bridge := NewCallbackBridge(cb, host)

	bridge.ReportChangeEvent(ChangeKindCreated, "/a")
	bridge.ReportUnknownEvent("/b")
	bridge.ReportOverflow("/c")
	bridge.ReportFailuref("boom: %d", 42)
	bridge.ReportTermination()

	if len(cb.changes) != 1 || cb.changes[0] != ChangeKindCreated {
		t.Errorf("expected one created change, got %v", cb.changes)
	}
	if len(cb.unknownPaths) != 1 || cb.unknownPaths[0] != "/b" {
		t.Errorf("expected one unknown event, got %v", cb.unknownPaths)
	}
	if len(cb.overflows) != 1 || cb.overflows[0] != "/c" {
		t.Errorf("expected one overflow, got %v", cb.overflows)
	}
	if len(cb.failures) != 1 || cb.failures[0] != "boom: 42" {
		t.Errorf("expected one formatted failure, got %v", cb.failures)
	}
	if !cb.terminated {
		t.Error("expected ReportTermination to be dispatched")
	}
}

func TestCallbackBridgeIsolatesPanics(t *testing.T) {
	cb := &panickingCallback{}
	host := NewHost(logging.RootLogger.Sublogger("test"), nil)
	bridge := NewCallbackBridge(cb, host)

	// Must not panic out of this call.
	bridge.ReportChangeEvent(ChangeKindCreated, "/a")

	// The bridge must remain usable afterward.
	bridge.ReportTermination()
	if !cb.terminated {
		t.Error("bridge should remain usable after a guarded panic")
	}
}

//go:build linux

package watching

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mutagen-io/filewatcher/pkg/logging"
)

type syncCallback struct {
	recordingCallback
	events chan struct{}
}

func newSyncCallback() *syncCallback {
	return &syncCallback{events: make(chan struct{}, 64)}
}

func (c *syncCallback) ReportChangeEvent(kind ChangeKind, path string) {
	c.recordingCallback.ReportChangeEvent(kind, path)
	c.events <- struct{}{}
}

func waitForEvent(t *testing.T, c *syncCallback) {
	t.Helper()
	select {
	case <-c.events:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a change event")
	}
}

func TestEngineLinuxReportsCreate(t *testing.T) {
	dir := t.TempDir()
	cb := newSyncCallback()
	host := NewHost(logging.RootLogger.Sublogger("test"), nil)
	w, err := StartWatcher(DefaultConfig(), cb, host.Logger())
	if err != nil {
		t.Fatalf("StartWatcher failed: %v", err)
	}

	runDone := make(chan error, 1)
	go func() { runDone <- w.Run() }()

	if err := w.RegisterPaths([]string{dir}); err != nil {
		t.Fatalf("RegisterPaths failed: %v", err)
	}

	target := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(target, []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	waitForEvent(t, cb)

	w.Shutdown()
	select {
	case <-runDone:
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not shut down")
	}

	foundCreate := false
	for _, k := range cb.changes {
		if k == ChangeKindCreated {
			foundCreate = true
		}
	}
	if !foundCreate {
		t.Errorf("expected a Created event among %v", cb.changes)
	}
}

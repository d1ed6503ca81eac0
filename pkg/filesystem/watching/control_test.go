package watching

import (
	"testing"
	"time"
)

// fakeEngine is a minimal engine double used to exercise Watcher's lifecycle
// logic without depending on any platform-specific backend.
type fakeEngine struct {
	initializeErr error
	runErr        error
	runBlocks     chan struct{}

	registeredPaths   [][]string
	unregisteredPaths [][]string
	shutdownRequested bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{runBlocks: make(chan struct{})}
}

func (e *fakeEngine) initialize() error { return e.initializeErr }

func (e *fakeEngine) run() error {
	<-e.runBlocks
	return e.runErr
}

func (e *fakeEngine) registerPaths(paths []string) error {
	e.registeredPaths = append(e.registeredPaths, paths)
	return nil
}

func (e *fakeEngine) unregisterPaths(paths []string) (bool, error) {
	e.unregisteredPaths = append(e.unregisteredPaths, paths)
	return true, nil
}

func (e *fakeEngine) requestShutdown() {
	if !e.shutdownRequested {
		e.shutdownRequested = true
		close(e.runBlocks)
	}
}

func newTestWatcher(eng engine) *Watcher {
	host := NewHost(nil, nil)
	bridge := NewCallbackBridge(&recordingCallback{}, host)
	return &Watcher{
		id:         "test",
		engine:     eng,
		bridge:     bridge,
		host:       host,
		terminated: make(chan struct{}),
	}
}

func TestWatcherRunAndShutdown(t *testing.T) {
	eng := newFakeEngine()
	w := newTestWatcher(eng)

	runDone := make(chan error, 1)
	go func() { runDone <- w.Run() }()

	w.Shutdown()

	select {
	case err := <-runDone:
		if err != nil {
			t.Fatalf("expected clean shutdown, got error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Shutdown")
	}

	if !w.AwaitTermination(time.Second) {
		t.Fatal("AwaitTermination should report true after Run has returned")
	}
}

func TestWatcherAwaitTerminationTimesOut(t *testing.T) {
	eng := newFakeEngine()
	w := newTestWatcher(eng)

	go w.Run()

	if w.AwaitTermination(10 * time.Millisecond) {
		t.Fatal("AwaitTermination should time out while the engine is still running")
	}

	w.Shutdown()
	if !w.AwaitTermination(time.Second) {
		t.Fatal("AwaitTermination should succeed once the engine has stopped")
	}
}

func TestWatcherRegisterAndUnregisterPaths(t *testing.T) {
	eng := newFakeEngine()
	w := newTestWatcher(eng)

	if err := w.RegisterPaths([]string{"/a", "/b"}); err != nil {
		t.Fatalf("RegisterPaths failed: %v", err)
	}
	if len(eng.registeredPaths) != 1 {
		t.Fatalf("expected one registration call, got %d", len(eng.registeredPaths))
	}

	ok, err := w.UnregisterPaths([]string{"/a"})
	if err != nil || !ok {
		t.Fatalf("UnregisterPaths failed: ok=%v err=%v", ok, err)
	}

	w.requestShutdownForTest()
}

// requestShutdownForTest calls the engine's requestShutdown directly, for
// tests that never call Run.
func (w *Watcher) requestShutdownForTest() {
	w.engine.requestShutdown()
}

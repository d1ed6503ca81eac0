//go:build linux

package watching

import (
	"testing"
)

func newTestInotify(t *testing.T) *sharedInotify {
	t.Helper()
	inotify, err := newSharedInotify()
	if err != nil {
		t.Fatalf("newSharedInotify failed: %v", err)
	}
	t.Cleanup(func() { inotify.release() })
	return inotify
}

func TestRegistryRegisterAndUnregister(t *testing.T) {
	dir := t.TempDir()
	inotify := newTestInotify(t)
	registry := newWatchRegistryLinux()

	if err := registry.register([]string{dir}, inotify); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if registry.size() != 1 {
		t.Fatalf("expected registry size 1, got %d", registry.size())
	}

	if err := registry.register([]string{dir}, inotify); err != ErrAlreadyWatching {
		t.Fatalf("expected ErrAlreadyWatching, got %v", err)
	}

	ok, err := registry.unregister([]string{dir}, inotify)
	if err != nil || !ok {
		t.Fatalf("unregister failed: ok=%v err=%v", ok, err)
	}
	if registry.size() != 0 {
		t.Fatalf("expected registry size 0 after unregister, got %d", registry.size())
	}
}

func TestRegistryUnregisterUnknownPathFails(t *testing.T) {
	inotify := newTestInotify(t)
	registry := newWatchRegistryLinux()

	ok, err := registry.unregister([]string{"/does/not/exist"}, inotify)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected unregister of an unknown path to report false")
	}
}

func TestRegistryPartialRegistrationPreservesPriorPaths(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	inotify := newTestInotify(t)
	registry := newWatchRegistryLinux()

	if err := registry.register([]string{dirA}, inotify); err != nil {
		t.Fatalf("register dirA failed: %v", err)
	}

	// Registering dirA again alongside a fresh dirB should fail on the
	// duplicate but must not roll back dirA or dirB entries already added
	// in this call before the failure.
	err := registry.register([]string{dirB, dirA}, inotify)
	if err != ErrAlreadyWatching {
		t.Fatalf("expected ErrAlreadyWatching, got %v", err)
	}
	if registry.size() != 2 {
		t.Fatalf("expected both dirA and dirB still registered, got size %d", registry.size())
	}
}

func TestStopWatchingMovedPathsKeepsUnmovedPath(t *testing.T) {
	dir := t.TempDir()
	inotify := newTestInotify(t)
	registry := newWatchRegistryLinux()

	if err := registry.register([]string{dir}, inotify); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// No move has happened yet; nothing should be reported as dropped.
	if dropped := registry.stopWatchingMovedPaths([]string{dir}, inotify); len(dropped) != 0 {
		t.Fatalf("expected no dropped paths before any move, got %v", dropped)
	}
	if registry.size() != 1 {
		t.Fatalf("expected watch to remain registered, got size %d", registry.size())
	}
}

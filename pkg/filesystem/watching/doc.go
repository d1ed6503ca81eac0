// Package watching implements a cross-platform filesystem change notifier.
//
// It unifies three kernel-level watching primitives — macOS FSEvents, Linux
// inotify, and Windows ReadDirectoryChangesW — behind a single lifecycle and
// a small, closed event vocabulary. Each backend is a standalone state
// machine; see engine_darwin.go, engine_linux.go, and engine_windows.go for
// the per-OS run loops, and control.go for the platform-independent surface
// that a consumer actually uses.
package watching

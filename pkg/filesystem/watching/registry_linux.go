//go:build linux

package watching

import (
	"sync"
)

// watchRegistryLinux is the exclusive owner of the path -> handle mapping
// plus two Linux-specific indices: byDescriptor (for fast event routing by
// descriptor) and recentlyUnregistered (to absorb events in-flight at the
// moment of cancellation, cleared on the kernel's IN_IGNORED
// acknowledgment).
//
// Mutation is serialized by mu. Event routing on the engine goroutine takes
// mu once per lookup, so a lookup never sees a registration half-applied;
// mu is not held across a whole drained batch, so a registration can take
// effect between two events of the same batch.
type watchRegistryLinux struct {
	mu                   sync.Mutex
	byPath               map[WatchedPath]*watchHandleLinux
	byDescriptor         map[int]WatchedPath
	recentlyUnregistered map[int]WatchedPath
}

func newWatchRegistryLinux() *watchRegistryLinux {
	return &watchRegistryLinux{
		byPath:               make(map[WatchedPath]*watchHandleLinux),
		byDescriptor:         make(map[int]WatchedPath),
		recentlyUnregistered: make(map[int]WatchedPath),
	}
}

// register adds each path in turn. If a path is already present, the call
// fails with ErrAlreadyWatching and every path added before the failing one
// remains registered.
func (r *watchRegistryLinux) register(paths []string, inotify *sharedInotify) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range paths {
		key := NormalizeWatchPath(p)
		if _, exists := r.byPath[key]; exists {
			return ErrAlreadyWatching
		}

		wd, err := inotify.addWatch(p, inotifyEventMask)
		if err != nil {
			return err
		}
		inode, err := inodeOf(p)
		if err != nil {
			// Roll back the kernel-level watch we just created; the path
			// never makes it into the registry.
			inotify.removeWatch(wd)
			return err
		}

		handle := &watchHandleLinux{
			path:       key,
			descriptor: wd,
			inode:      inode,
			status:     handleListening,
		}
		r.byPath[key] = handle
		r.byDescriptor[wd] = key
	}
	return nil
}

// unregister cancels each path's watch. It returns true iff every path was
// present and its cancellation reached a definitive outcome.
func (r *watchRegistryLinux) unregister(paths []string, inotify *sharedInotify) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	allOK := true
	for _, p := range paths {
		key := NormalizeWatchPath(p)
		handle, exists := r.byPath[key]
		if !exists {
			allOK = false
			continue
		}

		ackPending, err := inotify.removeWatch(handle.descriptor)
		if err != nil {
			return false, err
		}

		handle.status = handleCancelled
		delete(r.byPath, key)
		delete(r.byDescriptor, handle.descriptor)
		if ackPending {
			r.recentlyUnregistered[handle.descriptor] = key
		}
	}
	return allOK, nil
}

// lookup resolves a descriptor to the handle of its watched path, for routing
// an incoming event. It returns ok=false if the descriptor is unknown.
func (r *watchRegistryLinux) lookup(wd int) (*watchHandleLinux, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	path, ok := r.byDescriptor[wd]
	if !ok {
		return nil, false
	}
	return r.byPath[path], true
}

// handleIgnored processes an IN_IGNORED event for the given descriptor. If
// the descriptor was live, the kernel closed it unilaterally (e.g. the
// watched path itself was removed) and the handle is dropped from both
// indices; the returned path and wasLive=true tell the caller to treat this
// as an implicit cancellation. If the descriptor was only present in
// recentlyUnregistered, this is the acknowledgment of our own prior
// unregister call, and the shadow entry is simply cleared.
func (r *watchRegistryLinux) handleIgnored(wd int) (path WatchedPath, wasLive bool, known bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.byDescriptor[wd]; ok {
		delete(r.byDescriptor, wd)
		delete(r.byPath, p)
		return p, true, true
	}
	if p, ok := r.recentlyUnregistered[wd]; ok {
		delete(r.recentlyUnregistered, wd)
		return p, false, true
	}
	return "", false, false
}

// rootFor returns the registered root path for a descriptor, used to build
// full event paths ("root" or "root/name").
func (r *watchRegistryLinux) rootFor(wd int) (WatchedPath, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byDescriptor[wd]
	return p, ok
}

// allDescriptors returns the root path of every currently-live watch, used to fan out
// IN_Q_OVERFLOW to every watched root.
func (r *watchRegistryLinux) allDescriptors() []WatchedPath {
	r.mu.Lock()
	defer r.mu.Unlock()
	paths := make([]WatchedPath, 0, len(r.byPath))
	for p := range r.byPath {
		paths = append(paths, p)
	}
	return paths
}

// stopWatchingMovedPaths compares, for each path, the current on-disk inode
// to the one observed at registration time; if they disagree, the watch is
// cancelled and the path reported as dropped. This is
// the only way whole-directory moves (which inotify never reports directly)
// are detected. Only the registered root's own inode is compared; nested
// moves are not considered, matching the source this behavior was
// distilled from.
func (r *watchRegistryLinux) stopWatchingMovedPaths(paths []string, inotify *sharedInotify) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var dropped []string
	for _, p := range paths {
		key := NormalizeWatchPath(p)
		handle, exists := r.byPath[key]
		if !exists || handle.status != handleListening {
			continue
		}

		currentInode, err := inodeOf(p)
		if err != nil || currentInode != handle.inode {
			ackPending, _ := inotify.removeWatch(handle.descriptor)
			handle.status = handleCancelled
			delete(r.byPath, key)
			delete(r.byDescriptor, handle.descriptor)
			if ackPending {
				r.recentlyUnregistered[handle.descriptor] = key
			}
			dropped = append(dropped, p)
		}
	}
	return dropped
}

// size reports the number of currently-registered paths; used by tests to
// verify the registry-size invariant (registered minus successfully
// unregistered).
func (r *watchRegistryLinux) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byPath)
}

//go:build darwin

package watching

import (
	"context"

	"github.com/mutagen-io/fsevents"
)

// watchHandleDarwin owns one FSEvents stream plus the forwarding goroutine
// that copies its batched events onto the engine's shared queue. Unlike
// Linux and Windows, macOS has no separate listening/cancelled state to
// track here: stream.Stop() and cancel() together are the entire
// cancellation, and the registry simply drops the handle once both have been
// invoked.
type watchHandleDarwin struct {
	path   WatchedPath
	stream *fsevents.EventStream
	cancel context.CancelFunc
}

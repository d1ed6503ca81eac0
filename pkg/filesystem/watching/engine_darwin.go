//go:build darwin

package watching

import (
	"context"
	"sync"
	"time"

	"github.com/mutagen-io/fsevents"
)

// darwinQueueCapacity bounds the number of forwarded-but-not-yet-dispatched
// events the engine will buffer across all of its streams. A full queue
// means the callback consumer is falling behind the kernel; this is distinct
// from (and much larger than) a single stream's own FSEvents buffer.
const darwinQueueCapacity = 4096

// darwinEvent pairs a raw FSEvents record with the registered root it
// arrived on, since fsevents.Event itself only carries the affected path,
// not which watch produced it.
type darwinEvent struct {
	root  WatchedPath
	event fsevents.Event
}

// engineDarwin fans multiple independent FSEvents streams (one per
// registered root) into a single ordered queue that the run loop drains.
// This mirrors the "dispatch queue" role that Grand Central Dispatch would
// play in a Cocoa host: a single serialized point where classification and
// callback dispatch happen, decoupled from however many streams are live.
type engineDarwin struct {
	config   Config
	callback *CallbackBridge
	host     *Host

	registry *watchRegistryDarwin
	queue    chan darwinEvent
	wg       sync.WaitGroup

	shutdownOnce sync.Once
}

func newEngineForPlatform(config Config, callback *CallbackBridge, host *Host) (engine, error) {
	return &engineDarwin{
		config:   config,
		callback: callback,
		host:     host,
		registry: newWatchRegistryDarwin(),
		queue:    make(chan darwinEvent, darwinQueueCapacity),
	}, nil
}

func (e *engineDarwin) initialize() error {
	e.host.Log(LogLevelConfig, "fsevents engine initialized (latency=%dms)", e.config.Darwin.LatencyMillis)
	return nil
}

// run drains the shared queue until requestShutdown has stopped every
// stream, drained their forwarders, and closed the queue. Draining continues
// until the channel is empty and closed, so every event queued before
// shutdown was requested is still dispatched.
func (e *engineDarwin) run() error {
	for ev := range e.queue {
		e.dispatch(ev)
	}
	return nil
}

func (e *engineDarwin) dispatch(ev darwinEvent) {
	path := string(ev.event.Path)
	switch classifyFSEvents(ev.event.Flags) {
	case classifyCreated:
		e.callback.ReportChangeEvent(ChangeKindCreated, path)
	case classifyRemoved:
		e.callback.ReportChangeEvent(ChangeKindRemoved, path)
	case classifyModified:
		e.callback.ReportChangeEvent(ChangeKindModified, path)
	case classifyInvalidated:
		e.callback.ReportChangeEvent(ChangeKindInvalidated, path)
	case classifyOverflow:
		e.callback.ReportOverflow(string(ev.root))
	case classifyIgnore:
		// Pure bookkeeping flags (directory/file-kind bits, UserDropped,
		// OwnEvent, ...): nothing a consumer needs to hear about.
	default:
		e.callback.ReportUnknownEvent(path)
	}
}

func (e *engineDarwin) registerPaths(paths []string) error {
	for _, p := range paths {
		key := NormalizeWatchPath(p)
		if err := e.startWatch(key, p); err != nil {
			return err
		}
	}
	return nil
}

func (e *engineDarwin) startWatch(key WatchedPath, rawPath string) error {
	rawEvents := make(chan []fsevents.Event, 64)
	stream := &fsevents.EventStream{
		Events:  rawEvents,
		Paths:   []string{rawPath},
		Latency: time.Duration(e.config.Darwin.LatencyMillis) * time.Millisecond,
		Flags:   fsevents.WatchRoot | fsevents.FileEvents,
	}

	ctx, cancel := context.WithCancel(context.Background())
	handle := &watchHandleDarwin{path: key, stream: stream, cancel: cancel}
	if err := e.registry.register(key, handle); err != nil {
		cancel()
		return err
	}

	stream.Start()

	e.wg.Add(1)
	go e.forward(key, rawEvents, ctx)

	return nil
}

// forward copies batched events from one stream's raw channel onto the
// shared queue until the stream is stopped (rawEvents closes) or the
// forwarder is cancelled directly.
func (e *engineDarwin) forward(root WatchedPath, rawEvents chan []fsevents.Event, ctx context.Context) {
	defer e.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-rawEvents:
			if !ok {
				return
			}
			for _, ev := range batch {
				select {
				case e.queue <- darwinEvent{root: root, event: ev}:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

func (e *engineDarwin) unregisterPaths(paths []string) (bool, error) {
	allOK := true
	for _, p := range paths {
		key := NormalizeWatchPath(p)
		handle, ok := e.registry.unregister(key)
		if !ok {
			allOK = false
			continue
		}
		handle.stream.Stop()
		handle.cancel()
	}
	return allOK, nil
}

// requestShutdown stops every live stream, cancels its forwarder, waits for
// all forwarders to exit (so no stream can push another event), and only
// then closes the shared queue. This ordering guarantees run dispatches every
// event that reached the shared queue, including any a stream delivered
// between the request and its forwarder's cancellation, and that nothing is
// queued after the queue is closed.
func (e *engineDarwin) requestShutdown() {
	e.shutdownOnce.Do(func() {
		go func() {
			for _, h := range e.registry.all() {
				h.stream.Stop()
				h.cancel()
			}
			e.wg.Wait()
			close(e.queue)
		}()
	})
}

func (e *engineDarwin) String() string {
	return "engine(darwin/fsevents)"
}

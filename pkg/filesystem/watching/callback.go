package watching

import (
	"fmt"
)

// Callback is the capability an engine dispatches into. It is implemented by
// the consumer and is explicitly out of this package's scope to implement —
// only to call.
//
// All methods are invoked strictly from the engine's own goroutine, and in
// the order the engine classified the underlying kernel events.
type Callback interface {
	// ReportChangeEvent reports a classified change at path.
	ReportChangeEvent(kind ChangeKind, path string)
	// ReportUnknownEvent reports that a kernel event at path didn't map to
	// any recognized ChangeKind.
	ReportUnknownEvent(path string)
	// ReportOverflow reports that the kernel dropped events for the watch
	// root at path; the watch remains live and the consumer should rescan.
	ReportOverflow(path string)
	// ReportFailure reports a non-fatal engine failure.
	ReportFailure(message string)
	// ReportTermination reports that the engine's run loop has exited. It is
	// the last call the engine will ever make into Callback.
	ReportTermination()
}

// CallbackBridge serializes dispatch into a Callback and isolates the engine
// from misbehaving host callbacks: a panic raised by Callback is recovered,
// logged at SEVERE, and discarded rather than propagating into (or
// disturbing) the engine loop.
//
// CallbackBridge does not reorder calls relative to the order in which its
// own methods are invoked; callers are responsible for invoking it in
// classification order.
type CallbackBridge struct {
	callback Callback
	host     *Host
}

// NewCallbackBridge constructs a bridge around the given callback.
func NewCallbackBridge(callback Callback, host *Host) *CallbackBridge {
	return &CallbackBridge{callback: callback, host: host}
}

// guard recovers a panic from fn, logging it at SEVERE rather than letting it
// unwind into the engine's run loop.
func (b *CallbackBridge) guard(operation string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			b.host.Log(LogLevelSevere, "callback panic during %s: %v", operation, r)
		}
	}()
	fn()
}

// ReportChangeEvent dispatches a classified change event.
func (b *CallbackBridge) ReportChangeEvent(kind ChangeKind, path string) {
	b.guard("ReportChangeEvent", func() { b.callback.ReportChangeEvent(kind, path) })
}

// ReportUnknownEvent dispatches an unrecognized kernel event.
func (b *CallbackBridge) ReportUnknownEvent(path string) {
	b.guard("ReportUnknownEvent", func() { b.callback.ReportUnknownEvent(path) })
}

// ReportOverflow dispatches an overflow notification for the given root.
func (b *CallbackBridge) ReportOverflow(path string) {
	b.guard("ReportOverflow", func() { b.callback.ReportOverflow(path) })
}

// ReportFailure dispatches a non-fatal failure message.
func (b *CallbackBridge) ReportFailure(err error) {
	message := err.Error()
	b.guard("ReportFailure", func() { b.callback.ReportFailure(message) })
}

// ReportFailuref dispatches a formatted non-fatal failure message.
func (b *CallbackBridge) ReportFailuref(format string, args ...interface{}) {
	b.ReportFailure(fmt.Errorf(format, args...))
}

// ReportTermination dispatches the terminal callback. After this call
// returns, the bridge must not be used again.
func (b *CallbackBridge) ReportTermination() {
	b.guard("ReportTermination", b.callback.ReportTermination)
}

package watching

// ChangeKind is a closed, integer-tagged enumeration of the change kinds that
// can be reported via Callback.ReportChangeEvent. Its values are wire-stable:
// they're handed across the Callback boundary as plain integers, so existing
// values must never be renumbered.
type ChangeKind uint8

const (
	// ChangeKindCreated indicates that an item was created.
	ChangeKindCreated ChangeKind = 0
	// ChangeKindRemoved indicates that an item was removed.
	ChangeKindRemoved ChangeKind = 1
	// ChangeKindModified indicates that an item's content or metadata was
	// modified.
	ChangeKindModified ChangeKind = 2
	// ChangeKindInvalidated indicates that the watched root's identity
	// changed (unmounted, moved, or its root changed) and the subscription
	// may no longer be valid.
	ChangeKindInvalidated ChangeKind = 3
)

// String returns a human-readable representation of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeKindCreated:
		return "created"
	case ChangeKindRemoved:
		return "removed"
	case ChangeKindModified:
		return "modified"
	case ChangeKindInvalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}

// classification is the result of running a backend's event classifier. It is
// a superset of ChangeKind: classifiers additionally distinguish Unknown,
// Overflow, and Ignore, which are not reported as ChangeKind values but
// either dispatched through a distinct Callback method (Unknown, Overflow) or
// dropped entirely (Ignore).
type classification uint8

const (
	classifyCreated     = classification(ChangeKindCreated)
	classifyRemoved     = classification(ChangeKindRemoved)
	classifyModified    = classification(ChangeKindModified)
	classifyInvalidated = classification(ChangeKindInvalidated)
	// classifyUnknown indicates a kernel event whose flags/action don't map to
	// any recognized ChangeKind. Dispatched via Callback.ReportUnknownEvent.
	classifyUnknown classification = 0x80 + iota
	// classifyOverflow indicates that the kernel dropped events and the
	// watch root should be rescanned. Dispatched via Callback.ReportOverflow.
	classifyOverflow
	// classifyIgnore indicates that the raw event carries no information the
	// consumer needs (e.g. a purely internal kernel bookkeeping flag). No
	// callback is invoked.
	classifyIgnore
	// classifyHandleClosed is Linux-specific: it marks an IN_IGNORED event,
	// which is the kernel's acknowledgment that a watch descriptor has been
	// closed (either because we cancelled it or because the kernel closed it
	// unilaterally). It is consumed internally by the engine to update the
	// registry and is never itself dispatched as a callback.
	classifyHandleClosed
)

// changeKind extracts the ChangeKind value. It must only be called when the
// classification is known to be one of the four ChangeKind-valued cases.
func (c classification) changeKind() ChangeKind {
	return ChangeKind(c)
}

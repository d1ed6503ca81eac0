//go:build darwin

package watching

import (
	"github.com/mutagen-io/fsevents"
)

// fsEventsIgnoredFlags are flags that, on their own, carry no information a
// consumer needs: pure file-kind bits and FSEvents bookkeeping flags.
const fsEventsIgnoredFlags = fsevents.ItemIsDir |
	fsevents.ItemIsFile |
	fsevents.ItemIsSymlink |
	fsevents.ItemIsHardlink |
	fsevents.ItemIsLastHardlink |
	fsevents.HistoryDone |
	fsevents.UserDropped |
	fsevents.KernelDropped |
	fsevents.EventIDsWrapped |
	fsevents.OwnEvent

// classifyFSEvents maps a raw FSEvents flag set to a classification. The
// precedence below is load-bearing: evaluate in order, first match wins. In
// particular, rule 4 looks inverted relative to a naive reading of the Apple
// flag names (ItemRenamed|ItemCreated maps to Removed, not Created); this is
// preserved verbatim from the source this behavior was modeled on (see
// DESIGN.md) because deviating would silently change observable behavior for
// existing consumers.
func classifyFSEvents(flags fsevents.EventFlags) classification {
	if flags&^fsEventsIgnoredFlags == 0 {
		return classifyIgnore
	}
	if flags&fsevents.MustScanSubDirs != 0 {
		return classifyOverflow
	}
	if flags&(fsevents.RootChanged|fsevents.Mount|fsevents.Unmount) != 0 {
		return classifyInvalidated
	}
	if flags&fsevents.ItemRenamed != 0 {
		if flags&fsevents.ItemCreated != 0 {
			return classifyRemoved
		}
		return classifyCreated
	}
	if flags&fsevents.ItemModified != 0 {
		return classifyModified
	}
	if flags&fsevents.ItemRemoved != 0 {
		return classifyRemoved
	}
	if flags&(fsevents.ItemInodeMetaMod|fsevents.ItemFinderInfoMod|fsevents.ItemChangeOwner|fsevents.ItemXattrMod) != 0 {
		return classifyModified
	}
	if flags&fsevents.ItemCreated != 0 {
		return classifyCreated
	}
	return classifyUnknown
}

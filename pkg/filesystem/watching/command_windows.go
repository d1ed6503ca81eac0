//go:build windows

package watching

import (
	"time"

	"github.com/mutagen-io/filewatcher/pkg/timeutil"
)

// command is a unit of registry-mutating work that must run on the engine's
// own run-loop iteration rather than on the calling goroutine. On the
// platform this backend is modeled on, such cross-thread dispatch is done
// with QueueUserAPC against the engine's OS thread; that primitive has no
// direct, test-without-a-build-step equivalent in pure Go, so dispatch here
// is a channel handoff guarded by a timeout instead (see DESIGN.md). The
// observable contract is the same either way: registerPaths,
// unregisterPaths, and requestShutdown never touch handle state directly,
// and a command that the run loop cannot get to within its timeout fails
// with ErrExecutionTimedOut rather than blocking the caller forever.
type command struct {
	fn   func() error
	done chan error
}

func newCommand(fn func() error) *command {
	return &command{fn: fn, done: make(chan error, 1)}
}

// submitCommand posts cmd to the engine's command channel and waits up to timeout
// for it to execute. A non-positive timeout waits indefinitely. The same
// budget applies independently to each leg (post, then completion), reusing
// a single timer across both rather than allocating two.
func submitCommand(commands chan<- *command, cmd *command, timeout time.Duration) error {
	if timeout <= 0 {
		commands <- cmd
		return <-cmd.done
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case commands <- cmd:
	case <-timer.C:
		return ErrExecutionTimedOut
	}

	timeutil.StopAndDrainTimer(timer)
	timer.Reset(timeout)

	select {
	case err := <-cmd.done:
		return err
	case <-timer.C:
		return ErrExecutionTimedOut
	}
}

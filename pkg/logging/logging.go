package logging

import (
	"log"
	"os"
)

func init() {
	// Set the global logger to use standard error, since this is a daemon-like
	// component whose stdout may be used for other purposes by callers.
	log.SetOutput(os.Stderr)
}

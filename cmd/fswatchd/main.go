package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mutagen-io/filewatcher/pkg/buildinfo"
	"github.com/mutagen-io/filewatcher/pkg/cmd"
	"github.com/mutagen-io/filewatcher/pkg/filesystem/watching"
	"github.com/mutagen-io/filewatcher/pkg/logging"
)

// printingCallback implements watching.Callback by writing each reported
// event to standard output; it's the terminal demo sink for this command.
type printingCallback struct {
	done chan struct{}
}

func (c *printingCallback) ReportChangeEvent(kind watching.ChangeKind, path string) {
	fmt.Printf("%s: %s\n", kind, path)
}

func (c *printingCallback) ReportUnknownEvent(path string) {
	fmt.Printf("unknown: %s\n", path)
}

func (c *printingCallback) ReportOverflow(path string) {
	fmt.Printf("overflow, rescan recommended: %s\n", path)
}

func (c *printingCallback) ReportFailure(message string) {
	cmd.Warning(message)
}

func (c *printingCallback) ReportTermination() {
	close(c.done)
}

var rootConfiguration struct {
	// latency is the FSEvents coalescing latency, in milliseconds.
	latency int64
	// bufferSize is the Windows per-handle kernel buffer size, in bytes.
	bufferSize int
	// help indicates whether or not to show help information and exit.
	help bool
}

func rootMain(command *cobra.Command, arguments []string) error {
	if len(arguments) == 0 {
		return command.Help()
	}

	config := watching.DefaultConfig()
	config.Darwin.LatencyMillis = rootConfiguration.latency
	config.Windows.EventBufferBytes = rootConfiguration.bufferSize

	callback := &printingCallback{done: make(chan struct{})}
	logger := logging.RootLogger.Sublogger("fswatchd")

	watcher, err := watching.StartWatcher(config, callback, logger)
	if err != nil {
		return errors.Wrap(err, "unable to construct watcher")
	}

	runErrors := make(chan error, 1)
	go func() { runErrors <- watcher.Run() }()

	if err := watcher.RegisterPaths(arguments); err != nil {
		watcher.Shutdown()
		<-runErrors
		return errors.Wrap(err, "unable to register paths")
	}
	for _, path := range arguments {
		fmt.Println("Watching", path)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	select {
	case <-signals:
		watcher.Shutdown()
	case err := <-runErrors:
		return errors.Wrap(err, "watch engine terminated unexpectedly")
	}

	<-callback.done
	return <-runErrors
}

var rootCommand = &cobra.Command{
	Use:          "fswatchd <path>...",
	Short:        "Watch one or more paths for filesystem changes and print them",
	Version:      buildinfo.Version,
	Run:          cmd.Mainify(rootMain),
	SilenceUsage: true,
}

func init() {
	flags := rootCommand.Flags()
	flags.BoolVarP(&rootConfiguration.help, "help", "h", false, "Show help information")
	flags.Int64Var(&rootConfiguration.latency, "latency", 10, "FSEvents coalescing latency in milliseconds (macOS only)")
	flags.IntVar(&rootConfiguration.bufferSize, "buffer-size", 64*1024, "Per-handle kernel event buffer size in bytes (Windows only)")
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		cmd.Fatal(err)
	}
}

// Command litmus-sb runs the store-buffering litmus test until interrupted,
// or for a fixed number of trials.
package main

import (
	"os"

	"github.com/ehrlich-b/go-litmus/internal/cli"
	"github.com/ehrlich-b/go-litmus/internal/logging"
)

func main() {
	// Until the command configures its own logger, log synchronously so a
	// flag error is not lost on exit.
	logConfig := logging.DefaultConfig()
	logConfig.Sync = true
	logging.SetDefault(logging.NewLogger(logConfig))

	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		logging.Error("litmus-sb failed", "error", err.Error())
		os.Exit(cli.GetExitCode(err))
	}
}

// Command gatefixd runs the gatefix Engine, grounded on the teacher's
// cmd/dittofs entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/coriolisfix/gatefix/cmd/gatefixd/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

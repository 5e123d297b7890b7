// Command gatefixctl is a remote management client for a running gatefix
// Engine's admin REST API, grounded on the teacher's cmd/dfsctl entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/coriolisfix/gatefix/cmd/gatefixctl/commands"
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

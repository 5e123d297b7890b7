// Package library implements gatefixctl's "library" command group.
package library

import "github.com/spf13/cobra"

// Cmd is the "library" command group's root.
var Cmd = &cobra.Command{
	Use:     "library",
	Aliases: []string{"libraries"},
	Short:   "Inspect the registered-library roster",
}

func init() {
	Cmd.AddCommand(listCmd)
}

// Package session implements gatefixctl's "session" command group.
package session

import "github.com/spf13/cobra"

// Cmd is the "session" command group's root.
var Cmd = &cobra.Command{
	Use:   "session",
	Short: "Initiate sessions and poll their replies",
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(replyCmd)
}

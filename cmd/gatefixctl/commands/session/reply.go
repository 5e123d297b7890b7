package session

import (
	"os"

	"github.com/coriolisfix/gatefix/cmd/gatefixctl/cmdutil"
	"github.com/coriolisfix/gatefix/internal/cli/output"
	"github.com/spf13/cobra"
)

var replyCmd = &cobra.Command{
	Use:   "reply <reply-id>",
	Short: "Poll a previously-submitted operation's reply",
	Args:  cobra.ExactArgs(1),
	RunE:  runReply,
}

func runReply(cmd *cobra.Command, args []string) error {
	status, err := cmdutil.GetClient().Reply(args[0])
	if err != nil {
		return err
	}

	if cmdutil.Flags.Output == "json" {
		return cmdutil.PrintJSON(os.Stdout, status)
	}

	return output.SimpleTable(os.Stdout, [][2]string{
		{"ID", status.ID},
		{"OPERATION", status.Operation},
		{"STATE", status.State},
		{"ERROR", status.Error},
	})
}

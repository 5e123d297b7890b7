package library

import (
	"fmt"
	"os"

	"github.com/coriolisfix/gatefix/cmd/gatefixctl/cmdutil"
	"github.com/coriolisfix/gatefix/internal/enginelib"
	"github.com/coriolisfix/gatefix/internal/cli/output"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered libraries and their session counts",
	Long: `List every Library process currently registered with the Engine,
its last heartbeat, and how many sessions it owns.

Examples:
  gatefixctl library list
  gatefixctl library list -o json`,
	RunE: runList,
}

// libraryTable renders enginelib.ControlNotification as a table.
type libraryTable []enginelib.LibraryInfo

func (t libraryTable) Headers() []string {
	return []string{"LIBRARY_ID", "SESSION_COUNT", "LAST_HEARTBEAT"}
}

func (t libraryTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, l := range t {
		rows = append(rows, []string{
			fmt.Sprintf("%d", l.LibraryID),
			fmt.Sprintf("%d", l.SessionCount),
			l.LastHeartbeat.Format("2006-01-02 15:04:05"),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	snapshot, err := cmdutil.GetClient().Libraries()
	if err != nil {
		return err
	}

	if cmdutil.Flags.Output == "json" {
		return cmdutil.PrintJSON(os.Stdout, snapshot)
	}
	return output.PrintTable(os.Stdout, libraryTable(snapshot.Libraries))
}

// Package commands implements gatefixctl's CLI commands.
package commands

import (
	librarycmd "github.com/coriolisfix/gatefix/cmd/gatefixctl/commands/library"
	sessioncmd "github.com/coriolisfix/gatefix/cmd/gatefixctl/commands/session"
	"github.com/coriolisfix/gatefix/cmd/gatefixctl/cmdutil"
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "gatefixctl",
	Short: "gatefixctl - remote management client for a gatefix Engine",
	Long: `gatefixctl manages a running gatefix Engine through its admin REST API:
initiating sessions, polling replies, and listing the registered-library
roster.

Use "gatefixctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmdutil.Flags.ServerURL, _ = cmd.Flags().GetString("server")
		cmdutil.Flags.Output, _ = cmd.Flags().GetString("output")
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("server", "http://localhost:8090", "gatefix admin API base URL")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (table|json)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(librarycmd.Cmd)
	rootCmd.AddCommand(sessioncmd.Cmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Printf("gatefixctl %s (commit: %s, built: %s)\n", Version, Commit, Date)
		return nil
	},
}

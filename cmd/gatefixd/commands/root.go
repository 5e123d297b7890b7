// Package commands implements gatefixd's CLI commands, grounded on the
// teacher's cmd/dittofs/commands package.
package commands

import "github.com/spf13/cobra"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "gatefixd",
	Short: "gatefixd - a low-latency FIX / iLink3 messaging gateway",
	Long: `gatefixd runs the gateway Engine: it owns wire sessions, the sequence
store, and the Reply Registry, and hands completed requests off to a
Library process over the Engine<->Library protocol.

Use "gatefixd [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: $XDG_CONFIG_HOME/gatefix/config.yaml)")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

// GetConfigFile returns the --config flag's value.
func GetConfigFile() string {
	return configFile
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Printf("gatefixd %s (commit: %s, built: %s)\n", Version, Commit, Date)
		return nil
	},
}

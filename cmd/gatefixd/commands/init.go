package commands

import (
	"fmt"
	"os"

	"github.com/coriolisfix/gatefix/internal/cli/prompt"
	"github.com/coriolisfix/gatefix/pkg/config"
	"github.com/spf13/cobra"
)

var force bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Write a default configuration file to the given path, or to
$XDG_CONFIG_HOME/gatefix/config.yaml if --config is not set.

Examples:
  gatefixd init
  gatefixd init --config /etc/gatefix/config.yaml --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := GetConfigFile()
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil {
		overwrite, err := prompt.ConfirmWithForce(fmt.Sprintf("%s already exists, overwrite it?", path), force)
		if err != nil {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite): %w", path, err)
		}
		if !overwrite {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted, existing config left untouched.")
			return nil
		}
	}

	cfg := config.GetDefaultConfig()
	cfg.ControlPlaneSecret = "change-me"
	if err := config.SaveConfig(cfg, path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
	fmt.Fprintln(cmd.OutOrStdout(), "Set GATEFIX_CONTROLPLANE_SECRET before starting gatefixd in production.")
	return nil
}

// Package configcmder provides the config command for managing persistent
// mousetron configuration stored in the .mousetron/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aircode610/MouseTron/pkg/cliui"
	"github.com/aircode610/MouseTron/pkg/config"
)

const configLongDesc string = `Manage persistent mousetron configuration.

Configuration is stored as config.toml in the .mousetron/ directory and
provides default values for command flags. CLI flags and MOUSETRON_*
environment variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  memory.k, memory.t, memory.nr, memory.nf, memory.ns,
  memory.max_block_len, memory.containers_dir,
  storage.sqlite_path, storage.postgres_dsn,
  api.listen, client.api_target,
  catalog.path, catalog.watch, artifacts.dir,
  events.provider, events.brokers, events.topic

Use subcommands to get, set, or list configuration values:
  mousetron config set <key> <value>    Set a configuration value
  mousetron config get <key>            Get a configuration value
  mousetron config list                 List all configuration values

Examples:
  mousetron config set memory.k 20
  mousetron config set events.brokers localhost:9092,localhost:9093
  mousetron config get memory.k
  mousetron config list`

const configShortDesc string = "Manage persistent mousetron configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func checkKey(key string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}
	return nil
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func printTarget(out io.Writer, cfger *config.Configer) {
	if target := cfger.GetTarget(); target != "" {
		fmt.Fprintf(out, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
		return
	}
	fmt.Fprintf(out, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
}

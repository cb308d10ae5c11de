// Package statuscmder provides the status command for displaying the state of
// the memory containers.
package statuscmder

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aircode610/MouseTron/cmd/mousetron/bootstrap"
	"github.com/aircode610/MouseTron/pkg/cliui"
	"github.com/aircode610/MouseTron/pkg/config"
	"github.com/aircode610/MouseTron/pkg/memory/local"
)

type statusCommander struct {
	containersDir string
}

var statusFlags = []string{
	config.FlagContainersDir,
}

const statusLongDesc string = `Show the state of the memory containers.

Loads the memory containers from the .mousetron/ directory (or the configured
containers directory) and prints their sizes next to the configured
capacities. Loading never changes memory unless a container needs repair.

Examples:
  mousetron status`

const statusShortDesc string = "Show memory container state"

func NewStatusCmd() *cobra.Command {
	cmder := &statusCommander{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagContainersDir, &cmder.containersDir)

	return cmd
}

func (c *statusCommander) run(cmd *cobra.Command) error {
	cfg, err := bootstrap.Config(cmd, statusFlags...)
	if err != nil {
		return err
	}

	mem, err := bootstrap.Memory(cmd.Context(), cmd, cfg, bootstrap.Logger(cmd))
	if err != nil {
		return err
	}

	Print(cmd.OutOrStdout(), mem.Config(), mem.Stats())
	return nil
}

// Print writes container sizes against their capacities.
func Print(out io.Writer, cfg local.Config, stats local.Stats) {
	row := func(key, value string) {
		fmt.Fprintf(out, "  %s  %s\n", cliui.KeyStyle.Render(fmt.Sprintf("%-18s", key)), cliui.ValueStyle.Render(value))
	}
	ratio := func(n, capacity int) string {
		return fmt.Sprintf("%d / %d", n, capacity)
	}

	fmt.Fprintln(out)
	row("Tools:", strconv.Itoa(stats.Tools))
	row("Blocks recorded:", strconv.Itoa(stats.Blocks))
	row("History records:", strconv.Itoa(stats.HistoryLen))
	row("Recent window:", ratio(stats.WindowBlocks, cfg.K))
	row("Frequency table:", ratio(stats.TableEntries, cfg.T))
	row("Single tools:", ratio(stats.SingleTools, cfg.NS))
	fmt.Fprintln(out)

	if stats.Blocks == 0 {
		fmt.Fprintf(out, "  %s No executions recorded yet.\n\n", cliui.DimStyle.Render("●"))
	}
}

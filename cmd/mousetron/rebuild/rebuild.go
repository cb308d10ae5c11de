// Package rebuildcmder provides the rebuild command.
package rebuildcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aircode610/MouseTron/cmd/mousetron/bootstrap"
	"github.com/aircode610/MouseTron/pkg/cliui"
	"github.com/aircode610/MouseTron/pkg/config"
)

type rebuildCommander struct {
	containersDir string
	windowSize    uint
	tableSize     uint
}

var rebuildFlags = []string{
	config.FlagContainersDir,
	config.FlagWindowSize,
	config.FlagTableSize,
}

const rebuildLongDesc string = `Rebuild memory from the history log.

Discards the recent-block window, the frequency table and the single-tool
tracker, then replays every execution in the append-only history log under
the current configuration. Tool ids are preserved. Use this after changing
memory.k, memory.t or memory.max_block_len.

Examples:
  mousetron rebuild
  mousetron rebuild --table-size 100`

const rebuildShortDesc string = "Rebuild memory from the history log"

func NewRebuildCmd() *cobra.Command {
	cmder := &rebuildCommander{}

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: rebuildShortDesc,
		Long:  rebuildLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagContainersDir, &cmder.containersDir)
	config.AddUintFlag(cmd, config.Flags, config.FlagWindowSize, &cmder.windowSize)
	config.AddUintFlag(cmd, config.Flags, config.FlagTableSize, &cmder.tableSize)

	return cmd
}

func (c *rebuildCommander) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := bootstrap.Config(cmd, rebuildFlags...)
	if err != nil {
		return err
	}
	log := bootstrap.Logger(cmd)

	mem, err := bootstrap.Memory(ctx, cmd, cfg, log)
	if err != nil {
		return err
	}

	var replayed int
	err = cliui.Step(out, "Replaying history log", func() error {
		var err error
		replayed, err = mem.Rebuild(ctx)
		return err
	})
	if err != nil {
		return err
	}

	stats := mem.Stats()
	fmt.Fprintf(out, "  %s %s\n",
		cliui.KeyStyle.Render("Replayed:"),
		cliui.ValueStyle.Render(fmt.Sprintf("%d of %d executions", replayed, stats.HistoryLen)),
	)
	fmt.Fprintf(out, "  %s %s\n",
		cliui.KeyStyle.Render("Frequency entries:"),
		cliui.ValueStyle.Render(fmt.Sprintf("%d", stats.TableEntries)),
	)
	return nil
}

// Package historycmder provides the history command, which lists stored
// executions and summary statistics.
package historycmder

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aircode610/MouseTron/api/client"
	"github.com/aircode610/MouseTron/cmd/mousetron/bootstrap"
	"github.com/aircode610/MouseTron/pkg/cliui"
	"github.com/aircode610/MouseTron/pkg/config"
	"github.com/aircode610/MouseTron/pkg/storage"
	"github.com/aircode610/MouseTron/pkg/utils"
)

// ErrNoDatabase is returned in local mode when no execution database is
// configured.
var ErrNoDatabase = errors.New("no execution database configured: set --sqlite, --postgres or storage.sqlite_path")

type historyCommander struct {
	limit       int
	all         bool
	remote      bool
	apiTarget   string
	sqlitePath  string
	postgresDSN string
}

var historyFlags = []string{
	config.FlagAPITarget,
	config.FlagSQLite,
	config.FlagPostgres,
}

const historyLongDesc string = `List stored executions, newest first.

Every execution received by the server (or recorded locally with a database
configured) is stored with its ordered tool names. The listing is followed by
totals, the number of unique combinations and the most common combination.

Examples:
  mousetron history
  mousetron history --limit 50
  mousetron history --all --sqlite ~/.mousetron/mousetron.sqlite
  mousetron history --remote`

const historyShortDesc string = "List stored executions"

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", 20, "Number of executions to show")
	cmd.Flags().BoolVar(&cmder.all, "all", false, "Show every stored execution")
	cmd.Flags().BoolVarP(&cmder.remote, "remote", "r", false, "Query a running server")
	cmd.MarkFlagsMutuallyExclusive("all", "remote")
	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &cmder.apiTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)

	return cmd
}

func (c *historyCommander) run(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cfg, err := bootstrap.Config(cmd, historyFlags...)
	if err != nil {
		return err
	}

	var (
		execs []*storage.Execution
		stats *storage.Stats
	)

	if c.remote {
		api, err := client.New(cfg.Client.APITarget)
		if err != nil {
			return err
		}
		if execs, err = api.Recent(ctx, c.limit); err != nil {
			return err
		}
		if stats, err = api.Stats(ctx); err != nil {
			return err
		}
	} else {
		if !bootstrap.HasPersistentStorage(cfg) {
			return ErrNoDatabase
		}
		store, err := bootstrap.Storage(ctx, cfg, bootstrap.Logger(cmd))
		if err != nil {
			return err
		}
		defer store.Close()

		if c.all {
			execs, err = store.All(ctx)
		} else {
			execs, err = store.Recent(ctx, c.limit)
		}
		if err != nil {
			return fmt.Errorf("reading executions: %w", err)
		}
		if stats, err = store.Stats(ctx); err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}
	}

	Print(cmd.OutOrStdout(), execs, stats, cliui.Width(cmd.OutOrStdout(), 100))
	return nil
}

// Print writes the execution listing followed by the stats summary. Tool
// lists are truncated to fit width.
func Print(out io.Writer, execs []*storage.Execution, stats *storage.Stats, width int) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n\n", cliui.HeaderStyle.Render("Executions"))

	if len(execs) == 0 {
		fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render("No executions stored yet."))
	}

	// "  #1234  2006-01-02 15:04:05  (3)  " prefix
	toolWidth := max(width-42, 20)
	for _, e := range execs {
		fmt.Fprintf(out, "  %s  %s  %s  %s\n",
			cliui.KeyStyle.Render(fmt.Sprintf("#%-5d", e.ID)),
			cliui.DimStyle.Render(e.Timestamp.Local().Format("2006-01-02 15:04:05")),
			cliui.DimStyle.Render(fmt.Sprintf("(%d)", e.StepCount)),
			cliui.ValueStyle.Render(utils.Truncate(strings.Join(e.Steps, ", "), toolWidth)),
		)
	}
	if len(execs) > 0 {
		fmt.Fprintln(out)
	}

	if stats == nil {
		return
	}

	fmt.Fprintf(out, "  %s\n\n", cliui.HeaderStyle.Render("Stats"))
	fmt.Fprintf(out, "  %s %d\n", cliui.KeyStyle.Render("Total executions:   "), stats.Total)
	fmt.Fprintf(out, "  %s %d\n", cliui.KeyStyle.Render("Unique combinations:"), stats.UniqueCombinations)
	if len(stats.MostCommon) > 0 {
		fmt.Fprintf(out, "  %s %s %s\n",
			cliui.KeyStyle.Render("Most common:        "),
			cliui.ValueStyle.Render(utils.Truncate(strings.Join(stats.MostCommon, ", "), max(width-24, 20))),
			cliui.DimStyle.Render(fmt.Sprintf("(%d times)", stats.MostCommonCount)),
		)
	}
	fmt.Fprintln(out)
}

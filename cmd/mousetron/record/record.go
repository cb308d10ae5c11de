// Package recordcmder provides the record command.
package recordcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aircode610/MouseTron/api/client"
	"github.com/aircode610/MouseTron/cmd/mousetron/bootstrap"
	"github.com/aircode610/MouseTron/pkg/cliui"
	"github.com/aircode610/MouseTron/pkg/config"
)

type recordCommander struct {
	remote        bool
	apiTarget     string
	sqlitePath    string
	containersDir string
	catalogPath   string
	artifactsDir  string
}

var recordFlags = []string{
	config.FlagAPITarget,
	config.FlagSQLite,
	config.FlagContainersDir,
	config.FlagCatalog,
	config.FlagArtifactsDir,
}

const recordLongDesc string = `Record one completed execution.

Tool names are given in invocation order; repeated names are allowed.

By default the execution is recorded directly into the local memory
containers. Use --remote to send it to a running "mousetron serve" instead;
do this whenever a server owns the same containers directory.

Examples:
  mousetron record search fetch summarize
  mousetron record --remote create_event get_event_link send_email`

const recordShortDesc string = "Record one execution"

func NewRecordCmd() *cobra.Command {
	cmder := &recordCommander{}

	cmd := &cobra.Command{
		Use:   "record <tool>...",
		Short: recordShortDesc,
		Long:  recordLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}

	cmd.Flags().BoolVarP(&cmder.remote, "remote", "r", false, "Send the execution to a running server")
	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &cmder.apiTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagContainersDir, &cmder.containersDir)
	config.AddStringFlag(cmd, config.Flags, config.FlagCatalog, &cmder.catalogPath)
	config.AddStringFlag(cmd, config.Flags, config.FlagArtifactsDir, &cmder.artifactsDir)

	return cmd
}

func (c *recordCommander) run(cmd *cobra.Command, tools []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := bootstrap.Config(cmd, recordFlags...)
	if err != nil {
		return err
	}

	if c.remote {
		api, err := client.New(cfg.Client.APITarget)
		if err != nil {
			return err
		}
		resp, err := api.Record(ctx, tools)
		if err != nil {
			return err
		}
		printRecorded(out, resp.ToolCount, resp.ExecutionID)
		return nil
	}

	log := bootstrap.Logger(cmd)
	svc, err := bootstrap.LocalService(ctx, cmd, cfg, log)
	if err != nil {
		return err
	}

	result, err := svc.Record(ctx, tools)
	if closeErr := svc.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	var id int64
	if result.Execution != nil {
		id = result.Execution.ID
	}
	printRecorded(out, len(result.Tools), id)
	return nil
}

func printRecorded(w io.Writer, count int, id int64) {
	fmt.Fprintf(w, "  %s Recorded %s\n",
		cliui.SuccessMark,
		cliui.ValueStyle.Render(fmt.Sprintf("%d tools", count)),
	)
	if id > 0 {
		fmt.Fprintf(w, "  %s %s\n", cliui.KeyStyle.Render("Execution:"), cliui.DimStyle.Render(fmt.Sprintf("#%d", id)))
	}
}

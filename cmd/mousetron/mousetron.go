// Package mousetroncmder provides the root mousetron command.
package mousetroncmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/aircode610/MouseTron/cmd/mousetron/config"
	historycmder "github.com/aircode610/MouseTron/cmd/mousetron/history"
	initcmder "github.com/aircode610/MouseTron/cmd/mousetron/init"
	rebuildcmder "github.com/aircode610/MouseTron/cmd/mousetron/rebuild"
	recommendcmder "github.com/aircode610/MouseTron/cmd/mousetron/recommend"
	recordcmder "github.com/aircode610/MouseTron/cmd/mousetron/record"
	replaycmder "github.com/aircode610/MouseTron/cmd/mousetron/replay"
	servecmder "github.com/aircode610/MouseTron/cmd/mousetron/serve"
	statuscmder "github.com/aircode610/MouseTron/cmd/mousetron/status"
	versioncmder "github.com/aircode610/MouseTron/cmd/version"
)

const mousetronLongDesc string = `MouseTron learns which tools and tool combinations your agents use
together and recommends what to reach for next.

Run the server and feed it executions:
  mousetron serve                    Run the API and MCP server
  mousetron record search fetch      Record one execution
  mousetron recommend                Show the current recommendations
  mousetron history                  Browse the execution history
  mousetron status                   Show memory container state`

const mousetronShortDesc string = "MouseTron - tool usage recommendations"

func NewMouseTronCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "mousetron",
		Short:        mousetronShortDesc,
		Long:         mousetronLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .mousetron/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(recordcmder.NewRecordCmd())
	cmd.AddCommand(replaycmder.NewReplayCmd())
	cmd.AddCommand(recommendcmder.NewRecommendCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(rebuildcmder.NewRebuildCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}

// Package recommendcmder provides the recommend command.
package recommendcmder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aircode610/MouseTron/api/client"
	"github.com/aircode610/MouseTron/cmd/mousetron/bootstrap"
	"github.com/aircode610/MouseTron/pkg/artifacts"
	"github.com/aircode610/MouseTron/pkg/cliui"
	"github.com/aircode610/MouseTron/pkg/config"
	"github.com/aircode610/MouseTron/pkg/memory"
	"github.com/aircode610/MouseTron/pkg/memory/local"
)

type recommendCommander struct {
	jsonOut       bool
	remote        bool
	fromArtifacts bool
	apiTarget     string
	containersDir string
	catalogPath   string
	artifactsDir  string
}

var recommendFlags = []string{
	config.FlagAPITarget,
	config.FlagContainersDir,
	config.FlagCatalog,
	config.FlagArtifactsDir,
}

const recommendLongDesc string = `Show the current recommendations.

Three ranked lists are printed: combinations frequent in the most recent
executions, long-term stable combinations, and the most recently used
single tools. Reading recommendations never changes memory.

With --from-artifacts the lists are read back from the per-rank files a
server wrote to the artifacts directory instead of from memory.

Examples:
  mousetron recommend
  mousetron recommend --json
  mousetron recommend --remote --api-target http://localhost:8081
  mousetron recommend --from-artifacts --artifacts-dir ./artifacts`

const recommendShortDesc string = "Show the current recommendations"

func NewRecommendCmd() *cobra.Command {
	cmder := &recommendCommander{}

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: recommendShortDesc,
		Long:  recommendLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print recommendations as JSON")
	cmd.Flags().BoolVarP(&cmder.remote, "remote", "r", false, "Query a running server")
	cmd.Flags().BoolVar(&cmder.fromArtifacts, "from-artifacts", false, "Read the last written recommendation artifacts")
	cmd.MarkFlagsMutuallyExclusive("remote", "from-artifacts")
	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &cmder.apiTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagContainersDir, &cmder.containersDir)
	config.AddStringFlag(cmd, config.Flags, config.FlagCatalog, &cmder.catalogPath)
	config.AddStringFlag(cmd, config.Flags, config.FlagArtifactsDir, &cmder.artifactsDir)

	return cmd
}

func (c *recommendCommander) run(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cfg, err := bootstrap.Config(cmd, recommendFlags...)
	if err != nil {
		return err
	}

	var recs *memory.Recommendations
	switch {
	case c.fromArtifacts:
		if cfg.Artifacts.Dir == "" {
			return errors.New("--from-artifacts requires an artifacts directory")
		}
		var skipped int
		recs, skipped, err = artifacts.Read(cfg.Artifacts.Dir)
		if err != nil {
			return err
		}
		if skipped > 0 {
			bootstrap.Logger(cmd).Warn("skipped malformed artifacts",
				"dir", cfg.Artifacts.Dir,
				"skipped", skipped,
			)
		}
	case c.remote:
		api, err := client.New(cfg.Client.APITarget)
		if err != nil {
			return err
		}
		if recs, err = api.Recommendations(ctx); err != nil {
			return err
		}
	default:
		log := bootstrap.Logger(cmd)
		cat, err := bootstrap.Catalog(cfg, log)
		if err != nil {
			return err
		}
		mem, err := bootstrap.Memory(ctx, cmd, cfg, log, local.WithDescriber(cat))
		if err != nil {
			return err
		}
		recs, err = mem.GenerateRecommendations(ctx)
		if err != nil {
			return err
		}
	}

	return Print(cmd.OutOrStdout(), recs, c.jsonOut)
}

// Print writes recs as indented JSON or as markdown, rendered with glamour
// when out is a terminal.
func Print(out io.Writer, recs *memory.Recommendations, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}

	doc := Markdown(recs)
	if cliui.IsTerminal(out) {
		if rendered, err := cliui.RenderMarkdown(doc, cliui.Width(out, 80)); err == nil {
			doc = rendered
		}
	}
	_, err := io.WriteString(out, doc)
	return err
}

// Markdown formats recs as a markdown document.
func Markdown(recs *memory.Recommendations) string {
	var b strings.Builder
	b.WriteString("# Recommendations\n")
	section(&b, "Recent combinations", recs.Recent)
	section(&b, "Stable combinations", recs.Stable)
	section(&b, "Recent single tools", recs.Singles)
	return b.String()
}

func section(b *strings.Builder, title string, items []memory.Item) {
	fmt.Fprintf(b, "\n## %s\n\n", title)
	if len(items) == 0 {
		b.WriteString("_No recommendations yet._\n")
		return
	}
	for i, item := range items {
		fmt.Fprintf(b, "%d. **%s**", i+1, item.ToolName)
		if item.Description != "" {
			fmt.Fprintf(b, ": %s", item.Description)
		}
		b.WriteByte('\n')
	}
}

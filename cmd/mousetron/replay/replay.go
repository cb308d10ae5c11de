// Package replaycmder provides the replay command, which feeds a pattern file
// of executions into memory.
package replaycmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aircode610/MouseTron/cmd/mousetron/bootstrap"
	recommendcmder "github.com/aircode610/MouseTron/cmd/mousetron/recommend"
	"github.com/aircode610/MouseTron/pkg/cliui"
	"github.com/aircode610/MouseTron/pkg/config"
	"github.com/aircode610/MouseTron/pkg/memory"
	"github.com/aircode610/MouseTron/pkg/memory/local"
	"github.com/aircode610/MouseTron/pkg/memory/subseq"
	"github.com/aircode610/MouseTron/pkg/service"
)

type replayCommander struct {
	demo          bool
	sqlitePath    string
	containersDir string
	catalogPath   string
	artifactsDir  string
	windowSize    uint
	tableSize     uint
}

var replayFlags = []string{
	config.FlagSQLite,
	config.FlagContainersDir,
	config.FlagCatalog,
	config.FlagArtifactsDir,
	config.FlagWindowSize,
	config.FlagTableSize,
}

const replayLongDesc string = `Replay a pattern file of executions into memory.

The file holds one execution per line as comma-separated tool names. Blank
lines and separator lines consisting of a single "-" are skipped:

  search, fetch, summarize
  -
  create_event, get_event_link, send_email

With --demo the file is replayed into a fresh in-memory engine and the
resulting recommendations are printed; nothing is persisted.

Examples:
  mousetron replay patterns.txt
  mousetron replay --demo --window-size 5 patterns.txt`

const replayShortDesc string = "Replay a pattern file into memory"

func NewReplayCmd() *cobra.Command {
	cmder := &replayCommander{}

	cmd := &cobra.Command{
		Use:   "replay <file>",
		Short: replayShortDesc,
		Long:  replayLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args[0])
		},
	}

	cmd.Flags().BoolVar(&cmder.demo, "demo", false, "Replay into a throwaway in-memory engine and print recommendations")
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagContainersDir, &cmder.containersDir)
	config.AddStringFlag(cmd, config.Flags, config.FlagCatalog, &cmder.catalogPath)
	config.AddStringFlag(cmd, config.Flags, config.FlagArtifactsDir, &cmder.artifactsDir)
	config.AddUintFlag(cmd, config.Flags, config.FlagWindowSize, &cmder.windowSize)
	config.AddUintFlag(cmd, config.Flags, config.FlagTableSize, &cmder.tableSize)

	return cmd
}

// ParsePatterns reads one block per non-blank line. Names are split on
// commas and trimmed; lines that are blank or a single "-" are skipped.
func ParsePatterns(r io.Reader) ([][]string, error) {
	var blocks [][]string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "-" {
			continue
		}
		names := memory.NormalizeNames(strings.Split(line, ","))
		if len(names) == 0 {
			continue
		}
		blocks = append(blocks, names)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading patterns: %w", err)
	}
	return blocks, nil
}

// Summary counts the outcome of a replay.
type Summary struct {
	Recorded int
	Rejected int
}

// Replay records every block through svc. Over-long blocks are counted and
// skipped; any other error stops the replay.
func Replay(ctx context.Context, svc *service.Service, blocks [][]string) (Summary, error) {
	var sum Summary
	for _, block := range blocks {
		_, err := svc.Record(ctx, block)
		switch {
		case errors.Is(err, subseq.ErrBlockTooLong):
			sum.Rejected++
		case err != nil:
			return sum, err
		default:
			sum.Recorded++
		}
	}
	return sum, nil
}

func (c *replayCommander) run(cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening pattern file: %w", err)
	}
	defer f.Close()

	blocks, err := ParsePatterns(f)
	if err != nil {
		return err
	}
	if len(blocks) == 0 {
		fmt.Fprintf(out, "\n  %s\n\n", cliui.DimStyle.Render("No blocks found in "+path))
		return nil
	}

	cfg, err := bootstrap.Config(cmd, replayFlags...)
	if err != nil {
		return err
	}
	log := bootstrap.Logger(cmd)

	var svc *service.Service
	if c.demo {
		svc, err = demoService(cfg, log)
	} else {
		svc, err = bootstrap.LocalService(cmd.Context(), cmd, cfg, log)
	}
	if err != nil {
		return err
	}

	var sum Summary
	msg := fmt.Sprintf("Replaying %d blocks from %s", len(blocks), path)
	stepErr := cliui.Step(out, msg, func() error {
		var err error
		sum, err = Replay(cmd.Context(), svc, blocks)
		return err
	})

	var recs *memory.Recommendations
	if stepErr == nil && c.demo {
		recs, stepErr = svc.Recommend(cmd.Context())
	}
	if closeErr := svc.Close(); stepErr == nil {
		stepErr = closeErr
	}
	if stepErr != nil {
		return stepErr
	}

	fmt.Fprintf(out, "  %s %s\n",
		cliui.KeyStyle.Render("Recorded:"),
		cliui.ValueStyle.Render(fmt.Sprintf("%d", sum.Recorded)),
	)
	if sum.Rejected > 0 {
		fmt.Fprintf(out, "  %s %s\n",
			cliui.KeyStyle.Render("Rejected:"),
			cliui.DimStyle.Render(fmt.Sprintf("%d (longer than %d tools)", sum.Rejected, cfg.Memory.MaxBlockLen)),
		)
	}

	if recs != nil {
		fmt.Fprintln(out)
		return recommendcmder.Print(out, recs, false)
	}
	return nil
}

// demoService builds a service over a memory-only engine.
func demoService(cfg *config.Config, log *slog.Logger) (*service.Service, error) {
	cat, err := bootstrap.Catalog(cfg, log)
	if err != nil {
		return nil, err
	}
	mem, err := local.New(bootstrap.MemoryConfig(cfg), local.WithLogger(log), local.WithDescriber(cat))
	if err != nil {
		return nil, err
	}
	return service.New(service.Config{
		Memory:      mem,
		MaxBlockLen: mem.Config().MaxBlockLen,
		Logger:      log,
	})
}

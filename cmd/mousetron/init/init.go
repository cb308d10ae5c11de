// Package initcmder provides the init command for initializing a local
// .mousetron directory in the current working directory.
package initcmder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aircode610/MouseTron/pkg/cliui"
	"github.com/aircode610/MouseTron/pkg/config"
)

const (
	dirName = ".mousetron"
)

const initLongDesc string = `Initialize a new .mousetron/ directory in the current working directory.

Creates a local .mousetron/ directory holding a default config.toml. The local
directory takes precedence over ~/.mousetron/ for configuration and memory
containers, which keeps separate memories per project.

Examples:
  mousetron init`

const initShortDesc string = "Initialize a local .mousetron/ directory"

func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}
			return Run(cmd.OutOrStdout(), filepath.Join(cwd, dirName))
		},
	}

	return cmd
}

// Run creates dir with a default config.toml. An existing directory is left
// untouched.
func Run(out io.Writer, dir string) error {
	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		fmt.Fprintf(out, "  %s %s\n", cliui.DimStyle.Render("Already initialized:"), dir)
		return nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", dir, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating .mousetron directory: %w", err)
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return err
	}
	if err := cfger.SaveConfig(config.NewDefaultConfig()); err != nil {
		return err
	}

	fmt.Fprintf(out, "  %s Initialized %s\n", cliui.SuccessMark, cliui.ValueStyle.Render(dir))
	return nil
}

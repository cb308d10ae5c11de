// Package versioncmder
package versioncmder

import (
	"github.com/spf13/cobra"

	"github.com/aircode610/MouseTron/pkg/utils"
)

func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "displays version",
		Long:  "displays the version of this CLI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write([]byte(utils.VersionString()))
			return err
		},
	}

	return cmd
}

// Package versioncmder
package versioncmder

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/mentor/pkg/utils"
)

type VersionCommander struct {
	short bool
	out   io.Writer
}

func NewVersionCmd() *cobra.Command {
	cmder := &VersionCommander{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "displays version",
		Long:  "displays the version, commit and build details of this CLI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.out = cmd.OutOrStdout()
			return cmder.run()
		},
	}

	cmd.Flags().BoolVarP(&cmder.short, "short", "s", false, "Print only the version")

	return cmd
}

func (c *VersionCommander) run() error {
	if c.short {
		fmt.Fprintln(c.out, utils.Version)
		return nil
	}

	fmt.Fprintf(c.out, "Version: %s\nSha: %s\nBuilt at: %s\nGo: %s %s/%s\n",
		utils.Version, utils.Sha, utils.Buildtime,
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return nil
}

package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/mentor/pkg/cliui"
	"github.com/papercomputeco/mentor/pkg/config"
)

const getLongDesc string = `Get a configuration value.

Reads the value for the given key from the config.toml file stored in the
.mentor/ directory, or with --effective the value commands will use. Keys use
dotted notation matching the TOML section structure.

Examples:
  mentor config get generation.provider
  mentor config get watch.dir --effective`

const getShortDesc string = "Get a configuration value"

func newGetCmd() *cobra.Command {
	var effective bool

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: getShortDesc,
		Long:  getLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runGet(cmd.OutOrStdout(), args[0], configDir, effective)
		},
		ValidArgsFunction: completeKeys,
	}

	cmd.Flags().BoolVar(&effective, "effective", false, "Show the resolved value including defaults and environment")

	return cmd
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func unknownKeyError(key string) error {
	return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
		key, strings.Join(config.ValidConfigKeys(), ", "))
}

func runGet(out io.Writer, key, configDir string, effective bool) error {
	if !config.IsValidConfigKey(key) {
		return unknownKeyError(key)
	}

	values, target, err := loadValues(configDir, effective)
	if err != nil {
		return err
	}
	printTarget(out, target)

	if value := values[key]; value == "" {
		fmt.Fprintf(out, "  %s  %s\n\n", cliui.KeyStyle.Render(key), cliui.DimStyle.Render("<not set>"))
	} else {
		fmt.Fprintf(out, "  %s  %s\n\n", cliui.KeyStyle.Render(key), cliui.ValueStyle.Render(value))
	}

	return nil
}

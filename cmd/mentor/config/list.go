package configcmder

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/mentor/pkg/cliui"
	"github.com/papercomputeco/mentor/pkg/config"
)

const listLongDesc string = `List all configuration values.

Displays every configuration key grouped by TOML section, with the value
stored in the config.toml file of the .mentor/ directory. With --effective the
values commands will use are shown instead, after defaults and MENTOR_*
environment variables are applied.

Examples:
  mentor config list
  mentor config list --effective`

const listShortDesc string = "List all configuration values"

func newListCmd() *cobra.Command {
	var effective bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runList(cmd.OutOrStdout(), configDir, effective)
		},
	}

	cmd.Flags().BoolVar(&effective, "effective", false, "Show resolved values including defaults and environment")

	return cmd
}

func runList(out io.Writer, configDir string, effective bool) error {
	values, target, err := loadValues(configDir, effective)
	if err != nil {
		return err
	}
	printTarget(out, target)

	keys := config.ValidConfigKeys()

	// Find the longest key name for alignment.
	maxLen := 0
	for _, k := range keys {
		if len(k) > maxLen {
			maxLen = len(k)
		}
	}

	section := ""
	for _, key := range keys {
		if s, _, _ := strings.Cut(key, "."); s != section {
			section = s
			fmt.Fprintf(out, "  %s\n", cliui.HeaderStyle.Render("["+section+"]"))
		}

		value := values[key]
		if value == "" {
			fmt.Fprintf(out, "    %-*s = %s\n", maxLen, key, cliui.DimStyle.Render("<not set>"))
		} else {
			fmt.Fprintf(out, "    %-*s = %q\n", maxLen, key, value)
		}
	}
	fmt.Fprintln(out)

	return nil
}

// loadValues returns either the file values or the effective values for
// every key, plus the config file path if one exists.
func loadValues(configDir string, effective bool) (map[string]string, string, error) {
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	target := cfger.GetTarget()

	if effective {
		values, err := config.EffectiveValues(configDir)
		if err != nil {
			return nil, "", fmt.Errorf("loading config: %w", err)
		}
		return values, target, nil
	}

	values := make(map[string]string)
	for _, key := range config.ValidConfigKeys() {
		v, err := cfger.GetConfigValue(key)
		if err != nil {
			return nil, "", err
		}
		values[key] = v
	}
	return values, target, nil
}

func printTarget(out io.Writer, target string) {
	fmt.Fprintf(out, "\n  %s %s\n",
		cliui.KeyStyle.Render("Config file:"),
		cliui.DimStyle.Render(target),
	)
	if _, err := os.Stat(target); err != nil {
		fmt.Fprintf(out, "  %s\n", cliui.DimStyle.Render("Not written yet. Using defaults."))
	}
	fmt.Fprintln(out)
}

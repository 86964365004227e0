package configcmder

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/mentor/pkg/cliui"
	"github.com/papercomputeco/mentor/pkg/config"
)

const setLongDesc string = `Set a configuration value.

Sets the given key to the provided value in the config.toml file
stored in the .mentor/ directory. Keys use dotted notation matching
the TOML section structure. Values are checked before they are saved.

watch.dir is stored as an absolute path so the watcher finds it from any
working directory.

Run "mentor config list" to see every key.

Examples:
  mentor config set watch.dir ~/code/exercises
  mentor config set watch.extensions .py,.pyi
  mentor config set generation.max_tokens 500`

const setShortDesc string = "Set a configuration value"

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: setShortDesc,
		Long:  setLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runSet(cmd.OutOrStdout(), args[0], args[1], configDir)
		},
		ValidArgsFunction: completeKeys,
	}

	return cmd
}

func runSet(out io.Writer, key, value, configDir string) error {
	if !config.IsValidConfigKey(key) {
		return unknownKeyError(key)
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	printTarget(out, cfger.GetTarget())

	if key == "watch.dir" {
		value, err = watchDir(out, value)
		if err != nil {
			return err
		}
	}

	if err := cfger.SetConfigValue(key, value); err != nil {
		return err
	}

	fmt.Fprintf(out, "  %s Set %s = %s\n\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(key),
		cliui.ValueStyle.Render(value),
	)
	return nil
}

// watchDir expands a leading ~ and makes dir absolute. A missing directory
// is only warned about since it may be created later.
func watchDir(out io.Writer, dir string) (string, error) {
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}

	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		fmt.Fprintf(out, "  %s %s\n",
			cliui.WarnStyle.Render("!"),
			cliui.DimStyle.Render(abs+" is not a directory yet"),
		)
	}
	return abs, nil
}

// Package initcmder provides the init command for initializing a local .mentor
// directory in the current working directory.
package initcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/mentor/pkg/cliui"
	"github.com/papercomputeco/mentor/pkg/config"
	"github.com/papercomputeco/mentor/pkg/credentials"
)

const dirName = ".mentor"

// gitignore keeps secrets and the conversation out of version control while
// config.toml stays shareable.
const gitignore = `credentials.toml
memory/
memory.sqlite*
instance.*
*.log
`

type initCommander struct {
	preset   string
	watchDir string

	out io.Writer
}

const initLongDesc string = `Initialize a new .mentor/ directory in the current working directory.

Creates a local .mentor/ directory that takes precedence over the default
~/.mentor/ directory for configuration, credentials and conversation memory,
and writes a config.toml and a .gitignore inside it.

This is useful for keeping a separate mentor conversation per project.

--preset accepts a generation provider name (cohere, openai, anthropic,
ollama) or an http(s) URL pointing at a config.toml to download. Re-running
init with a preset overwrites config.toml; without one an existing
config.toml is kept. --watch-dir records the directory "mentor watch" uses
when --dir is not given.

Examples:
  mentor init
  mentor init --preset ollama --watch-dir ./src
  mentor init --preset https://example.com/team/mentor.toml`

const initShortDesc string = "Initialize a local .mentor/ directory"

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.out = cmd.OutOrStdout()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return cmder.run(ctx)
		},
	}

	cmd.Flags().StringVar(&cmder.preset, "preset", "", "Provider preset name or URL of a config.toml")
	cmd.Flags().StringVar(&cmder.watchDir, "watch-dir", "", "Directory to record as watch.dir")

	return cmd
}

func (c *initCommander) run(ctx context.Context) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating .mentor directory: %w", err)
	}
	if err := writeIfMissing(filepath.Join(dir, ".gitignore"), gitignore); err != nil {
		return err
	}

	configPath := filepath.Join(dir, "config.toml")
	_, statErr := os.Stat(configPath)
	if statErr == nil && c.preset == "" && c.watchDir == "" {
		fmt.Fprintf(c.out, "\n  %s Already initialized: %s\n\n", cliui.SuccessMark, cliui.DimStyle.Render(dir))
		return nil
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var cfg *config.Config
	if c.preset == "" && statErr == nil {
		// --watch-dir alone updates the existing config.
		cfg, err = cfger.LoadConfig()
	} else {
		cfg, err = resolvePreset(ctx, c.preset)
	}
	if err != nil {
		return err
	}

	if c.watchDir != "" {
		abs, err := filepath.Abs(c.watchDir)
		if err != nil {
			return fmt.Errorf("resolving watch dir: %w", err)
		}
		cfg.Watch.Dir = abs
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	c.printSummary(dir, cfg)
	return nil
}

func (c *initCommander) printSummary(dir string, cfg *config.Config) {
	fmt.Fprintf(c.out, "\n  %s Initialized %s\n", cliui.SuccessMark, cliui.NameStyle.Render(dir))
	model := cfg.Generation.Model
	if model == "" {
		model = "provider default"
	}
	fmt.Fprintf(c.out, "  %s %s\n",
		cliui.KeyStyle.Render("Generation:"),
		cliui.ValueStyle.Render(cfg.Generation.Provider+" / "+model),
	)
	if cfg.Watch.Dir != "" {
		fmt.Fprintf(c.out, "  %s %s\n", cliui.KeyStyle.Render("Watching:"), cliui.ValueStyle.Render(cfg.Watch.Dir))
	}

	p := cfg.Generation.Provider
	if credentials.IsSupportedProvider(p) {
		fmt.Fprintf(c.out, "\n  %s\n", cliui.DimStyle.Render(
			fmt.Sprintf("Next: run 'mentor auth %s' or set %s", p, credentials.EnvVarForProvider(p))))
	}
	fmt.Fprintln(c.out)
}

func writeIfMissing(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func resolvePreset(ctx context.Context, preset string) (*config.Config, error) {
	switch {
	case preset == "":
		return config.NewDefaultConfig(), nil
	case strings.HasPrefix(preset, "http://"), strings.HasPrefix(preset, "https://"):
		return fetchRemoteConfig(ctx, preset)
	default:
		return config.PresetConfig(preset)
	}
}

func fetchRemoteConfig(ctx context.Context, url string) (*config.Config, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	cfg, err := config.ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, errors.New("empty remote config")
	}

	return cfg, nil
}

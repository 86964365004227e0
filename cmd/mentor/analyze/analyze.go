// Package analyzecmder provides the analyze command for a one-off review.
package analyzecmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/mentor/pkg/app"
	"github.com/papercomputeco/mentor/pkg/config"
	"github.com/papercomputeco/mentor/pkg/logger"
	"github.com/papercomputeco/mentor/pkg/session"
	"github.com/papercomputeco/mentor/pkg/watcher"
)

type analyzeCommander struct {
	configDir string
	debug     bool
	chat      bool

	in  io.Reader
	out io.Writer

	logger *slog.Logger
}

const analyzeLongDesc string = `Analyze a single source file.

The file becomes the subject of the conversation, replacing the stored memory
when its contents differ from the current subject. With --chat a session about
the file opens after the analysis.

Examples:
  mentor analyze main.py
  mentor analyze main.py --chat -p anthropic`

const analyzeShortDesc string = "Analyze a single source file"

func flagKeys() []string {
	keys := append([]string{}, config.StoreFlagKeys...)
	return append(keys, config.GenerationFlagKeys...)
}

func NewAnalyzeCmd() *cobra.Command {
	cmder := &analyzeCommander{}

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: analyzeShortDesc,
		Long:  analyzeLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()

			code, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			if strings.TrimSpace(string(code)) == "" {
				return fmt.Errorf("%w in %s", watcher.ErrEmptyArtifact, args[0])
			}

			settings, err := config.LoadSettings(cmd, flagKeys())
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			return cmder.run(cmd.Context(), settings, string(code))
		},
	}

	cmd.Flags().BoolVarP(&cmder.chat, "chat", "c", false, "Open a chat about the file after the analysis")
	config.AddRegisteredFlags(cmd, config.Flags, flagKeys())

	return cmd
}

func (c *analyzeCommander) run(ctx context.Context, settings *config.Settings, code string) error {
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(true),
		logger.WithWriter(os.Stderr),
	)

	a, err := app.New(ctx, app.Options{
		ConfigDir: c.configDir,
		Settings:  settings,
		Command:   "analyze",
		Logger:    c.logger,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Review(ctx, code, session.NewLineReader(c.in), c.out, c.chat); err != nil {
		return err
	}

	fmt.Fprintln(c.out)
	return nil
}

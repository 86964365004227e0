// Package watchcmder provides the watch command, the mentor's main loop.
package watchcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/mentor/pkg/app"
	"github.com/papercomputeco/mentor/pkg/cliui"
	"github.com/papercomputeco/mentor/pkg/config"
	"github.com/papercomputeco/mentor/pkg/logger"
	"github.com/papercomputeco/mentor/pkg/session"
	"github.com/papercomputeco/mentor/pkg/watcher"
)

type watchCommander struct {
	configDir string
	debug     bool
	logFile   string

	in  io.Reader
	out io.Writer

	logger *slog.Logger
}

const watchLongDesc string = `Watch a directory and review each changed source file.

When a file changes the mentor analyzes it, stores it as the subject of the
conversation and opens a chat about it. Type "exit" to end the chat and go back
to watching. A file with no code in it stops the watcher.

Changes are found by polling every --interval, or with file system
notifications when --mode notify is set (polling stays on as a fallback).

--log-file appends JSON records of every review to a file alongside the
console output.

Examples:
  mentor watch --dir ./src
  mentor watch --dir ./src --log-file ~/.mentor/watch.log
  mentor watch -D ./src --interval 10s --ext .py,.pyi
  mentor watch -D ./src --exclude 'test_*.py,*_pb2.py'
  mentor watch -D ./src --mode notify -p openai`

const watchShortDesc string = "Watch a directory and review changed files"

func flagKeys() []string {
	keys := append([]string{}, config.WatchFlagKeys...)
	keys = append(keys, config.StoreFlagKeys...)
	return append(keys, config.GenerationFlagKeys...)
}

func NewWatchCmd() *cobra.Command {
	cmder := &watchCommander{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: watchShortDesc,
		Long:  watchLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()

			settings, err := config.LoadSettings(cmd, flagKeys())
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			return cmder.run(cmd.Context(), settings)
		},
	}

	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Append JSON logs to this file")
	config.AddRegisteredFlags(cmd, config.Flags, flagKeys())

	return cmd
}

func (c *watchCommander) run(ctx context.Context, settings *config.Settings) error {
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(true),
		logger.WithWriter(os.Stderr),
	)
	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()

		c.logger = logger.Multi(c.logger, logger.New(
			logger.WithDebug(true),
			logger.WithJSON(true),
			logger.WithSource(c.debug),
			logger.WithWriter(f),
		))
	}

	wcfg := watcher.Config{
		Dir:        settings.Watch.Dir,
		Extensions: settings.Watch.Extensions,
		Exclude:    settings.Watch.Exclude,
		Interval:   settings.Watch.Interval,
		Mode:       settings.Watch.Mode,
	}
	if err := wcfg.Validate(); err != nil {
		return err
	}

	a, err := app.New(ctx, app.Options{
		ConfigDir: c.configDir,
		Settings:  settings,
		Command:   "watch",
		Logger:    c.logger,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	lines := session.NewLineReader(c.in)

	w, err := watcher.New(wcfg, func(ctx context.Context, path, code string) error {
		fmt.Fprintf(c.out, "\n  %s %s\n", cliui.StepStyle.Render("Reviewing"), cliui.NameStyle.Render(filepath.Base(path)))
		err := a.Review(ctx, code, lines, c.out, true)
		if errors.Is(err, app.ErrSession) {
			return fmt.Errorf("%w: %w", watcher.ErrPartiallyHandled, err)
		}
		return err
	}, c.logger)
	if err != nil {
		return err
	}
	if err := w.Seed(); err != nil {
		return fmt.Errorf("reading %s: %w", settings.Watch.Dir, err)
	}

	fmt.Fprintf(c.out, "\n  %s %s\n",
		cliui.KeyStyle.Render("Watching:"),
		cliui.ValueStyle.Render(settings.Watch.Dir),
	)
	fmt.Fprintf(c.out, "  %s %s\n\n",
		cliui.KeyStyle.Render("Provider:"),
		cliui.ValueStyle.Render(settings.Generation.Provider),
	)

	err = w.Run(ctx)
	if errors.Is(err, watcher.ErrEmptyArtifact) {
		fmt.Fprintf(c.out, "\n  %s %s\n", cliui.FailMark, "No code detected, stopping.")
		return nil
	}
	return err
}

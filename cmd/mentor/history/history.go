// Package historycmder provides the history command.
package historycmder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/mentor/pkg/app"
	"github.com/papercomputeco/mentor/pkg/cliui"
	"github.com/papercomputeco/mentor/pkg/config"
	"github.com/papercomputeco/mentor/pkg/logger"
	"github.com/papercomputeco/mentor/pkg/memory"
	"github.com/papercomputeco/mentor/pkg/utils"
)

const previewLen = 72

type historyCommander struct {
	jsonOut   bool
	full      bool
	configDir string
	debug     bool

	out    io.Writer
	logger *slog.Logger
}

type turnJSON struct {
	ID      uint64 `json:"id"`
	Key     string `json:"key"`
	Payload string `json:"payload"`
}

const historyLongDesc string = `List every stored turn in the order it was written.

The first turn is the subject under review. Payloads are shortened to one line
unless --full is set. Use --json for machine readable output.

Examples:
  mentor history
  mentor history --full
  mentor history --json`

const historyShortDesc string = "List stored turns"

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.out = cmd.OutOrStdout()

			settings, err := config.LoadSettings(cmd, config.StoreFlagKeys)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			return cmder.run(cmd.Context(), settings)
		},
	}

	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Output turns as JSON")
	cmd.Flags().BoolVar(&cmder.full, "full", false, "Print whole payloads")
	config.AddRegisteredFlags(cmd, config.Flags, config.StoreFlagKeys)

	return cmd
}

func (c *historyCommander) run(ctx context.Context, settings *config.Settings) error {
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(true),
		logger.WithWriter(os.Stderr),
	)

	a, err := app.New(ctx, app.Options{
		ConfigDir:        c.configDir,
		Settings:         settings,
		Command:          "history",
		WithoutGenerator: true,
		Logger:           c.logger,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	turns, err := a.Store.Turns(ctx)
	if err != nil {
		return err
	}

	if c.jsonOut {
		return c.printJSON(turns)
	}

	if len(turns) == 0 {
		fmt.Fprintln(c.out, "No turns stored.")
		return nil
	}

	fmt.Fprintln(c.out)
	for _, t := range turns {
		c.printTurn(t)
	}
	return nil
}

func (c *historyCommander) printJSON(turns []memory.Turn) error {
	out := make([]turnJSON, 0, len(turns))
	for _, t := range turns {
		out = append(out, turnJSON{ID: uint64(t.ID), Key: t.Key, Payload: t.Payload})
	}

	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (c *historyCommander) printTurn(t memory.Turn) {
	key, payload := t.Key, t.Payload
	if t.Key == memory.SubjectKey {
		key = cliui.WarnStyle.Render("subject")
	} else if !c.full {
		key = utils.OneLine(key, previewLen)
	}
	if !c.full {
		payload = utils.OneLine(payload, previewLen)
	}

	fmt.Fprintf(c.out, "  %s %s\n",
		cliui.DimStyle.Render(fmt.Sprintf("%4s", t.ID)),
		cliui.KeyStyle.Render(key),
	)
	fmt.Fprintf(c.out, "       %s\n\n", cliui.ValueStyle.Render(payload))
}


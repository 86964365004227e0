// Package recallcmder provides the recall command for relevance queries over
// the stored conversation.
package recallcmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/mentor/pkg/app"
	"github.com/papercomputeco/mentor/pkg/config"
	"github.com/papercomputeco/mentor/pkg/logger"
	"github.com/papercomputeco/mentor/pkg/memory"
	"github.com/papercomputeco/mentor/pkg/utils"
)

var (
	rankStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	previewStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
)

const previewLen = 77

type recallCommander struct {
	query     string
	quiet     bool
	configDir string
	debug     bool

	out    io.Writer
	logger *slog.Logger
}

const recallLongDesc string = `Show the stored turns most relevant to a query.

This is the same lookup a chat turn performs before asking the model, so it is
useful for checking what context a question will carry. The subject turn is
listed under the key "original_code".

Use --quiet to output only the keys, one per line.

Examples:
  mentor recall "why is the loop slow"
  mentor recall "imports" -k 5`

const recallShortDesc string = "Show turns relevant to a query"

func flagKeys() []string {
	return append(append([]string{}, config.StoreFlagKeys...), config.FlagTopK)
}

func NewRecallCmd() *cobra.Command {
	cmder := &recallCommander{}

	cmd := &cobra.Command{
		Use:   "recall <query>",
		Short: recallShortDesc,
		Long:  recallLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.query = args[0]

			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.out = cmd.OutOrStdout()

			settings, err := config.LoadSettings(cmd, flagKeys())
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			return cmder.run(cmd.Context(), settings)
		},
	}

	cmd.Flags().BoolVarP(&cmder.quiet, "quiet", "q", false, "Output only turn keys, one per line")
	config.AddRegisteredFlags(cmd, config.Flags, flagKeys())

	return cmd
}

func (c *recallCommander) run(ctx context.Context, settings *config.Settings) error {
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(true),
		logger.WithWriter(os.Stderr),
	)

	a, err := app.New(ctx, app.Options{
		ConfigDir:        c.configDir,
		Settings:         settings,
		Command:          "recall",
		WithoutGenerator: true,
		Logger:           c.logger,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.Store.QueryRelevant(ctx, c.query, settings.TopK)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		if !c.quiet {
			fmt.Fprintln(c.out, "No results found.")
		}
		return nil
	}

	if c.quiet {
		for _, r := range results {
			fmt.Fprintln(c.out, r.Key)
		}
		return nil
	}

	fmt.Fprintf(c.out, "\n%s %s\n\n",
		headerStyle.Render("Recall for:"),
		keyStyle.Render(fmt.Sprintf("%q", c.query)),
	)
	for i, r := range results {
		c.printResult(i+1, r)
	}

	return nil
}

func (c *recallCommander) printResult(rank int, r memory.Relevant) {
	fmt.Fprintf(c.out, "  %s  %s  %s\n",
		rankStyle.Render(fmt.Sprintf("#%d", rank)),
		scoreStyle.Render(fmt.Sprintf("score: %.4f", r.Score)),
		keyStyle.Render(utils.OneLine(r.Key, previewLen)),
	)
	fmt.Fprintf(c.out, "  %s\n\n", previewStyle.Render(utils.OneLine(r.Payload, previewLen)))
}


// Package chatcmder provides the chat command for an interactive session
// about the stored subject.
package chatcmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/mentor/pkg/app"
	"github.com/papercomputeco/mentor/pkg/cliui"
	"github.com/papercomputeco/mentor/pkg/config"
	"github.com/papercomputeco/mentor/pkg/logger"
	"github.com/papercomputeco/mentor/pkg/session"
)

type chatCommander struct {
	configDir string
	debug     bool

	in  io.Reader
	out io.Writer

	logger *slog.Logger
}

const chatLongDesc string = `Start an interactive session about the code under review.

Each question is answered with the stored code and the most relevant earlier
turns as context, and the exchange is added to memory. Run "mentor watch" or
"mentor analyze" first to set the code under review.

Type "exit" or press Ctrl+D to quit.

Examples:
  mentor chat
  mentor chat -p ollama -m llama3.2
  mentor chat -k 4`

const chatShortDesc string = "Chat about the code under review"

func flagKeys() []string {
	keys := append([]string{}, config.StoreFlagKeys...)
	return append(keys, config.GenerationFlagKeys...)
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
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

	config.AddRegisteredFlags(cmd, config.Flags, flagKeys())

	return cmd
}

func (c *chatCommander) run(ctx context.Context, settings *config.Settings) error {
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(true),
		logger.WithWriter(os.Stderr),
	)

	a, err := app.New(ctx, app.Options{
		ConfigDir: c.configDir,
		Settings:  settings,
		Command:   "chat",
		Logger:    c.logger,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	_, ok, err := a.Store.Subject(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out)
	if ok {
		n, err := a.Store.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "  %s Resuming review %s\n",
			cliui.SuccessMark,
			cliui.DimStyle.Render(fmt.Sprintf("(%d turns)", n)),
		)
	} else {
		fmt.Fprintf(c.out, "  %s %s\n",
			cliui.WarnStyle.Render("!"),
			cliui.DimStyle.Render("No code under review yet."),
		)
	}
	fmt.Fprintf(c.out, "  %s %s\n",
		cliui.KeyStyle.Render("Provider:"),
		cliui.NameStyle.Render(settings.Generation.Provider),
	)

	sess, err := a.NewSession(session.NewLineReader(c.in), c.out)
	if err != nil {
		return err
	}
	if err := sess.Run(ctx); err != nil {
		return err
	}

	fmt.Fprintln(c.out)
	return nil
}

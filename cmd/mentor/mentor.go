// Package mentorcmder is the root mentor command.
package mentorcmder

import (
	"github.com/spf13/cobra"

	analyzecmder "github.com/papercomputeco/mentor/cmd/mentor/analyze"
	authcmder "github.com/papercomputeco/mentor/cmd/mentor/auth"
	chatcmder "github.com/papercomputeco/mentor/cmd/mentor/chat"
	configcmder "github.com/papercomputeco/mentor/cmd/mentor/config"
	historycmder "github.com/papercomputeco/mentor/cmd/mentor/history"
	initcmder "github.com/papercomputeco/mentor/cmd/mentor/init"
	mcpcmder "github.com/papercomputeco/mentor/cmd/mentor/mcp"
	recallcmder "github.com/papercomputeco/mentor/cmd/mentor/recall"
	watchcmder "github.com/papercomputeco/mentor/cmd/mentor/watch"
	versioncmder "github.com/papercomputeco/mentor/cmd/version"
)

const mentorLongDesc string = `Mentor reviews your Python code as you write it.

It watches a directory, analyzes each file you save and then answers your
questions about it, remembering the conversation between runs.

Get started with:
  mentor init                  Create a .mentor/ config directory
  mentor auth cohere           Store a provider API key
  mentor watch --dir ./src     Review files as they change
  mentor analyze main.py       Review a single file
  mentor chat                  Ask about the code under review`

const mentorShortDesc string = "Mentor - Code Review Companion"

func NewMentorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "mentor",
		Short:        mentorShortDesc,
		Long:         mentorLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .mentor/ config directory")

	// Add subcommands
	cmd.AddCommand(watchcmder.NewWatchCmd())
	cmd.AddCommand(analyzecmder.NewAnalyzeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(recallcmder.NewRecallCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(mcpcmder.NewMCPCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}

// Package configcmder provides the config command for managing persistent
// mentor configuration stored in the .mentor/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent mentor configuration.

Configuration is stored as config.toml in the .mentor/ directory and provides
default values for command flags. CLI flags and MENTOR_* environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  watch.dir, watch.extensions, watch.exclude, watch.interval, watch.mode,
  vector_store.provider, vector_store.target, vector_store.collection,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  generation.provider, generation.target, generation.model,
  generation.temperature, generation.max_tokens, generation.timeout,
  memory.top_k,
  events.provider, events.brokers, events.topic

Use subcommands to get, set, or list configuration values:
  mentor config set <key> <value>    Set a configuration value
  mentor config get <key>            Get a configuration value
  mentor config list                 List all configuration values

Pass --effective to get or list to see the values commands will actually use
after defaults and MENTOR_* environment variables are applied.

Examples:
  mentor config set watch.dir ~/code/exercises
  mentor config set generation.provider anthropic
  mentor config get watch.interval
  mentor config list --effective`

const configShortDesc string = "Manage persistent mentor configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

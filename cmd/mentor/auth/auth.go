// Package authcmder provides the auth command for storing API credentials.
package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/mentor/pkg/cliui"
	"github.com/papercomputeco/mentor/pkg/credentials"
)

type authCommander struct {
	list   bool
	remove string

	configDir string
	in        io.Reader
	out       io.Writer
}

const authLongDesc string = `Store API credentials for generation providers.

Credentials are stored in credentials.toml in the .mentor/ directory. A stored
key takes precedence over the provider's environment variable when mentor
builds a generator. --list shows, for every provider, which key would be used.

Supported providers: cohere, openai, anthropic

Examples:
  mentor auth cohere              Prompt for a Cohere API key
  mentor auth anthropic           Prompt for an Anthropic API key
  mentor auth --list              Show which key each provider resolves to
  mentor auth --remove openai     Remove stored OpenAI credentials
  echo $KEY | mentor auth cohere  Pipe API key from stdin`

const authShortDesc string = "Store API credentials for generation providers"

func NewAuthCmd() *cobra.Command {
	cmder := &authCommander{}

	cmd := &cobra.Command{
		Use:   "auth [provider]",
		Short: authShortDesc,
		Long:  authLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()

			mgr, err := credentials.NewManager(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading credentials: %w", err)
			}

			switch {
			case cmder.list:
				return cmder.runList(mgr)
			case cmder.remove != "":
				return cmder.runRemove(mgr, cmder.remove)
			case len(args) == 0:
				return fmt.Errorf("provider argument required\n\nSupported providers: %s", supported())
			default:
				return cmder.runStore(mgr, args[0])
			}
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return credentials.SupportedProviders(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	cmd.Flags().BoolVar(&cmder.list, "list", false, "Show the key each provider resolves to")
	cmd.Flags().StringVar(&cmder.remove, "remove", "", "Remove stored credentials for a provider")

	return cmd
}

func supported() string {
	return strings.Join(credentials.SupportedProviders(), ", ")
}

func normalize(provider string) (string, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if !credentials.IsSupportedProvider(provider) {
		return "", fmt.Errorf("unsupported provider: %q\n\nSupported providers: %s", provider, supported())
	}
	return provider, nil
}

func (c *authCommander) runStore(mgr *credentials.Manager, provider string) error {
	provider, err := normalize(provider)
	if err != nil {
		return err
	}

	apiKey, err := c.readAPIKey(provider)
	if err != nil {
		return err
	}

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return errors.New("API key cannot be empty")
	}
	if strings.ContainsAny(apiKey, " \t") {
		return errors.New("API key cannot contain whitespace")
	}

	if err := mgr.SetKey(provider, apiKey); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n  %s Stored %s key %s %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(provider),
		cliui.KeyStyle.Render(credentials.Mask(apiKey)),
		cliui.DimStyle.Render("(overrides "+credentials.EnvVarForProvider(provider)+")"),
	)
	return nil
}

func (c *authCommander) runList(mgr *credentials.Manager) error {
	if _, err := mgr.Load(); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n  %s\n\n", cliui.HeaderStyle.Render("Provider credentials"))
	for _, p := range credentials.SupportedProviders() {
		key, src := mgr.Lookup(p)
		envVar := credentials.EnvVarForProvider(p)

		switch src {
		case credentials.SourceStored:
			fmt.Fprintf(c.out, "  %s  %-10s %s  %s\n",
				cliui.SuccessMark, cliui.NameStyle.Render(p),
				cliui.KeyStyle.Render(credentials.Mask(key)),
				cliui.DimStyle.Render("stored"))
		case credentials.SourceEnv:
			fmt.Fprintf(c.out, "  %s  %-10s %s  %s\n",
				cliui.SuccessMark, cliui.NameStyle.Render(p),
				cliui.KeyStyle.Render(credentials.Mask(key)),
				cliui.DimStyle.Render("from "+envVar))
		default:
			fmt.Fprintf(c.out, "  %s  %-10s %s\n",
				cliui.DimStyle.Render("●"), cliui.NameStyle.Render(p),
				cliui.DimStyle.Render("missing (run 'mentor auth "+p+"' or set "+envVar+")"))
		}
	}
	fmt.Fprintln(c.out)

	return nil
}

func (c *authCommander) runRemove(mgr *credentials.Manager, provider string) error {
	provider, err := normalize(provider)
	if err != nil {
		return err
	}

	stored, err := mgr.GetKey(provider)
	if err != nil {
		return err
	}
	if stored == "" {
		fmt.Fprintf(c.out, "\n  %s No stored %s credentials.\n\n",
			cliui.DimStyle.Render("●"), cliui.NameStyle.Render(provider))
		return nil
	}

	if err := mgr.RemoveKey(provider); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n  %s Removed %s credentials.\n\n", cliui.SuccessMark, cliui.NameStyle.Render(provider))
	return nil
}

// readAPIKey reads the first line of a piped stdin, or prompts with hidden
// input when stdin is a terminal.
func (c *authCommander) readAPIKey(provider string) (string, error) {
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(c.out, "Enter API key for %s (%s): ", provider, credentials.EnvVarForProvider(provider))

		keyBytes, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.out)
		if err != nil {
			return "", fmt.Errorf("reading API key: %w", err)
		}
		return string(keyBytes), nil
	}

	scanner := bufio.NewScanner(c.in)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return "", errors.New("no input received on stdin")
}

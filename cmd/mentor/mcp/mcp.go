// Package mcpcmder provides the mcp command, which exposes the mentor's
// memory to MCP clients.
package mcpcmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/mentor/api/mcp"
	"github.com/papercomputeco/mentor/pkg/app"
	"github.com/papercomputeco/mentor/pkg/config"
	"github.com/papercomputeco/mentor/pkg/logger"
)

const (
	mcpPath         = "/mcp"
	shutdownTimeout = 5 * time.Second
)

type mcpCommander struct {
	listen    string
	configDir string
	debug     bool

	logger *slog.Logger
}

const mcpLongDesc string = `Serve the stored conversation to MCP clients.

The server offers three read-only tools: "recall" for relevance queries,
"history" for every stored turn and "subject" for the code under review.

By default the server speaks MCP over stdin and stdout, which is what most
editors and agents expect when they launch a tool server. With --listen it
serves streamable HTTP on ` + mcpPath + ` instead.

The embedded stores allow one mentor process at a time, so run this against a
Chroma vector store to use it while "mentor watch" is running.

Examples:
  mentor mcp
  mentor mcp --listen :8090 --vector-store-provider chroma`

const mcpShortDesc string = "Serve memory over MCP"

func flagKeys() []string {
	return append(append([]string{}, config.StoreFlagKeys...), config.FlagTopK)
}

func NewMCPCmd() *cobra.Command {
	cmder := &mcpCommander{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			settings, err := config.LoadSettings(cmd, flagKeys())
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			return cmder.run(cmd.Context(), settings)
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Serve streamable HTTP on this address instead of stdio")
	config.AddRegisteredFlags(cmd, config.Flags, flagKeys())

	return cmd
}

func (c *mcpCommander) run(ctx context.Context, settings *config.Settings) error {
	// stdout carries the protocol in stdio mode.
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(true),
		logger.WithWriter(os.Stderr),
	)

	a, err := app.New(ctx, app.Options{
		ConfigDir:        c.configDir,
		Settings:         settings,
		Command:          "mcp",
		WithoutGenerator: true,
		Logger:           c.logger,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	server, err := mcp.NewServer(mcp.Config{
		Store:       a.Store,
		DefaultTopK: settings.TopK,
		Logger:      c.logger,
	})
	if err != nil {
		return err
	}

	if c.listen == "" {
		c.logger.Info("serving MCP over stdio")
		return server.RunStdio(ctx)
	}

	return c.serveHTTP(ctx, server)
}

func (c *mcpCommander) serveHTTP(ctx context.Context, server *mcp.Server) error {
	mux := http.NewServeMux()
	mux.Handle(mcpPath, server.Handler())

	srv := &http.Server{
		Addr:              c.listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.logger.Info("serving MCP over HTTP", "listen", c.listen, "path", mcpPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Package mcp provides an MCP (Model Context Protocol) server over the
// mentor's conversation memory.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/mentor/pkg/memory"
	"github.com/papercomputeco/mentor/pkg/utils"
)

type Config struct {
	// Store is the memory the tools read from.
	Store *memory.Store

	// DefaultTopK is used when a recall request does not set top_k.
	DefaultTopK int

	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the recall, history and subject
// tools.
func NewServer(c Config) (*Server, error) {
	if c.Store == nil {
		return nil, errors.New("memory store is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if c.DefaultTopK <= 0 {
		c.DefaultTopK = memory.DefaultTopK
	}

	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "mentor",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        recallToolName,
		Description: recallDescription,
	}, s.handleRecall)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        historyToolName,
		Description: historyDescription,
	}, s.handleHistory)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        subjectToolName,
		Description: subjectDescription,
	}, s.handleSubject)

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// RunStdio serves a single client over stdin and stdout until ctx is done
// or the client disconnects.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves a single client over t. It is used by tests and embedders
// that bring their own transport.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.mcpServer.Connect(ctx, t, nil)
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

// jsonResult serializes output into a TextContent block alongside the
// structured content.
func jsonResult(output any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return nil, err
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, nil
}

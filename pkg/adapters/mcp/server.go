// Package mcp exposes the assistant as an MCP server over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	espalier "github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/domain"
)

// Assistant defines the surface the MCP server needs.
type Assistant interface {
	Ask(ctx context.Context, query string) (*espalier.Result, error)
	History() []domain.InteractionRecord
	ClearHistory()
}

// Server wraps the assistant and exposes it as an MCP Server.
type Server struct {
	assistant Assistant
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(assistant Assistant, version string) *Server {
	s := &Server{
		assistant: assistant,
		mcpServer: server.NewMCPServer("espalier-mcp", version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	// TOOL: ask
	askTool := mcp.NewTool("ask",
		mcp.WithDescription("Ask the assistant a natural-language question. "+
			"The query is routed to either a quick answer path or a multi-step research path."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The question to answer")),
	)
	s.mcpServer.AddTool(askTool, s.handleAsk)

	// TOOL: clear_history
	clearTool := mcp.NewTool("clear_history",
		mcp.WithDescription("Clear the assistant's session history."),
	)
	s.mcpServer.AddTool(clearTool, s.handleClearHistory)
}

func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.assistant.Ask(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}

	payload, err := json.Marshal(res)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func (s *Server) handleClearHistory(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.assistant.ClearHistory()
	return mcp.NewToolResultText("history cleared"), nil
}

func (s *Server) registerResources() {
	// EXPOSE: espalier://history
	s.mcpServer.AddResource(mcp.NewResource("espalier://history", "Session Interaction Log",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.assistant.History())
		if err != nil {
			return nil, fmt.Errorf("failed to encode history: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "espalier://history",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

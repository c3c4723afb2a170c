// Package mcp exposes the gateway tool registry as an MCP server on stdio.
// Each registered tool becomes a named MCP tool with its declared argument
// schema; the Result envelope maps onto the MCP text/error result.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nextlevelbuilder/zappy/internal/tools"
)

// NewServer builds an MCP server exposing every tool in the registry.
func NewServer(reg *tools.Registry, name, version string) (*server.MCPServer, error) {
	s := server.NewMCPServer(name, version,
		server.WithToolCapabilities(false),
		// A handler panic must come back as a tool error, not kill the
		// stdio transport.
		server.WithRecovery(),
	)
	for _, t := range reg.All() {
		schema, err := json.Marshal(t.Parameters())
		if err != nil {
			return nil, fmt.Errorf("encode schema for %s: %w", t.Name(), err)
		}
		toolName := t.Name()
		s.AddTool(mcpgo.NewToolWithRawSchema(toolName, t.Description(), schema),
			func(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
				result := reg.Execute(ctx, toolName, req.GetArguments())
				if result.IsError {
					return mcpgo.NewToolResultError(result.Text), nil
				}
				return mcpgo.NewToolResultText(result.Text), nil
			})
	}
	return s, nil
}

// ServeStdio runs the server over stdin/stdout until the client hangs up.
// Diagnostics must go to stderr; stdout belongs to the protocol.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

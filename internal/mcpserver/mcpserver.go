// Package mcpserver exposes fathom's analysis as MCP tools over stdio,
// so editor agents can query function groups without shelling out.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server and registers the fathom analysis tools.
type Server struct {
	server *mcp.Server
}

// NewServer creates a new MCP server with all tools registered.
func NewServer(version string) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "fathom",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server}
	s.registerTools()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "analyze_groups",
		Description: "Extract the functions of each source file and partition them into " +
			"groups of related functions (connected components of the intra-file call " +
			"graph). Returns per-file groups with member spans and call relationships.",
	}, handleAnalyzeGroups)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "analyze_callgraph",
		Description: "Build the intra-file call graph of each source file: resolved " +
			"caller/callee edges between functions defined in the same file, optionally " +
			"with PageRank and degree metrics.",
	}, handleAnalyzeCallgraph)
}

// Package mcp exposes the assistant's tool surface over the Model Context
// Protocol, so an external model can drive the home directly.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/urmzd/homecare/pkg/assistant"
	"github.com/urmzd/homecare/pkg/home"
	"github.com/urmzd/homecare/pkg/notify"
	"github.com/urmzd/homecare/pkg/toolcall"
)

// Deps are the components the MCP tools operate on.
type Deps struct {
	Home      *home.Home
	Decoder   *toolcall.Decoder
	Router    *toolcall.Router
	Inbox     *notify.Inbox
	Assistant *assistant.Assistant // may be nil; disables ask_assistant
}

// Server wraps the MCP server with the assistant's tools
type Server struct {
	mcpServer *server.MCPServer
	deps      Deps
}

// NewServer creates a new MCP server
func NewServer(version string, deps Deps) *Server {
	s := &Server{deps: deps}

	s.mcpServer = server.NewMCPServer(
		"homecare",
		version,
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// MCPServer returns the underlying server, for transports other than stdio.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the MCP server using stdio transport
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

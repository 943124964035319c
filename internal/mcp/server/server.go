package server

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mcp-databases/internal/logging"
	"mcp-databases/internal/mcp/resources"
	"mcp-databases/internal/mcp/tools"
)

// Server wraps the MCP protocol server and collects tool and resource
// registrations before serving over stdio.
type Server struct {
	server *mcp.Server
	logger *logging.Logger
}

// New creates an MCP server with the given identity.
func New(name, version string) *Server {
	return &Server{
		server: mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil),
		logger: logging.ServerLogger,
	}
}

// RegisterTool implements tools.ToolRegistrar.
func (s *Server) RegisterTool(toolDef tools.ToolDefinition) {
	s.server.AddTool(toolDef.Tool, toolDef.Handler)
	s.logger.Debug("tool registered", logging.String("name", toolDef.Tool.Name))
}

// RegisterResources adds the given resources to the server.
func (s *Server) RegisterResources(defs []resources.ResourceDefinition) {
	for _, def := range defs {
		s.server.AddResource(def.Resource, def.Handler)
		s.logger.Debug("resource registered", logging.String("uri", def.Resource.URI))
	}
}

// Start serves MCP over stdio until the client disconnects or ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("MCP server listening on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

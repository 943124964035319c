package resources

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mcp-databases/internal/database"
	"mcp-databases/internal/logging"
)

// ResourceDefinition pairs an MCP resource descriptor with its handler.
type ResourceDefinition struct {
	Resource *mcp.Resource
	Handler  mcp.ResourceHandler
}

var logger = logging.New("Resources")

// GetAllResources collects every resource the server exposes. exec may be
// nil when the database is unavailable; no resources are returned then.
func GetAllResources(exec database.Executor) []ResourceDefinition {
	if exec == nil {
		logger.Warn("database not available, skipping resource registration")
		return nil
	}

	resources := []ResourceDefinition{
		schemaSnapshotResource(exec),
	}
	logger.Info("resources collected", logging.Int("count", len(resources)))
	return resources
}

// schemaSnapshotResource exposes the full table/column layout of the
// connected database as a plain-text snapshot.
func schemaSnapshotResource(exec database.Executor) ResourceDefinition {
	resource := &mcp.Resource{
		URI:         "schema://snapshot",
		Name:        "Database Schema",
		Description: "Current tables and columns of the connected database",
		MIMEType:    "text/plain",
	}

	handler := func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		schema, err := exec.Schema(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema: %w", err)
		}

		text := schema
		if strings.TrimSpace(text) == "" {
			text = "database has no tables"
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      req.Params.URI,
					MIMEType: "text/plain",
					Text:     text,
				},
			},
		}, nil
	}

	return ResourceDefinition{Resource: resource, Handler: handler}
}

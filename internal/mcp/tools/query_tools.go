package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mcp-databases/internal/logging"
)

func (m *Manager) newExecuteQueryTool() *ToolDefinition {
	return &ToolDefinition{
		Tool: &mcp.Tool{
			Name:        "execute_query",
			Description: "Execute a read-only SQL query (SELECT / WITH / SHOW / DESCRIBE / EXPLAIN). Anything that writes, alters, or hides commands in comments is rejected before reaching the database.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"query": {"type": "string", "description": "Read-only SQL statement"},
					"limit": {"type": "integer", "description": "Maximum rows to return (default 1000)"}
				},
				"required": ["query"]
			}`),
		},
		Handler: m.handleExecuteQuery,
	}
}

const defaultQueryRowLimit = 1000

func (m *Manager) handleExecuteQuery(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	if err := parseArgs(req, &args); err != nil {
		return errorResult(err), nil
	}

	if err := m.pipe.ValidateReadOnly(args.Query); err != nil {
		m.logger.Warn("query rejected", logging.Query(args.Query), logging.Error(err))
		return errorResult(err), nil
	}

	rows, err := m.exec.Query(ctx, args.Query)
	if err != nil {
		return errorResult(err), nil
	}

	limit := args.Limit
	if limit <= 0 {
		limit = defaultQueryRowLimit
	}
	truncated := false
	if len(rows) > limit {
		rows = rows[:limit]
		truncated = true
	}
	m.logger.Info("query executed",
		logging.Query(args.Query),
		logging.Int("rows", len(rows)))

	return jsonResult(map[string]any{
		"success":   true,
		"rows":      rows,
		"row_count": len(rows),
		"truncated": truncated,
	}), nil
}

func (m *Manager) newListTablesTool() *ToolDefinition {
	return &ToolDefinition{
		Tool: &mcp.Tool{
			Name:        "list_tables",
			Description: "List the tables in the connected database.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {}
			}`),
		},
		Handler: m.handleListTables,
	}
}

func (m *Manager) handleListTables(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tables, err := m.exec.ListTables(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	return jsonResult(map[string]any{
		"success": true,
		"tables":  tables,
		"count":   len(tables),
	}), nil
}

func (m *Manager) newExposeSchemaTool() *ToolDefinition {
	return &ToolDefinition{
		Tool: &mcp.Tool{
			Name:        "expose_schema",
			Description: "Describe every table and column in the connected database as human-readable text.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {}
			}`),
		},
		Handler: m.handleExposeSchema,
	}
}

func (m *Manager) handleExposeSchema(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	schema, err := m.exec.Schema(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	if strings.TrimSpace(schema) == "" {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "database has no tables"}},
		}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{
			Text: fmt.Sprintf("Database schema (%s):\n%s", m.pipe.Dialect(), schema),
		}},
	}, nil
}

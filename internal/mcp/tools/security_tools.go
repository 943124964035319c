package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mcp-databases/internal/logging"
)

func (m *Manager) newSecurityCheckTool() *ToolDefinition {
	return &ToolDefinition{
		Tool: &mcp.Tool{
			Name:        "security_check",
			Description: "Analyze a SQL query without executing it. Reports whether the query would be accepted, its first command, and any dangerous commands or injection patterns found.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"query": {"type": "string", "description": "SQL query to analyze"}
				},
				"required": ["query"]
			}`),
		},
		Handler: m.handleSecurityCheck,
	}
}

func (m *Manager) handleSecurityCheck(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := parseArgs(req, &args); err != nil {
		return errorResult(err), nil
	}

	report := m.pipe.Inspect(args.Query)
	m.logger.Debug("security check",
		logging.Query(args.Query),
		logging.String("first_command", report.FirstCommand))

	return jsonResult(report), nil
}

func (m *Manager) newSecurityConfigTool() *ToolDefinition {
	return &ToolDefinition{
		Tool: &mcp.Tool{
			Name:        "get_security_config",
			Description: "Return the active security policy: allowed, blocked, and conditional commands, plus how many injection patterns are enforced.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {}
			}`),
		},
		Handler: m.handleSecurityConfig,
	}
}

func (m *Manager) handleSecurityConfig(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]any{
		"allowed_commands":     m.sec.AllowedCommands(),
		"blocked_commands":     m.sec.BlockedCommands(),
		"conditional_commands": m.sec.ConditionalCommands(),
		"pattern_count":        m.sec.PatternCount(),
		"dialect":              m.pipe.Dialect().String(),
	}), nil
}

func (m *Manager) newSafeQueryTool() *ToolDefinition {
	return &ToolDefinition{
		Tool: &mcp.Tool{
			Name:        "safe_query",
			Description: "Produce guidance for writing a safe read-only query against a table, given a natural-language description of what is wanted.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"table_name": {"type": "string", "description": "Table the query should read from"},
					"description": {"type": "string", "description": "What the query should answer, in plain language"}
				},
				"required": ["table_name", "description"]
			}`),
		},
		Handler: m.handleSafeQuery,
	}
}

func (m *Manager) handleSafeQuery(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		TableName   string `json:"table_name"`
		Description string `json:"description"`
	}
	if err := parseArgs(req, &args); err != nil {
		return errorResult(err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write a read-only SQL query against table %q that answers: %s\n\n", args.TableName, args.Description)
	b.WriteString("Rules the query must follow:\n")
	fmt.Fprintf(&b, "- Start with one of: %s\n", strings.Join(m.sec.AllowedCommands(), ", "))
	b.WriteString("- No data modification of any kind (INSERT, UPDATE, DELETE, DROP, ALTER, TRUNCATE are all rejected)\n")
	b.WriteString("- No stacked statements, comments used to hide commands, or always-true predicates like OR 1=1\n")
	b.WriteString("- Prefer an explicit column list over SELECT * and add a LIMIT clause for large tables\n")
	b.WriteString("\nValidate the result with the security_check tool before running it with execute_query.")

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: b.String()}},
	}, nil
}

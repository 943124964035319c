package tools

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mcp-databases/internal/errors"
)

// ToolDefinition pairs an MCP tool descriptor with its handler.
type ToolDefinition struct {
	Tool    *mcp.Tool
	Handler mcp.ToolHandler
}

// ToolRegistrar is implemented by the MCP server and receives every tool the
// registry produces.
type ToolRegistrar interface {
	RegisterTool(toolDef ToolDefinition)
}

// parseArgs unmarshals the raw tool arguments into the handler's args struct.
func parseArgs(req *mcp.CallToolRequest, out any) error {
	if err := json.Unmarshal(req.Params.Arguments, out); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// jsonResult marshals a response payload into a text content block.
func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("❌ failed to marshal result: %v", err)},
			},
			IsError: true,
		}
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}
}

// errorResult converts an error into a tool error result. Engine rejections
// surface their kind so callers can react without parsing prose; driver
// failures keep their own category.
func errorResult(err error) *mcp.CallToolResult {
	var text string
	if kind, ok := errors.KindOf(err); ok {
		if kind == errors.KindDriverError {
			text = fmt.Sprintf("❌ Database error: %v", err)
		} else {
			text = fmt.Sprintf("🚫 Operation rejected: %v", err)
		}
	} else {
		text = fmt.Sprintf("❌ Error: %v", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

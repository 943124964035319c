package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mcp-databases/internal/logging"
	"mcp-databases/internal/sqlbuilder"
)

type columnSpecArgs struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Constraints []string `json:"constraints,omitempty"`
	After       string   `json:"after,omitempty"`
}

func (a columnSpecArgs) toSpec() sqlbuilder.ColumnSpec {
	return sqlbuilder.ColumnSpec{
		Name:        a.Name,
		Type:        a.Type,
		Constraints: a.Constraints,
		After:       a.After,
	}
}

func (m *Manager) newCreateTableTool() *ToolDefinition {
	return &ToolDefinition{
		Tool: &mcp.Tool{
			Name:        "create_table",
			Description: "Create a new table from a declarative column list. Table and column names are validated, column types must come from the allowed-type whitelist, and no raw SQL is accepted.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"table_name": {"type": "string", "description": "Name of the table to create"},
					"columns": {
						"type": "array",
						"description": "Column definitions, e.g. {\"name\": \"id\", \"type\": \"INT\", \"constraints\": [\"PRIMARY KEY\", \"AUTO_INCREMENT\"]}",
						"items": {
							"type": "object",
							"properties": {
								"name": {"type": "string"},
								"type": {"type": "string"},
								"constraints": {"type": "array", "items": {"type": "string"}},
								"after": {"type": "string"}
							},
							"required": ["name", "type"]
						}
					},
					"options": {
						"type": "object",
						"properties": {
							"if_not_exists": {"type": "boolean"},
							"engine": {"type": "string", "description": "MySQL only"},
							"charset": {"type": "string", "description": "MySQL only"}
						}
					}
				},
				"required": ["table_name", "columns"]
			}`),
		},
		Handler: m.handleCreateTable,
	}
}

func (m *Manager) handleCreateTable(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		TableName string           `json:"table_name"`
		Columns   []columnSpecArgs `json:"columns"`
		Options   struct {
			IfNotExists bool   `json:"if_not_exists"`
			Engine      string `json:"engine"`
			Charset     string `json:"charset"`
		} `json:"options"`
	}
	if err := parseArgs(req, &args); err != nil {
		return errorResult(err), nil
	}

	columns := make([]sqlbuilder.ColumnSpec, 0, len(args.Columns))
	for _, c := range args.Columns {
		columns = append(columns, c.toSpec())
	}

	op := sqlbuilder.CreateTable{
		Spec: sqlbuilder.TableSpec{
			Name:    args.TableName,
			Columns: columns,
			Options: sqlbuilder.TableOptions{
				Engine:  args.Options.Engine,
				Charset: args.Options.Charset,
			},
		},
		IfNotExists: args.Options.IfNotExists,
	}

	st, skipped, err := m.pipe.CreateTable(ctx, op)
	if err != nil {
		return errorResult(err), nil
	}
	if skipped {
		return jsonResult(map[string]any{
			"success":    true,
			"message":    fmt.Sprintf("table %q already exists, nothing to do", args.TableName),
			"table_name": args.TableName,
		}), nil
	}

	m.logger.Info("creating table", logging.String("table", args.TableName))
	if _, err := m.exec.Exec(ctx, st.SQL, st.Args...); err != nil {
		return errorResult(err), nil
	}

	return jsonResult(map[string]any{
		"success":         true,
		"message":         fmt.Sprintf("table %q created", args.TableName),
		"table_name":      args.TableName,
		"sql_executed":    st.SQL,
		"columns_created": len(columns),
	}), nil
}

func (m *Manager) newAlterTableTool() *ToolDefinition {
	return &ToolDefinition{
		Tool: &mcp.Tool{
			Name:        "alter_table",
			Description: "Alter an existing table: ADD_COLUMN, MODIFY_COLUMN, or DROP_COLUMN, described declaratively.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"table_name": {"type": "string"},
					"operation": {
						"type": "string",
						"enum": ["ADD_COLUMN", "MODIFY_COLUMN", "DROP_COLUMN"]
					},
					"column_spec": {
						"type": "object",
						"properties": {
							"name": {"type": "string"},
							"type": {"type": "string"},
							"constraints": {"type": "array", "items": {"type": "string"}},
							"after": {"type": "string", "description": "MySQL positional hint"}
						},
						"required": ["name"]
					}
				},
				"required": ["table_name", "operation", "column_spec"]
			}`),
		},
		Handler: m.handleAlterTable,
	}
}

func (m *Manager) handleAlterTable(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		TableName  string         `json:"table_name"`
		Operation  string         `json:"operation"`
		ColumnSpec columnSpecArgs `json:"column_spec"`
	}
	if err := parseArgs(req, &args); err != nil {
		return errorResult(err), nil
	}

	op := sqlbuilder.AlterTable{
		Table:  args.TableName,
		Action: sqlbuilder.AlterAction(args.Operation),
		Column: args.ColumnSpec.toSpec(),
	}

	st, err := m.pipe.AlterTable(op)
	if err != nil {
		return errorResult(err), nil
	}

	m.logger.Info("altering table",
		logging.String("table", args.TableName),
		logging.String("operation", args.Operation))
	if _, err := m.exec.Exec(ctx, st.SQL, st.Args...); err != nil {
		return errorResult(err), nil
	}

	return jsonResult(map[string]any{
		"success":      true,
		"message":      fmt.Sprintf("table %q altered", args.TableName),
		"table_name":   args.TableName,
		"operation":    args.Operation,
		"sql_executed": st.SQL,
	}), nil
}

func (m *Manager) newDropTableTool() *ToolDefinition {
	return &ToolDefinition{
		Tool: &mcp.Tool{
			Name:        "drop_table",
			Description: "Drop a table. Irreversible. Requires the exact confirmation token DELETE_TABLE_<table_name>.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"table_name": {"type": "string"},
					"confirmation": {"type": "string", "description": "Must equal DELETE_TABLE_<table_name> exactly"},
					"if_exists": {"type": "boolean"}
				},
				"required": ["table_name", "confirmation"]
			}`),
		},
		Handler: m.handleDropTable,
	}
}

func (m *Manager) handleDropTable(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		TableName    string `json:"table_name"`
		Confirmation string `json:"confirmation"`
		IfExists     bool   `json:"if_exists"`
	}
	if err := parseArgs(req, &args); err != nil {
		return errorResult(err), nil
	}

	op := sqlbuilder.DropTable{Table: args.TableName, IfExists: args.IfExists}
	st, err := m.pipe.DropTable(op, args.Confirmation)
	if err != nil {
		return errorResult(err), nil
	}

	m.logger.Warn("dropping table", logging.String("table", args.TableName))
	if _, err := m.exec.Exec(ctx, st.SQL, st.Args...); err != nil {
		return errorResult(err), nil
	}

	return jsonResult(map[string]any{
		"success":      true,
		"message":      fmt.Sprintf("table %q dropped", args.TableName),
		"table_name":   args.TableName,
		"sql_executed": st.SQL,
		"warning":      "table dropped, data is permanently lost",
	}), nil
}

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mcp-databases/internal/logging"
	"mcp-databases/internal/sqlbuilder"
)

func (m *Manager) newInsertRecordTool() *ToolDefinition {
	return &ToolDefinition{
		Tool: &mcp.Tool{
			Name:        "insert_record",
			Description: "Insert a single record. Column names are validated and string values are scanned for injection patterns; all values are bound as parameters.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"table_name": {"type": "string"},
					"data": {
						"type": "object",
						"description": "Column/value pairs, e.g. {\"name\": \"Ana\", \"age\": 30}"
					}
				},
				"required": ["table_name", "data"]
			}`),
		},
		Handler: m.handleInsertRecord,
	}
}

func (m *Manager) handleInsertRecord(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		TableName string         `json:"table_name"`
		Data      map[string]any `json:"data"`
	}
	if err := parseArgs(req, &args); err != nil {
		return errorResult(err), nil
	}

	st, err := m.pipe.Insert(sqlbuilder.Insert{Table: args.TableName, Values: args.Data})
	if err != nil {
		return errorResult(err), nil
	}

	affected, err := m.exec.Exec(ctx, st.SQL, st.Args...)
	if err != nil {
		return errorResult(err), nil
	}
	m.logger.Info("record inserted",
		logging.String("table", args.TableName),
		logging.Int64("rows_affected", affected))

	return jsonResult(map[string]any{
		"success":       true,
		"message":       fmt.Sprintf("record inserted into %q", args.TableName),
		"table_name":    args.TableName,
		"sql_executed":  st.SQL,
		"rows_affected": affected,
	}), nil
}

func (m *Manager) newBulkInsertTool() *ToolDefinition {
	return &ToolDefinition{
		Tool: &mcp.Tool{
			Name:        "bulk_insert",
			Description: "Insert multiple records in batches. All records must share the same column set; at most 10000 records per call.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"table_name": {"type": "string"},
					"records": {
						"type": "array",
						"items": {"type": "object"},
						"description": "Records with identical column sets"
					},
					"batch_size": {"type": "integer", "description": "Records per INSERT statement (default 100)"}
				},
				"required": ["table_name", "records"]
			}`),
		},
		Handler: m.handleBulkInsert,
	}
}

func (m *Manager) handleBulkInsert(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		TableName string           `json:"table_name"`
		Records   []map[string]any `json:"records"`
		BatchSize int              `json:"batch_size"`
	}
	if err := parseArgs(req, &args); err != nil {
		return errorResult(err), nil
	}

	batchSize := args.BatchSize
	if batchSize <= 0 {
		batchSize = m.cfg.Security.BulkDefaultBatch
	}
	statements, err := m.pipe.BulkInsert(sqlbuilder.BulkInsert{
		Table:     args.TableName,
		Records:   args.Records,
		BatchSize: batchSize,
	})
	if err != nil {
		return errorResult(err), nil
	}

	var total int64
	for _, st := range statements {
		affected, err := m.exec.Exec(ctx, st.SQL, st.Args...)
		if err != nil {
			return errorResult(err), nil
		}
		total += affected
	}
	m.logger.Info("bulk insert finished",
		logging.String("table", args.TableName),
		logging.Int("records", len(args.Records)),
		logging.Int("batches", len(statements)))

	return jsonResult(map[string]any{
		"success":          true,
		"message":          fmt.Sprintf("%d records inserted into %q", len(args.Records), args.TableName),
		"table_name":       args.TableName,
		"records_inserted": len(args.Records),
		"total_batches":    len(statements),
		"rows_affected":    total,
	}), nil
}

func (m *Manager) newUpdateRecordsTool() *ToolDefinition {
	return &ToolDefinition{
		Tool: &mcp.Tool{
			Name:        "update_records",
			Description: "Update rows matching equality conditions. A non-empty WHERE is mandatory and a pre-flight count enforces the safety limit (default 100 rows).",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"table_name": {"type": "string"},
					"set_values": {"type": "object", "description": "Columns to update"},
					"where_conditions": {"type": "object", "description": "Equality conditions, ANDed together"},
					"safety_limit": {"type": "integer", "description": "Maximum rows this update may touch (default 100)"}
				},
				"required": ["table_name", "set_values", "where_conditions"]
			}`),
		},
		Handler: m.handleUpdateRecords,
	}
}

func (m *Manager) handleUpdateRecords(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		TableName       string         `json:"table_name"`
		SetValues       map[string]any `json:"set_values"`
		WhereConditions map[string]any `json:"where_conditions"`
		SafetyLimit     int64          `json:"safety_limit"`
	}
	if err := parseArgs(req, &args); err != nil {
		return errorResult(err), nil
	}

	st, count, err := m.pipe.Update(ctx, sqlbuilder.Update{
		Table: args.TableName,
		Set:   args.SetValues,
		Where: args.WhereConditions,
	}, args.SafetyLimit)
	if err != nil {
		return errorResult(err), nil
	}

	affected, err := m.exec.Exec(ctx, st.SQL, st.Args...)
	if err != nil {
		return errorResult(err), nil
	}
	m.logger.Info("records updated",
		logging.String("table", args.TableName),
		logging.Int64("matched", count),
		logging.Int64("rows_affected", affected))

	return jsonResult(map[string]any{
		"success":       true,
		"message":       fmt.Sprintf("%d rows updated in %q", affected, args.TableName),
		"table_name":    args.TableName,
		"sql_executed":  st.SQL,
		"rows_affected": affected,
	}), nil
}

func (m *Manager) newDeleteRecordsTool() *ToolDefinition {
	return &ToolDefinition{
		Tool: &mcp.Tool{
			Name:        "delete_records",
			Description: "Delete rows matching equality conditions. Requires a confirmation token of the form DELETE_FROM_<table>_WHERE_<cond1_val1_...> and enforces a pre-flight safety limit (default 100 rows).",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"table_name": {"type": "string"},
					"where_conditions": {"type": "object", "description": "Equality conditions, ANDed together"},
					"confirmation": {"type": "string", "description": "DELETE_FROM_<table>_WHERE_<key_value pairs in sorted key order joined by _>"},
					"safety_limit": {"type": "integer", "description": "Maximum rows this delete may remove (default 100)"}
				},
				"required": ["table_name", "where_conditions", "confirmation"]
			}`),
		},
		Handler: m.handleDeleteRecords,
	}
}

func (m *Manager) handleDeleteRecords(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		TableName       string         `json:"table_name"`
		WhereConditions map[string]any `json:"where_conditions"`
		Confirmation    string         `json:"confirmation"`
		SafetyLimit     int64          `json:"safety_limit"`
	}
	if err := parseArgs(req, &args); err != nil {
		return errorResult(err), nil
	}

	st, count, err := m.pipe.Delete(ctx, sqlbuilder.Delete{
		Table: args.TableName,
		Where: args.WhereConditions,
	}, args.Confirmation, args.SafetyLimit)
	if err != nil {
		return errorResult(err), nil
	}

	affected, err := m.exec.Exec(ctx, st.SQL, st.Args...)
	if err != nil {
		return errorResult(err), nil
	}
	m.logger.Warn("records deleted",
		logging.String("table", args.TableName),
		logging.Int64("matched", count),
		logging.Int64("rows_affected", affected))

	return jsonResult(map[string]any{
		"success":       true,
		"message":       fmt.Sprintf("%d rows deleted from %q", affected, args.TableName),
		"table_name":    args.TableName,
		"sql_executed":  st.SQL,
		"rows_affected": affected,
	}), nil
}

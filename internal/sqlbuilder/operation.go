package sqlbuilder

// ColumnSpec describes one column of a table: its name, a type token from
// the allowed-type whitelist, an ordered list of constraint tokens, and an
// optional positional hint honored only by MySQL.
type ColumnSpec struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Constraints []string `json:"constraints,omitempty"`
	After       string   `json:"after,omitempty"` // MySQL: AFTER <column>
}

// TableOptions carries dialect-specific table creation options. Dialects
// that do not support an option ignore it.
type TableOptions struct {
	Engine  string `json:"engine,omitempty"`
	Charset string `json:"charset,omitempty"`
}

// TableSpec describes a table to create.
type TableSpec struct {
	Name    string       `json:"name"`
	Columns []ColumnSpec `json:"columns"`
	Options TableOptions `json:"options,omitempty"`
}

// AlterAction enumerates the supported ALTER TABLE sub-operations.
type AlterAction string

const (
	AddColumn    AlterAction = "ADD_COLUMN"
	ModifyColumn AlterAction = "MODIFY_COLUMN"
	DropColumn   AlterAction = "DROP_COLUMN"
)

// Operation is the tagged variant over every declarative request the builder
// can render. Callers construct one concrete variant; raw SQL never appears
// in any of them.
type Operation interface {
	operation()
}

// CreateTable creates a new table from a TableSpec.
type CreateTable struct {
	Spec        TableSpec
	IfNotExists bool
}

// AlterTable applies one sub-operation to an existing table.
type AlterTable struct {
	Table  string
	Action AlterAction
	Column ColumnSpec
}

// DropTable removes a table. The confirmation token gate lives in the
// pipeline, not here.
type DropTable struct {
	Table    string
	IfExists bool
}

// Insert adds a single record.
type Insert struct {
	Table  string
	Values map[string]any
}

// BulkInsert adds many records sharing an identical key set, rendered as one
// multi-row INSERT per batch.
type BulkInsert struct {
	Table     string
	Records   []map[string]any
	BatchSize int
}

// Update modifies rows matching the where map. Every condition is an
// equality joined with AND.
type Update struct {
	Table string
	Set   map[string]any
	Where map[string]any
}

// Delete removes rows matching the where map.
type Delete struct {
	Table string
	Where map[string]any
}

func (CreateTable) operation() {}
func (AlterTable) operation()  {}
func (DropTable) operation()   {}
func (Insert) operation()      {}
func (BulkInsert) operation()  {}
func (Update) operation()      {}
func (Delete) operation()      {}

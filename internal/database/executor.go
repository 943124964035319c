package database

import "context"

// Executor is the driver collaborator consumed by the validation pipeline
// and the tools: execute a parameterized statement, run a parameterized
// read, count rows for a filter, probe schema metadata. Implementations own
// connection acquisition and single-statement transaction discipline; the
// engine never pools connections or spans statements.
type Executor interface {
	// Exec runs a parameterized mutating statement and returns the number
	// of affected rows.
	Exec(ctx context.Context, query string, args ...any) (int64, error)

	// Query runs a parameterized read and marshals the rows into maps.
	Query(ctx context.Context, query string, args ...any) ([]map[string]any, error)

	// QueryCount runs a single-value count query.
	QueryCount(ctx context.Context, query string, args ...any) (int64, error)

	// TableExists reports whether a table exists in the active schema.
	TableExists(ctx context.Context, table string) (bool, error)

	// ListTables returns the table names in the active schema.
	ListTables(ctx context.Context) ([]string, error)

	// Schema returns a human-readable column listing for the active schema.
	Schema(ctx context.Context) (string, error)

	// HealthCheck pings the database.
	HealthCheck(ctx context.Context) error

	Close() error
}

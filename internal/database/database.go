package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"mcp-databases/internal/config"
	"mcp-databases/internal/errors"
	"mcp-databases/internal/logging"
	"mcp-databases/internal/sqlbuilder"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"
)

// DB is the dialect-aware driver collaborator backing the Executor
// interface. It owns one *sql.DB pool per process.
type DB struct {
	db      *sql.DB
	dialect sqlbuilder.Dialect
	adapter adapter
	logger  *logging.Logger
}

// Ensure DB implements Executor
var _ Executor = (*DB)(nil)

// Open connects to the database described by cfg using the driver for its
// dialect.
func Open(cfg *config.DatabaseConfig) (*DB, error) {
	dialect, err := sqlbuilder.ParseDialect(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	a := adapterFor(dialect)

	db, err := sql.Open(a.DriverName(), a.DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger := logging.DBLogger
	logger.Info("database connection established",
		logging.String("dialect", dialect.String()),
		logging.String("host", cfg.Host))

	return &DB{db: db, dialect: dialect, adapter: a, logger: logger}, nil
}

// Dialect returns the dialect this connection speaks.
func (d *DB) Dialect() sqlbuilder.Dialect {
	return d.dialect
}

// Exec runs a parameterized mutating statement and returns the affected row
// count.
func (d *DB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	result, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Driver(err, "exec")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		// Some drivers cannot report affected rows for DDL.
		return 0, nil
	}
	return affected, nil
}

// Query runs a parameterized read and marshals the result set into maps.
func (d *DB) Query(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Driver(err, "query")
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Driver(err, "query columns")
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, errors.Driver(err, "row scan")
		}

		rowData := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				rowData[col] = string(b)
			} else {
				rowData[col] = values[i]
			}
		}
		results = append(results, rowData)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Driver(err, "row iteration")
	}
	return results, nil
}

// QueryCount runs a single-value count query.
func (d *DB) QueryCount(ctx context.Context, query string, args ...any) (int64, error) {
	var count int64
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, errors.Driver(err, "count query")
	}
	return count, nil
}

// TableExists reports whether a table exists in the active schema.
func (d *DB) TableExists(ctx context.Context, table string) (bool, error) {
	query, _ := d.adapter.TableExistsQuery()
	count, err := d.QueryCount(ctx, query, table)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListTables returns the table names in the active schema.
func (d *DB) ListTables(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, d.adapter.ListTablesQuery())
	if err != nil {
		return nil, errors.Driver(err, "list tables")
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Driver(err, "table name scan")
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Driver(err, "table iteration")
	}
	return tables, nil
}

// Schema returns one "table.column (type)" line per column in the active
// schema.
func (d *DB) Schema(ctx context.Context) (string, error) {
	rows, err := d.db.QueryContext(ctx, d.adapter.SchemaQuery())
	if err != nil {
		return "", errors.Driver(err, "schema query")
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var table, column, dataType string
		if err := rows.Scan(&table, &column, &dataType); err != nil {
			return "", errors.Driver(err, "schema scan")
		}
		lines = append(lines, fmt.Sprintf("%s.%s (%s)", table, column, dataType))
	}
	if err := rows.Err(); err != nil {
		return "", errors.Driver(err, "schema iteration")
	}
	return strings.Join(lines, "\n"), nil
}

// HealthCheck pings the database.
func (d *DB) HealthCheck(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return errors.Driver(err, "ping")
	}
	return nil
}

// Close closes the connection pool.
func (d *DB) Close() error {
	return d.db.Close()
}

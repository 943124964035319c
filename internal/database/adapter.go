package database

import (
	"fmt"
	"net/url"

	"mcp-databases/internal/config"
	"mcp-databases/internal/sqlbuilder"
)

// adapter captures the per-dialect connection and metadata queries. The
// engine itself is dialect-parameterized through sqlbuilder.Dialect; the
// adapter only covers what the driver needs.
type adapter interface {
	// DriverName returns the database/sql driver name.
	DriverName() string

	// DSN constructs a driver connection string from configuration.
	DSN(cfg *config.DatabaseConfig) string

	// ListTablesQuery returns the query listing tables in the active schema.
	ListTablesQuery() string

	// SchemaQuery returns the query listing (table, column, type) rows for
	// the active schema.
	SchemaQuery() string

	// TableExistsQuery returns a count query with one bound table name.
	TableExistsQuery() (string, int)
}

func adapterFor(d sqlbuilder.Dialect) adapter {
	switch d {
	case sqlbuilder.Postgres:
		return postgresAdapter{}
	case sqlbuilder.MSSQL:
		return mssqlAdapter{}
	default:
		return mysqlAdapter{}
	}
}

type mysqlAdapter struct{}

func (mysqlAdapter) DriverName() string { return "mysql" }

func (mysqlAdapter) DSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)
}

func (mysqlAdapter) ListTablesQuery() string {
	return "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() ORDER BY table_name"
}

func (mysqlAdapter) SchemaQuery() string {
	return "SELECT table_name, column_name, data_type FROM information_schema.columns WHERE table_schema = DATABASE() ORDER BY table_name, ordinal_position"
}

func (mysqlAdapter) TableExistsQuery() (string, int) {
	return "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?", 1
}

type postgresAdapter struct{}

func (postgresAdapter) DriverName() string { return "postgres" }

func (postgresAdapter) DSN(cfg *config.DatabaseConfig) string {
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.DBName, sslmode)
}

func (postgresAdapter) ListTablesQuery() string {
	return "SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename"
}

func (postgresAdapter) SchemaQuery() string {
	return "SELECT table_name, column_name, data_type FROM information_schema.columns WHERE table_schema = 'public' ORDER BY table_name, ordinal_position"
}

func (postgresAdapter) TableExistsQuery() (string, int) {
	return "SELECT COUNT(*) FROM pg_tables WHERE schemaname = 'public' AND tablename = $1", 1
}

type mssqlAdapter struct{}

func (mssqlAdapter) DriverName() string { return "sqlserver" }

func (mssqlAdapter) DSN(cfg *config.DatabaseConfig) string {
	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		RawQuery: url.Values{"database": {cfg.DBName}}.Encode(),
	}
	return u.String()
}

func (mssqlAdapter) ListTablesQuery() string {
	return "SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME"
}

func (mssqlAdapter) SchemaQuery() string {
	return "SELECT TABLE_NAME, COLUMN_NAME, DATA_TYPE FROM INFORMATION_SCHEMA.COLUMNS ORDER BY TABLE_NAME, ORDINAL_POSITION"
}

func (mssqlAdapter) TableExistsQuery() (string, int) {
	return "SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_NAME = @p1", 1
}

package sqlbuilder

import (
	"fmt"
	"strings"

	"mcp-databases/internal/errors"
)

// Dialect selects the quoting style, placeholder syntax, auto-increment
// rendering, type mapping, and optional-feature support of a database
// product.
type Dialect int

const (
	MySQL Dialect = iota
	Postgres
	MSSQL
)

func (d Dialect) String() string {
	switch d {
	case MySQL:
		return "mysql"
	case Postgres:
		return "postgres"
	case MSSQL:
		return "mssql"
	default:
		return "unknown"
	}
}

// ParseDialect maps a configuration string to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mysql":
		return MySQL, nil
	case "postgres", "postgresql":
		return Postgres, nil
	case "mssql", "sqlserver":
		return MSSQL, nil
	default:
		return 0, errors.Newf(errors.KindUnsupportedOperationForDialect,
			"unsupported dialect %q (supported: mysql, postgres, mssql)", s)
	}
}

// QuoteIdentifier wraps an already-validated identifier in the dialect's
// quoting characters. It never escapes: identifiers reach this point only
// after passing the identifier validator, which excludes quote characters.
func (d Dialect) QuoteIdentifier(name string) string {
	switch d {
	case MySQL:
		return "`" + name + "`"
	case Postgres:
		return `"` + name + `"`
	case MSSQL:
		return "[" + name + "]"
	default:
		return name
	}
}

// Placeholder returns the bind-parameter marker for the n-th value (1-based).
func (d Dialect) Placeholder(n int) string {
	switch d {
	case Postgres:
		return fmt.Sprintf("$%d", n)
	case MSSQL:
		return fmt.Sprintf("@p%d", n)
	default:
		return "?"
	}
}

// SupportsTableOptions reports whether ENGINE/CHARSET table options apply.
func (d Dialect) SupportsTableOptions() bool {
	return d == MySQL
}

// SupportsColumnPosition reports whether ADD COLUMN accepts an AFTER hint.
func (d Dialect) SupportsColumnPosition() bool {
	return d == MySQL
}

// SupportsCreateIfNotExists reports whether CREATE TABLE IF NOT EXISTS is
// native syntax. MSSQL has no equivalent, so the pipeline synthesizes it
// with an existence pre-check through the driver.
func (d Dialect) SupportsCreateIfNotExists() bool {
	return d != MSSQL
}

// autoIncrementColumn rewrites a column's type and trailing tokens for the
// dialect's auto-increment idiom. MySQL keeps the AUTO_INCREMENT token,
// Postgres substitutes a serial type, MSSQL appends IDENTITY(1,1).
func (d Dialect) autoIncrementColumn(typeToken string) (string, string) {
	switch d {
	case Postgres:
		if strings.HasPrefix(strings.ToUpper(typeToken), "BIGINT") {
			return "BIGSERIAL", ""
		}
		return "SERIAL", ""
	case MSSQL:
		return typeToken, "IDENTITY(1,1)"
	default:
		return typeToken, "AUTO_INCREMENT"
	}
}

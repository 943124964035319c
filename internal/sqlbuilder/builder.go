package sqlbuilder

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"mcp-databases/internal/errors"
	"mcp-databases/internal/security"
)

const (
	// MaxBulkRecords is the hard ceiling on records per bulk operation,
	// enforced before any batch is rendered.
	MaxBulkRecords = 10000
	// DefaultBatchSize is used when a bulk request does not set one.
	DefaultBatchSize = 100
)

// Statement is a ready-to-execute pair of SQL text and bound values. The SQL
// text contains placeholders only; no caller-supplied value is ever
// concatenated into it.
type Statement struct {
	SQL  string
	Args []any
	// NeedsExistsPrecheck marks a CREATE TABLE whose dialect lacks native
	// IF NOT EXISTS; the pipeline synthesizes it via the driver.
	NeedsExistsPrecheck bool
	Table               string
}

// allowedTypePatterns whitelists the column type tokens the builder accepts.
var allowedTypePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^INT(\(\d+\))?$`),
	regexp.MustCompile(`^VARCHAR\(\d+\)$`),
	regexp.MustCompile(`^CHAR\(\d+\)$`),
	regexp.MustCompile(`^TEXT$`),
	regexp.MustCompile(`^DECIMAL\(\d+,\s?\d+\)$`),
	regexp.MustCompile(`^FLOAT(\(\d+,\s?\d+\))?$`),
	regexp.MustCompile(`^DOUBLE(\(\d+,\s?\d+\))?$`),
	regexp.MustCompile(`^DATE$`),
	regexp.MustCompile(`^DATETIME$`),
	regexp.MustCompile(`^TIMESTAMP$`),
	regexp.MustCompile(`^BOOLEAN$`),
	regexp.MustCompile(`^BOOL$`),
	regexp.MustCompile(`^TINYINT(\(\d+\))?$`),
	regexp.MustCompile(`^SMALLINT$`),
	regexp.MustCompile(`^BIGINT(\(\d+\))?$`),
	regexp.MustCompile(`^MEDIUMTEXT$`),
	regexp.MustCompile(`^LONGTEXT$`),
}

// allowedConstraintPrefixes whitelists constraint tokens by leading keyword.
var allowedConstraintPrefixes = []string{
	"NOT NULL", "NULL", "PRIMARY KEY", "UNIQUE", "AUTO_INCREMENT",
	"DEFAULT", "CHECK", "FOREIGN KEY", "INDEX",
}

// constraintBodyRe bounds the characters a constraint token may carry, so a
// whitelisted prefix cannot smuggle statement delimiters.
var constraintBodyRe = regexp.MustCompile(`^[A-Za-z0-9_ ()'.,+-]+$`)

// Build renders a declarative Operation into one or more dialect-correct
// statements. Every caller-supplied value becomes a placeholder with its
// value appended to Args in placeholder order; map keys are iterated in
// sorted order so rendering is deterministic. All operations except
// BulkInsert yield exactly one statement.
func Build(op Operation, d Dialect) ([]Statement, error) {
	switch o := op.(type) {
	case CreateTable:
		return one(buildCreateTable(o, d))
	case AlterTable:
		return one(buildAlterTable(o, d))
	case DropTable:
		return one(buildDropTable(o, d))
	case Insert:
		return one(buildInsert(o, d))
	case BulkInsert:
		return buildBulkInsert(o, d)
	case Update:
		return one(buildUpdate(o, d))
	case Delete:
		return one(buildDelete(o, d))
	default:
		return nil, errors.Newf(errors.KindUnsupportedOperationForDialect,
			"unknown operation type %T", op)
	}
}

func one(st Statement, err error) ([]Statement, error) {
	if err != nil {
		return nil, err
	}
	return []Statement{st}, nil
}

// BuildCount renders the read-only pre-flight count for the same WHERE
// predicate a mutation will use.
func BuildCount(table string, where map[string]any, d Dialect) (Statement, error) {
	if err := security.ValidateIdentifier(table); err != nil {
		return Statement{}, err
	}
	clause, args, err := whereClause(where, d, 0)
	if err != nil {
		return Statement{}, err
	}
	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", d.QuoteIdentifier(table), clause)
	return Statement{SQL: sql, Args: args, Table: table}, nil
}

func buildCreateTable(op CreateTable, d Dialect) (Statement, error) {
	if err := security.ValidateIdentifier(op.Spec.Name); err != nil {
		return Statement{}, err
	}
	if len(op.Spec.Columns) == 0 {
		return Statement{}, errors.New(errors.KindTypeNotAllowed,
			"table definition requires at least one column")
	}

	defs := make([]string, 0, len(op.Spec.Columns))
	for _, col := range op.Spec.Columns {
		def, err := columnDefinition(col, d)
		if err != nil {
			return Statement{}, err
		}
		defs = append(defs, def)
	}

	var sb strings.Builder
	sb.WriteString("CREATE TABLE")
	if op.IfNotExists && d.SupportsCreateIfNotExists() {
		sb.WriteString(" IF NOT EXISTS")
	}
	sb.WriteString(fmt.Sprintf(" %s (\n  %s\n)", d.QuoteIdentifier(op.Spec.Name), strings.Join(defs, ",\n  ")))

	if d.SupportsTableOptions() {
		if op.Spec.Options.Engine != "" {
			if err := security.ValidateIdentifier(op.Spec.Options.Engine); err != nil {
				return Statement{}, err
			}
			sb.WriteString(" ENGINE=" + op.Spec.Options.Engine)
		}
		if op.Spec.Options.Charset != "" {
			if err := security.ValidateIdentifier(op.Spec.Options.Charset); err != nil {
				return Statement{}, err
			}
			sb.WriteString(" CHARACTER SET " + op.Spec.Options.Charset)
		}
	}

	return Statement{
		SQL:                 sb.String(),
		Table:               op.Spec.Name,
		NeedsExistsPrecheck: op.IfNotExists && !d.SupportsCreateIfNotExists(),
	}, nil
}

func buildAlterTable(op AlterTable, d Dialect) (Statement, error) {
	if err := security.ValidateIdentifier(op.Table); err != nil {
		return Statement{}, err
	}
	if err := security.ValidateIdentifier(op.Column.Name); err != nil {
		return Statement{}, err
	}

	table := d.QuoteIdentifier(op.Table)
	column := d.QuoteIdentifier(op.Column.Name)

	switch op.Action {
	case AddColumn:
		def, err := columnDefinition(op.Column, d)
		if err != nil {
			return Statement{}, err
		}
		keyword := " ADD COLUMN "
		if d == MSSQL {
			keyword = " ADD "
		}
		sql := "ALTER TABLE " + table + keyword + def
		if op.Column.After != "" && d.SupportsColumnPosition() {
			if err := security.ValidateIdentifier(op.Column.After); err != nil {
				return Statement{}, err
			}
			sql += " AFTER " + d.QuoteIdentifier(op.Column.After)
		}
		return Statement{SQL: sql, Table: op.Table}, nil

	case DropColumn:
		return Statement{
			SQL:   fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", table, column),
			Table: op.Table,
		}, nil

	case ModifyColumn:
		typeToken, err := normalizeType(op.Column.Type)
		if err != nil {
			return Statement{}, err
		}
		var sql string
		switch d {
		case MySQL:
			sql = fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s %s", table, column, typeToken)
		case Postgres:
			sql = fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s", table, column, typeToken)
		case MSSQL:
			sql = fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s %s", table, column, typeToken)
		}
		return Statement{SQL: sql, Table: op.Table}, nil

	default:
		return Statement{}, errors.Newf(errors.KindUnsupportedOperationForDialect,
			"unsupported ALTER TABLE operation %q (supported: ADD_COLUMN, MODIFY_COLUMN, DROP_COLUMN)", op.Action)
	}
}

func buildDropTable(op DropTable, d Dialect) (Statement, error) {
	if err := security.ValidateIdentifier(op.Table); err != nil {
		return Statement{}, err
	}
	sql := "DROP TABLE"
	if op.IfExists {
		sql += " IF EXISTS"
	}
	sql += " " + d.QuoteIdentifier(op.Table)
	return Statement{SQL: sql, Table: op.Table}, nil
}

func buildInsert(op Insert, d Dialect) (Statement, error) {
	if err := security.ValidateIdentifier(op.Table); err != nil {
		return Statement{}, err
	}
	if len(op.Values) == 0 {
		return Statement{}, errors.New(errors.KindDangerousCommand,
			"insert requires at least one column value")
	}

	keys := sortedKeys(op.Values)
	cols := make([]string, 0, len(keys))
	placeholders := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for i, k := range keys {
		if err := security.ValidateIdentifier(k); err != nil {
			return Statement{}, err
		}
		cols = append(cols, d.QuoteIdentifier(k))
		placeholders = append(placeholders, d.Placeholder(i+1))
		args = append(args, op.Values[k])
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdentifier(op.Table), strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	return Statement{SQL: sql, Args: args, Table: op.Table}, nil
}

func buildBulkInsert(op BulkInsert, d Dialect) ([]Statement, error) {
	if err := security.ValidateIdentifier(op.Table); err != nil {
		return nil, err
	}
	if len(op.Records) == 0 {
		return nil, errors.New(errors.KindInconsistentRecordShape,
			"bulk insert requires at least one record")
	}
	if len(op.Records) > MaxBulkRecords {
		return nil, errors.RecordCountExceeded(int64(len(op.Records)), MaxBulkRecords)
	}

	keys := sortedKeys(op.Records[0])
	for _, k := range keys {
		if err := security.ValidateIdentifier(k); err != nil {
			return nil, err
		}
	}
	for i, rec := range op.Records {
		if len(rec) != len(keys) {
			return nil, errors.Newf(errors.KindInconsistentRecordShape,
				"record %d has %d column(s), expected %d", i+1, len(rec), len(keys))
		}
		for _, k := range keys {
			if _, ok := rec[k]; !ok {
				return nil, errors.Newf(errors.KindInconsistentRecordShape,
					"record %d is missing column %q", i+1, k)
			}
		}
	}

	batchSize := op.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	cols := make([]string, len(keys))
	for i, k := range keys {
		cols[i] = d.QuoteIdentifier(k)
	}
	header := fmt.Sprintf("INSERT INTO %s (%s) VALUES ",
		d.QuoteIdentifier(op.Table), strings.Join(cols, ", "))

	var statements []Statement
	for start := 0; start < len(op.Records); start += batchSize {
		end := start + batchSize
		if end > len(op.Records) {
			end = len(op.Records)
		}
		batch := op.Records[start:end]

		rows := make([]string, 0, len(batch))
		args := make([]any, 0, len(batch)*len(keys))
		n := 0
		for _, rec := range batch {
			marks := make([]string, len(keys))
			for i, k := range keys {
				n++
				marks[i] = d.Placeholder(n)
				args = append(args, rec[k])
			}
			rows = append(rows, "("+strings.Join(marks, ", ")+")")
		}
		statements = append(statements, Statement{
			SQL:   header + strings.Join(rows, ", "),
			Args:  args,
			Table: op.Table,
		})
	}
	return statements, nil
}

func buildUpdate(op Update, d Dialect) (Statement, error) {
	if err := security.ValidateIdentifier(op.Table); err != nil {
		return Statement{}, err
	}
	if len(op.Set) == 0 {
		return Statement{}, errors.New(errors.KindDangerousCommand,
			"update requires at least one SET value")
	}
	if len(op.Where) == 0 {
		return Statement{}, errors.New(errors.KindDangerousCommand,
			"unbounded UPDATE is not allowed: WHERE conditions are required")
	}

	setKeys := sortedKeys(op.Set)
	setClauses := make([]string, 0, len(setKeys))
	args := make([]any, 0, len(setKeys)+len(op.Where))
	n := 0
	for _, k := range setKeys {
		if err := security.ValidateIdentifier(k); err != nil {
			return Statement{}, err
		}
		n++
		setClauses = append(setClauses, fmt.Sprintf("%s = %s", d.QuoteIdentifier(k), d.Placeholder(n)))
		args = append(args, op.Set[k])
	}

	clause, whereArgs, err := whereClause(op.Where, d, n)
	if err != nil {
		return Statement{}, err
	}
	args = append(args, whereArgs...)

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		d.QuoteIdentifier(op.Table), strings.Join(setClauses, ", "), clause)
	return Statement{SQL: sql, Args: args, Table: op.Table}, nil
}

func buildDelete(op Delete, d Dialect) (Statement, error) {
	if err := security.ValidateIdentifier(op.Table); err != nil {
		return Statement{}, err
	}
	if len(op.Where) == 0 {
		return Statement{}, errors.New(errors.KindDangerousCommand,
			"unbounded DELETE is not allowed: WHERE conditions are required")
	}

	clause, args, err := whereClause(op.Where, d, 0)
	if err != nil {
		return Statement{}, err
	}
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s", d.QuoteIdentifier(op.Table), clause)
	return Statement{SQL: sql, Args: args, Table: op.Table}, nil
}

// whereClause renders sorted equality conditions joined with AND.
// offset is the number of placeholders already emitted by the caller.
func whereClause(where map[string]any, d Dialect, offset int) (string, []any, error) {
	keys := sortedKeys(where)
	clauses := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for i, k := range keys {
		if err := security.ValidateIdentifier(k); err != nil {
			return "", nil, err
		}
		clauses = append(clauses, fmt.Sprintf("%s = %s", d.QuoteIdentifier(k), d.Placeholder(offset+i+1)))
		args = append(args, where[k])
	}
	return strings.Join(clauses, " AND "), args, nil
}

func columnDefinition(col ColumnSpec, d Dialect) (string, error) {
	if err := security.ValidateIdentifier(col.Name); err != nil {
		return "", err
	}
	typeToken, err := normalizeType(col.Type)
	if err != nil {
		return "", err
	}

	tokens, autoIncrement, err := normalizeConstraints(col.Constraints)
	if err != nil {
		return "", err
	}

	if autoIncrement {
		var marker string
		typeToken, marker = d.autoIncrementColumn(typeToken)
		if marker != "" {
			tokens = append([]string{marker}, tokens...)
		}
	}

	def := d.QuoteIdentifier(col.Name) + " " + typeToken
	if len(tokens) > 0 {
		def += " " + strings.Join(tokens, " ")
	}
	return def, nil
}

func normalizeType(typeToken string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(typeToken))
	for _, re := range allowedTypePatterns {
		if re.MatchString(normalized) {
			return normalized, nil
		}
	}
	return "", errors.Newf(errors.KindTypeNotAllowed,
		"column type %q is not in the allowed-type whitelist", typeToken).
		WithFragment("type", typeToken)
}

// normalizeConstraints validates constraint tokens against the whitelist and
// splits out AUTO_INCREMENT, which is rendered per dialect.
func normalizeConstraints(constraints []string) ([]string, bool, error) {
	var tokens []string
	autoIncrement := false
	for _, c := range constraints {
		token := strings.TrimSpace(c)
		if token == "" {
			continue
		}
		upper := strings.ToUpper(token)
		if upper == "AUTO_INCREMENT" {
			autoIncrement = true
			continue
		}
		if !constraintBodyRe.MatchString(token) {
			return nil, false, errors.Newf(errors.KindDangerousPattern,
				"constraint %q contains disallowed characters", token).
				WithFragment("constraint", token)
		}
		allowed := false
		for _, prefix := range allowedConstraintPrefixes {
			if strings.HasPrefix(upper, prefix) {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, false, errors.Newf(errors.KindTypeNotAllowed,
				"constraint %q is not in the allowed-constraint whitelist", token).
				WithFragment("constraint", token)
		}
		tokens = append(tokens, token)
	}
	return tokens, autoIncrement, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

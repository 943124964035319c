// Package pipeline orchestrates the validation engine in a fixed order:
// identifier validation, pattern scanning on every string-valued input,
// safe query building, and — for destructive operations — the confirmation
// and safety-limit enforcer. It short-circuits on the first rejection and
// never partially applies a rejected operation.
//
// The pipeline performs no I/O itself except the pre-flight count and the
// table-existence pre-check, both delegated to the driver collaborator.
package pipeline

import (
	"context"

	"mcp-databases/internal/errors"
	"mcp-databases/internal/logging"
	"mcp-databases/internal/security"
	"mcp-databases/internal/sqlbuilder"
)

// Counter is the narrow driver capability the engine consumes: a read-only
// row count for a filter, and a table-existence probe. Execution of the
// built statements stays with the caller.
type Counter interface {
	QueryCount(ctx context.Context, query string, args ...any) (int64, error)
	TableExists(ctx context.Context, table string) (bool, error)
}

// Limits carries the configured safety ceilings for mutating operations.
type Limits struct {
	UpdateDefault int64
	DeleteDefault int64
}

// DefaultLimits mirror the server defaults: 100 rows for both UPDATE and
// DELETE when the caller does not set a limit.
func DefaultLimits() Limits {
	return Limits{UpdateDefault: 100, DeleteDefault: 100}
}

// Pipeline validates declarative operations against an immutable security
// configuration for one dialect. It is stateless per invocation; concurrent
// use requires no locking.
type Pipeline struct {
	sec     *security.Config
	driver  Counter
	dialect sqlbuilder.Dialect
	limits  Limits
	logger  *logging.Logger
}

// New creates a validation pipeline bound to a dialect and a driver
// collaborator.
func New(sec *security.Config, driver Counter, dialect sqlbuilder.Dialect, limits Limits) *Pipeline {
	if limits.UpdateDefault <= 0 {
		limits.UpdateDefault = DefaultLimits().UpdateDefault
	}
	if limits.DeleteDefault <= 0 {
		limits.DeleteDefault = DefaultLimits().DeleteDefault
	}
	return &Pipeline{
		sec:     sec,
		driver:  driver,
		dialect: dialect,
		limits:  limits,
		logger:  logging.PipelineLogger,
	}
}

// Dialect returns the dialect this pipeline renders for.
func (p *Pipeline) Dialect() sqlbuilder.Dialect {
	return p.dialect
}

// CreateTable validates and renders a CREATE TABLE. When the dialect lacks
// native IF NOT EXISTS and the table already exists, it returns skip=true
// and no statement, synthesizing the equivalent behavior.
func (p *Pipeline) CreateTable(ctx context.Context, op sqlbuilder.CreateTable) (sqlbuilder.Statement, bool, error) {
	if err := security.ValidateIdentifier(op.Spec.Name); err != nil {
		return sqlbuilder.Statement{}, false, err
	}
	for _, col := range op.Spec.Columns {
		if err := p.scanColumnSpec(col); err != nil {
			return sqlbuilder.Statement{}, false, err
		}
	}

	stmts, err := sqlbuilder.Build(op, p.dialect)
	if err != nil {
		return sqlbuilder.Statement{}, false, err
	}
	st := stmts[0]

	if st.NeedsExistsPrecheck {
		exists, err := p.driver.TableExists(ctx, op.Spec.Name)
		if err != nil {
			return sqlbuilder.Statement{}, false, driverErr(err, "table existence pre-check")
		}
		if exists {
			p.logger.Info("table already exists, skipping create",
				logging.String("table", op.Spec.Name))
			return sqlbuilder.Statement{}, true, nil
		}
	}
	return st, false, nil
}

// AlterTable validates and renders an ALTER TABLE sub-operation.
func (p *Pipeline) AlterTable(op sqlbuilder.AlterTable) (sqlbuilder.Statement, error) {
	if err := security.ValidateIdentifier(op.Table); err != nil {
		return sqlbuilder.Statement{}, err
	}
	if err := p.scanColumnSpec(op.Column); err != nil {
		return sqlbuilder.Statement{}, err
	}
	stmts, err := sqlbuilder.Build(op, p.dialect)
	if err != nil {
		return sqlbuilder.Statement{}, err
	}
	return stmts[0], nil
}

// DropTable validates a DROP TABLE and enforces the exact confirmation
// token before rendering it.
func (p *Pipeline) DropTable(op sqlbuilder.DropTable, confirmation string) (sqlbuilder.Statement, error) {
	if err := security.ValidateIdentifier(op.Table); err != nil {
		return sqlbuilder.Statement{}, err
	}
	if err := checkConfirmation(DropTableConfirmation(op.Table), confirmation); err != nil {
		return sqlbuilder.Statement{}, err
	}
	stmts, err := sqlbuilder.Build(op, p.dialect)
	if err != nil {
		return sqlbuilder.Statement{}, err
	}
	return stmts[0], nil
}

// Insert validates and renders a single-record INSERT.
func (p *Pipeline) Insert(op sqlbuilder.Insert) (sqlbuilder.Statement, error) {
	if err := security.ValidateIdentifier(op.Table); err != nil {
		return sqlbuilder.Statement{}, err
	}
	if err := p.scanMap(op.Values); err != nil {
		return sqlbuilder.Statement{}, err
	}
	stmts, err := sqlbuilder.Build(op, p.dialect)
	if err != nil {
		return sqlbuilder.Statement{}, err
	}
	return stmts[0], nil
}

// BulkInsert validates every record and renders one multi-row INSERT per
// batch. The record-count ceiling is enforced before any batch is rendered.
func (p *Pipeline) BulkInsert(op sqlbuilder.BulkInsert) ([]sqlbuilder.Statement, error) {
	if err := security.ValidateIdentifier(op.Table); err != nil {
		return nil, err
	}
	if len(op.Records) > sqlbuilder.MaxBulkRecords {
		return nil, errors.RecordCountExceeded(int64(len(op.Records)), sqlbuilder.MaxBulkRecords)
	}
	for _, rec := range op.Records {
		if err := p.scanMap(rec); err != nil {
			return nil, err
		}
	}
	return sqlbuilder.Build(op, p.dialect)
}

// Update validates and renders an UPDATE, then runs the pre-flight count
// against the same WHERE predicate. limit <= 0 selects the configured
// default (100). Returns the matched row count alongside the statement.
func (p *Pipeline) Update(ctx context.Context, op sqlbuilder.Update, limit int64) (sqlbuilder.Statement, int64, error) {
	if err := security.ValidateIdentifier(op.Table); err != nil {
		return sqlbuilder.Statement{}, 0, err
	}
	if err := p.scanMap(op.Set); err != nil {
		return sqlbuilder.Statement{}, 0, err
	}
	if err := p.scanMap(op.Where); err != nil {
		return sqlbuilder.Statement{}, 0, err
	}

	stmts, err := sqlbuilder.Build(op, p.dialect)
	if err != nil {
		return sqlbuilder.Statement{}, 0, err
	}

	if limit <= 0 {
		limit = p.limits.UpdateDefault
	}
	count, err := p.preflightCount(ctx, op.Table, op.Where, limit)
	if err != nil {
		return sqlbuilder.Statement{}, 0, err
	}
	return stmts[0], count, nil
}

// Delete validates and renders a DELETE behind both destructive gates: the
// exact confirmation token and the pre-flight count against the safety
// limit. Both must pass; a correct token with an overly broad WHERE clause
// is still rejected, and a small blast radius does not excuse a missing
// token.
func (p *Pipeline) Delete(ctx context.Context, op sqlbuilder.Delete, confirmation string, limit int64) (sqlbuilder.Statement, int64, error) {
	if err := security.ValidateIdentifier(op.Table); err != nil {
		return sqlbuilder.Statement{}, 0, err
	}
	if err := p.scanMap(op.Where); err != nil {
		return sqlbuilder.Statement{}, 0, err
	}

	stmts, err := sqlbuilder.Build(op, p.dialect)
	if err != nil {
		return sqlbuilder.Statement{}, 0, err
	}

	if err := checkConfirmation(DeleteConfirmation(op.Table, op.Where), confirmation); err != nil {
		return sqlbuilder.Statement{}, 0, err
	}

	if limit <= 0 {
		limit = p.limits.DeleteDefault
	}
	count, err := p.preflightCount(ctx, op.Table, op.Where, limit)
	if err != nil {
		return sqlbuilder.Statement{}, 0, err
	}
	return stmts[0], count, nil
}

// ValidateReadOnly gates raw SQL for the read-only execution path:
// classification against the command sets, then the full pattern scan.
func (p *Pipeline) ValidateReadOnly(query string) error {
	return p.sec.ValidateQuery(query)
}

// Inspect produces the full security report for raw query text without
// executing anything. It never fails.
func (p *Pipeline) Inspect(query string) security.Report {
	return p.sec.Inspect(query)
}

// scanMap validates every key as an identifier and scans every string value
// for injection signatures.
func (p *Pipeline) scanMap(m map[string]any) error {
	for k, v := range m {
		if err := security.ValidateIdentifier(k); err != nil {
			return err
		}
		if s, ok := v.(string); ok {
			if err := p.sec.ScanValue(k, s); err != nil {
				return err
			}
		}
	}
	return nil
}

// scanColumnSpec validates a column's name and scans its constraint tokens,
// which are the only free-text fragments a DDL operation carries.
func (p *Pipeline) scanColumnSpec(col sqlbuilder.ColumnSpec) error {
	if err := security.ValidateIdentifier(col.Name); err != nil {
		return err
	}
	for _, c := range col.Constraints {
		if err := p.sec.ScanValue(col.Name, c); err != nil {
			return err
		}
	}
	return nil
}

func driverErr(err error, operation string) error {
	if _, ok := errors.KindOf(err); ok {
		return err
	}
	return errors.Driver(err, operation)
}

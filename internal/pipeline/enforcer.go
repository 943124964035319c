package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"mcp-databases/internal/errors"
	"mcp-databases/internal/logging"
	"mcp-databases/internal/sqlbuilder"
)

// DropTableConfirmation derives the token a caller must supply, byte for
// byte, to drop a table: DELETE_TABLE_<table>.
func DropTableConfirmation(table string) string {
	return "DELETE_TABLE_" + table
}

// DeleteConfirmation derives the token for a record deletion:
// DELETE_FROM_<table>_WHERE_<key_value>... with keys in sorted order, so the
// expected token is deterministic regardless of map iteration order.
func DeleteConfirmation(table string, where map[string]any) string {
	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s_%v", k, where[k]))
	}
	return fmt.Sprintf("DELETE_FROM_%s_WHERE_%s", table, strings.Join(parts, "_"))
}

// checkConfirmation enforces an exact, case-sensitive token match.
func checkConfirmation(expected, got string) error {
	if got == "" {
		return errors.Newf(errors.KindMissingConfirmation,
			"destructive operation requires confirmation %q", expected)
	}
	if got != expected {
		return errors.Newf(errors.KindConfirmationMismatch,
			"confirmation does not match; expected %q", expected).
			WithFragment("confirmation", got)
	}
	return nil
}

// preflightCount issues a read-only COUNT against the same WHERE predicate
// the mutation will use and rejects when it exceeds the limit. The count and
// the subsequent execution are two separate driver calls: rows can change in
// between, so this is a best-effort blast-radius check, not a transactional
// guarantee.
func (p *Pipeline) preflightCount(ctx context.Context, table string, where map[string]any, limit int64) (int64, error) {
	st, err := sqlbuilder.BuildCount(table, where, p.dialect)
	if err != nil {
		return 0, err
	}

	count, err := p.driver.QueryCount(ctx, st.SQL, st.Args...)
	if err != nil {
		return 0, driverErr(err, "pre-flight count")
	}

	if count > limit {
		p.logger.Warn("safety limit exceeded, operation aborted",
			logging.String("table", table),
			logging.Int64("matched", count),
			logging.Int64("limit", limit))
		return 0, errors.LimitExceeded(count, limit)
	}
	return count, nil
}

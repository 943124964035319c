package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-databases/internal/errors"
)

func TestInspect_SafeQuery(t *testing.T) {
	cfg := NewConfig()

	report := cfg.Inspect("SELECT * FROM usuarios WHERE nome = 'João'")
	assert.True(t, report.IsSafe)
	assert.Equal(t, "SELECT", report.FirstCommand)
	assert.Empty(t, report.DangerousCommands)
	assert.Empty(t, report.DangerousPatterns)
	assert.Equal(t, "query passed all security checks", report.Message)
}

func TestInspect_BlockedCommand(t *testing.T) {
	cfg := NewConfig()

	report := cfg.Inspect("DELETE FROM usuarios")
	assert.False(t, report.IsSafe)
	assert.Equal(t, "DELETE", report.FirstCommand)
	assert.Equal(t, []string{"DELETE"}, report.DangerousCommands)
	assert.Contains(t, report.Message, "DELETE")
}

func TestInspect_ReportsAllFindings(t *testing.T) {
	cfg := NewConfig()

	report := cfg.Inspect("SELECT * FROM users; DROP TABLE users; DELETE FROM logs")
	assert.False(t, report.IsSafe)
	assert.Equal(t, "SELECT", report.FirstCommand)
	assert.Contains(t, report.DangerousCommands, "DROP")
	assert.Contains(t, report.DangerousCommands, "DELETE")
	assert.NotEmpty(t, report.DangerousPatterns)
}

func TestInspect_ConditionalCommand(t *testing.T) {
	cfg := NewConfig()

	report := cfg.Inspect("SELECT a FROM t1 INTERSECT SELECT a FROM t2")
	assert.False(t, report.IsSafe)
	assert.Contains(t, report.Message, "INTERSECT")
	assert.Contains(t, report.Message, "precaution")
}

func TestInspect_EmptyQuery(t *testing.T) {
	cfg := NewConfig()

	report := cfg.Inspect("-- just a comment")
	assert.False(t, report.IsSafe)
	assert.Equal(t, "", report.FirstCommand)
	assert.Contains(t, report.Message, "empty")
}

func TestValidateQuery_Allowed(t *testing.T) {
	cfg := NewConfig()

	allowed := []string{
		"SELECT * FROM users",
		"select id, name from users where id = 1",
		"WITH recent AS (SELECT * FROM orders) SELECT count(*) FROM recent",
		"SHOW TABLES",
		"EXPLAIN SELECT * FROM users",
		"SELECT nome FROM usuarios WHERE nome = 'João'",
	}

	for _, query := range allowed {
		t.Run(query, func(t *testing.T) {
			assert.NoError(t, cfg.ValidateQuery(query))
		})
	}
}

func TestValidateQuery_Rejected(t *testing.T) {
	cfg := NewConfig()

	rejected := []struct {
		query string
		kind  errors.Kind
	}{
		{"DELETE FROM users", errors.KindDangerousCommand},
		{"DROP TABLE users", errors.KindDangerousCommand},
		{"INSERT INTO users VALUES (1)", errors.KindDangerousCommand},
		{"SELECT 1; DROP TABLE users", errors.KindDangerousCommand},
		// keyword inside a string literal is still rejected: conservative
		{"SELECT * FROM users WHERE name = 'DROP TABLE users'", errors.KindDangerousCommand},
		{"SELECT * FROM users WHERE id = 1 OR 1=1", errors.KindDangerousPattern},
		{"SELECT LOAD_FILE('/etc/passwd')", errors.KindDangerousPattern},
		{"SELECT BENCHMARK(1000000, MD5('x'))", errors.KindDangerousPattern},
		{"SELECT a FROM t1 UNION SELECT b FROM t2", errors.KindConditionalCommandBlocked},
		{"VACUUM users", errors.KindNotWhitelisted},
		{"CALL proc()", errors.KindNotWhitelisted},
		{"", errors.KindNotWhitelisted},
		{"-- nothing", errors.KindNotWhitelisted},
	}

	for _, tc := range rejected {
		t.Run(tc.query, func(t *testing.T) {
			err := cfg.ValidateQuery(tc.query)
			require.Error(t, err)
			assert.True(t, errors.IsKind(err, tc.kind),
				"expected %s, got %v", tc.kind, err)
		})
	}
}

func TestValidateQuery_CommentHiddenCommand(t *testing.T) {
	cfg := NewConfig()

	// Comment stripping exposes DROP as the leading command.
	err := cfg.ValidateQuery("/* harmless */ DROP TABLE users")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindDangerousCommand))
}

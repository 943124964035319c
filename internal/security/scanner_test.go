package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-databases/internal/errors"
)

func TestScanValue_SafeValues(t *testing.T) {
	cfg := NewConfig()

	safe := []string{
		"João",
		"Maria Silva",
		"ana@example.com",
		"42",
		"a sentence about updates and creation",
		"droplet",
	}

	for _, value := range safe {
		t.Run(value, func(t *testing.T) {
			assert.NoError(t, cfg.ScanValue("name", value))
		})
	}
}

func TestScanValue_DangerousValues(t *testing.T) {
	cfg := NewConfig()

	dangerous := []struct {
		value string
		label string
	}{
		{"'; DROP TABLE usuarios; --", "DROP"},
		{"x'; DELETE FROM users WHERE 'a'='a", "DELETE"},
		{"abc UNION SELECT password FROM users", "UNION"},
		{"insert into admins values (1)", "INSERT"},
		{"update users set role='admin'", "UPDATE"},
		{"truncate table logs", "TRUNCATE"},
		{"exec(@cmd)", "execution"},
		{"1; sp_executesql N'SELECT 1'", "procedure"},
		{"@@version", "system variable"},
		{"xp_cmdshell 'dir'", "extended procedure"},
		{"value -- trailing comment", "comment"},
		{"value /* hidden */", "comment"},
		{"1 OR 1=1", "always-true"},
		{"' OR 'a'='a", "OR"},
	}

	for _, tc := range dangerous {
		t.Run(tc.value, func(t *testing.T) {
			err := cfg.ScanValue("name", tc.value)
			require.Error(t, err)
			assert.True(t, errors.IsKind(err, errors.KindDangerousPattern),
				"expected DangerousPattern, got %v", err)
			assert.Contains(t, strings.ToUpper(err.Error()), strings.ToUpper(tc.label),
				"rejection should name the matched pattern")
		})
	}
}

func TestScanValue_RedactsCredentialColumns(t *testing.T) {
	cfg := NewConfig()

	err := cfg.ScanValue("password", "'; DROP TABLE usuarios; --")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "usuarios", "credential values must not leak into errors")
	assert.Contains(t, err.Error(), "[REDACTED]")
}

func TestScanQuery(t *testing.T) {
	cfg := NewConfig()

	t.Run("clean query has no matches", func(t *testing.T) {
		assert.Empty(t, cfg.ScanQuery("SELECT id, name FROM users WHERE id = 1"))
	})

	t.Run("reports every match", func(t *testing.T) {
		matches := cfg.ScanQuery("SELECT * FROM users; DROP TABLE users; EXEC(@cmd)")
		require.NotEmpty(t, matches)
		labels := make([]string, 0, len(matches))
		for _, m := range matches {
			labels = append(labels, m.Label)
		}
		joined := strings.Join(labels, "; ")
		assert.Contains(t, joined, "stacked statement")
		assert.Contains(t, joined, "EXEC")
	})

	t.Run("timing functions", func(t *testing.T) {
		matches := cfg.ScanQuery("SELECT SLEEP(10)")
		require.Len(t, matches, 1)
		assert.Contains(t, matches[0].Label, "timing")
	})

	t.Run("file access", func(t *testing.T) {
		matches := cfg.ScanQuery("SELECT LOAD_FILE('/etc/passwd')")
		require.Len(t, matches, 1)
		assert.Contains(t, matches[0].Label, "file system")
	})

	t.Run("always-true predicate", func(t *testing.T) {
		matches := cfg.ScanQuery("SELECT * FROM users WHERE id = 1 OR 1=1")
		require.NotEmpty(t, matches)
		assert.Contains(t, matches[0].Label, "always-true")
	})
}

func TestNewConfig_SetsAreDisjoint(t *testing.T) {
	cfg := NewConfig()

	allowed := cfg.AllowedCommands()
	blocked := cfg.BlockedCommands()
	conditional := cfg.ConditionalCommands()

	seen := map[string]string{}
	for _, cmd := range allowed {
		seen[cmd] = "allowed"
	}
	for _, cmd := range blocked {
		require.NotContains(t, seen, cmd)
		seen[cmd] = "blocked"
	}
	for _, cmd := range conditional {
		require.NotContains(t, seen, cmd)
	}

	assert.Contains(t, allowed, "SELECT")
	assert.Contains(t, allowed, "WITH")
	assert.Contains(t, blocked, "DROP")
	assert.Contains(t, conditional, "UNION")
	assert.Greater(t, cfg.PatternCount(), 0)
}

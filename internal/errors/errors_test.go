package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	err := New(KindDangerousCommand, "dangerous command(s) detected")

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindDangerousCommand, kind)

	t.Run("through a wrap chain", func(t *testing.T) {
		wrapped := fmt.Errorf("executing tool: %w", err)
		assert.True(t, IsKind(wrapped, KindDangerousCommand))
	})

	t.Run("plain error has no kind", func(t *testing.T) {
		_, ok := KindOf(assert.AnError)
		assert.False(t, ok)
	})
}

func TestLimitExceeded_CarriesBothNumbers(t *testing.T) {
	err := LimitExceeded(250, 100)
	assert.Equal(t, KindSafetyLimitExceeded, err.Kind)
	assert.Equal(t, int64(250), err.Actual)
	assert.Equal(t, int64(100), err.Limit)
	assert.Contains(t, err.Error(), "250")
	assert.Contains(t, err.Error(), "100")
}

func TestDriver_WrapsCause(t *testing.T) {
	err := Driver(assert.AnError, "pre-flight count")
	require.NotNil(t, err)
	assert.Equal(t, KindDriverError, err.Kind)
	assert.ErrorIs(t, err, assert.AnError)

	assert.Nil(t, Driver(nil, "noop"))
}

func TestRedact(t *testing.T) {
	cases := []struct {
		key      string
		redacted bool
	}{
		{"password", true},
		{"user_password", true},
		{"API_KEY", true},
		{"refresh_token", true},
		{"secret_answer", true},
		{"name", false},
		{"email", false},
	}

	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			got := Redact(tc.key, "value")
			if tc.redacted {
				assert.Equal(t, "[REDACTED]", got)
			} else {
				assert.Equal(t, "value", got)
			}
		})
	}
}

func TestWithFragment_RedactsCredentialKeys(t *testing.T) {
	err := New(KindDangerousPattern, "dangerous pattern in value").
		WithFragment("password", "hunter2'; DROP TABLE users; --")

	assert.NotContains(t, err.Error(), "hunter2")
	assert.Contains(t, err.Error(), "[REDACTED]")
}

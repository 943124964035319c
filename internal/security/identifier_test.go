package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"mcp-databases/internal/errors"
)

func TestValidateIdentifier_Valid(t *testing.T) {
	valid := []string{
		"users",
		"user_settings",
		"_private",
		"Tabela1",
		"a",
		strings.Repeat("a", 64),
	}

	for _, name := range valid {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, ValidateIdentifier(name))
		})
	}
}

func TestValidateIdentifier_Invalid(t *testing.T) {
	invalid := []struct {
		name   string
		reason string
	}{
		{"", "empty"},
		{strings.Repeat("a", 65), "too long"},
		{"1users", "starts with digit"},
		{"user-name", "hyphen"},
		{"user name", "space"},
		{"users;", "statement separator"},
		{"users--", "comment delimiter"},
		{"usuários", "non-ascii"},
		{"users.name", "dot"},
		{`users"`, "quote"},
	}

	for _, tc := range invalid {
		t.Run(tc.reason, func(t *testing.T) {
			err := ValidateIdentifier(tc.name)
			assert.Error(t, err)
			assert.True(t, errors.IsKind(err, errors.KindInvalidIdentifier),
				"expected InvalidIdentifier, got %v", err)
		})
	}
}

func TestValidateIdentifier_ReservedNames(t *testing.T) {
	for _, name := range []string{"admin", "Admin", "ROOT", "sys", "master", "information_schema"} {
		t.Run(name, func(t *testing.T) {
			err := ValidateIdentifier(name)
			assert.True(t, errors.IsKind(err, errors.KindInvalidIdentifier),
				"reserved name %q must be rejected", name)
		})
	}
}

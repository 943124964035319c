package security

import (
	"regexp"
	"strings"

	"mcp-databases/internal/errors"
)

// MaxIdentifierLength is the longest table/column/index name accepted across
// the three supported dialects.
const MaxIdentifierLength = 64

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reservedNames are identifiers rejected outright because they collide with
// administrative tables or system schemas.
var reservedNames = map[string]struct{}{
	"admin":              {},
	"root":               {},
	"sys":                {},
	"system":             {},
	"master":             {},
	"information_schema": {},
}

// ValidateIdentifier checks a table, column, or index name against the safe
// grammar: a letter or underscore followed by letters, digits, or
// underscores, at most MaxIdentifierLength characters. Pure function.
func ValidateIdentifier(name string) error {
	if name == "" {
		return errors.New(errors.KindInvalidIdentifier, "identifier must not be empty")
	}
	if len(name) > MaxIdentifierLength {
		return errors.Newf(errors.KindInvalidIdentifier,
			"identifier exceeds %d characters", MaxIdentifierLength).WithFragment("identifier", name)
	}
	if !identifierRe.MatchString(name) {
		return errors.New(errors.KindInvalidIdentifier,
			"identifier must start with a letter or underscore and contain only letters, digits, and underscores").
			WithFragment("identifier", name)
	}
	if _, ok := reservedNames[strings.ToLower(name)]; ok {
		return errors.Newf(errors.KindInvalidIdentifier,
			"identifier %q is reserved", name).WithFragment("identifier", name)
	}
	return nil
}

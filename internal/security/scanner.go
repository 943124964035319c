package security

import (
	"mcp-databases/internal/errors"
)

// valuePatternSpecs are injection signatures scanned against every literal
// value destined for parameter binding. Ordered: statement-level signatures
// first so rejections name the embedded command, generic delimiters after.
// Conservative by design: a false positive is acceptable, a false negative
// is not.
var valuePatternSpecs = []patternSpec{
	{"DROP statement embedded in value", `\bdrop\s+table\b`},
	{"DROP DATABASE embedded in value", `\bdrop\s+database\b`},
	{"DELETE statement embedded in value", `\bdelete\s+from\b`},
	{"INSERT statement embedded in value", `\binsert\s+into\b`},
	{"UPDATE statement embedded in value", `\bupdate\s+\w+\s+set\b`},
	{"TRUNCATE statement embedded in value", `\btruncate\s+table\b`},
	{"UNION keyword embedded in value", `\bunion\s+(all\s+)?select\b`},
	{"dynamic execution call", `\bexec(ute)?\s*\(`},
	{"dynamic SQL procedure", `\bsp_executesql\b`},
	{"system variable access", `@@\w+`},
	{"extended procedure prefix", `\bxp_\w+`},
	{"system procedure prefix", `\bsp_\w+`},
	{"quote followed by statement separator", `'\s*;`},
	{"statement separator followed by keyword", `;\s*[a-z]`},
	{"inline comment delimiter", `--`},
	{"block comment delimiter", `/\*`},
	{"always-true OR predicate", `'\s*or\s*'`},
	{"always-true AND predicate", `'\s*and\s*'`},
	{"always-true numeric predicate", `\bor\s+\d+\s*=\s*\d+`},
}

// queryPatternSpecs are signatures scanned against full raw query text on the
// read-only inspection path.
var queryPatternSpecs = []patternSpec{
	{"dynamic EXEC call", `\bexec\s*\(`},
	{"dynamic EXECUTE call", `\bexecute\s*\(`},
	{"dynamic SQL procedure sp_executesql", `\bsp_executesql\b`},
	{"system variable access", `@@\w+`},
	{"extended procedure prefix xp_", `\bxp_\w+`},
	{"OPENROWSET call", `\bopenrowset\b`},
	{"OPENDATASOURCE call", `\bopendatasource\b`},
	{"BULK INSERT statement", `\bbulk\s+insert\b`},
	{"SHUTDOWN statement", `\bshutdown\b`},
	{"KILL statement", `\bkill\b`},
	{"stacked statement with dangerous command", `;\s*.*\b(delete|drop|truncate|alter|create|insert|update|exec)\b`},
	{"dangerous command behind line comment", `--.*\b(delete|drop|truncate|alter|create|insert|update)\b`},
	{"dangerous command inside block comment", `/\*.*\b(delete|drop|truncate|alter|create|insert|update)\b.*\*/`},
	{"file system access function", `\bload_file\s*\(|\binto\s+outfile\b|\binto\s+dumpfile\b`},
	{"timing attack function", `\b(benchmark|sleep)\s*\(`},
	{"always-true predicate", `\bor\s+\d+\s*=\s*\d+\b|\bor\s+'[^']*'\s*=\s*'[^']*'`},
}

// ScanValue checks a literal value for injection signatures before it is
// accepted for parameter binding. key names the column the value is bound
// to and is used only for rejection context.
func (c *Config) ScanValue(key, value string) error {
	for _, p := range c.valuePatterns {
		if p.re.MatchString(value) {
			return errors.Newf(errors.KindDangerousPattern,
				"dangerous pattern in value for column %q: %s", key, p.Label).
				WithFragment(key, value)
		}
	}
	return nil
}

// PatternMatch reports a dangerous pattern found in raw query text.
type PatternMatch struct {
	Label    string
	Fragment string
}

// ScanQuery runs the full dangerous-pattern list against raw query text and
// returns every match. Unlike ScanValue it does not short-circuit, so the
// inspection path can report all findings at once.
func (c *Config) ScanQuery(query string) []PatternMatch {
	var matches []PatternMatch
	for _, p := range c.queryPatterns {
		if loc := p.re.FindString(query); loc != "" {
			matches = append(matches, PatternMatch{Label: p.Label, Fragment: loc})
		}
	}
	return matches
}

package security

import (
	"fmt"
	"regexp"
	"sort"
)

// Pattern pairs a compiled dangerous-input signature with a human-readable
// label surfaced in rejections and security reports.
type Pattern struct {
	Label string
	re    *regexp.Regexp
}

// Config is the process-wide security policy: the command whitelist, the
// blocked and precaution-blocked command sets, and the ordered dangerous
// pattern lists. It is built once at startup and never mutated, so
// concurrent pipeline invocations share it without locking.
type Config struct {
	allowed     map[string]struct{}
	blocked     map[string]struct{}
	conditional map[string]struct{}

	queryPatterns []Pattern // scanned against raw query text
	valuePatterns []Pattern // scanned against literal values bound as parameters

	allowedList     []string
	blockedList     []string
	conditionalList []string
}

var (
	allowedCommands = []string{"SELECT", "WITH", "SHOW", "DESCRIBE", "DESC", "EXPLAIN"}

	blockedCommands = []string{
		"DELETE", "DROP", "TRUNCATE", "ALTER", "CREATE", "EXEC", "EXECUTE",
		"INSERT", "UPDATE", "MERGE", "BULK", "OPENROWSET", "OPENDATASOURCE",
		"SHUTDOWN", "KILL", "RESTORE", "BACKUP", "GRANT", "REVOKE",
	}

	conditionalCommands = []string{"UNION", "INTERSECT", "EXCEPT"}
)

// NewConfig builds the default security configuration. It panics if the
// three command sets are not pairwise disjoint, since overlap is a
// programming error, not a runtime condition.
func NewConfig() *Config {
	c := &Config{
		allowed:       toSet(allowedCommands),
		blocked:       toSet(blockedCommands),
		conditional:   toSet(conditionalCommands),
		queryPatterns: compilePatterns(queryPatternSpecs),
		valuePatterns: compilePatterns(valuePatternSpecs),
	}

	c.allowedList = sortedKeys(c.allowed)
	c.blockedList = sortedKeys(c.blocked)
	c.conditionalList = sortedKeys(c.conditional)

	c.mustBeDisjoint()
	return c
}

func (c *Config) mustBeDisjoint() {
	for cmd := range c.allowed {
		if _, ok := c.blocked[cmd]; ok {
			panic(fmt.Sprintf("security config: command %q is both allowed and blocked", cmd))
		}
		if _, ok := c.conditional[cmd]; ok {
			panic(fmt.Sprintf("security config: command %q is both allowed and conditional", cmd))
		}
	}
	for cmd := range c.blocked {
		if _, ok := c.conditional[cmd]; ok {
			panic(fmt.Sprintf("security config: command %q is both blocked and conditional", cmd))
		}
	}
}

// AllowedCommands returns the command whitelist in sorted order.
func (c *Config) AllowedCommands() []string {
	return append([]string(nil), c.allowedList...)
}

// BlockedCommands returns the unconditionally blocked commands in sorted order.
func (c *Config) BlockedCommands() []string {
	return append([]string(nil), c.blockedList...)
}

// ConditionalCommands returns the precaution-blocked commands in sorted order.
func (c *Config) ConditionalCommands() []string {
	return append([]string(nil), c.conditionalList...)
}

// PatternCount returns the number of dangerous patterns scanned against raw
// query text.
func (c *Config) PatternCount() int {
	return len(c.queryPatterns)
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type patternSpec struct {
	label string
	expr  string
}

func compilePatterns(specs []patternSpec) []Pattern {
	patterns := make([]Pattern, 0, len(specs))
	for _, spec := range specs {
		patterns = append(patterns, Pattern{
			Label: spec.label,
			re:    regexp.MustCompile(`(?i)` + spec.expr),
		})
	}
	return patterns
}

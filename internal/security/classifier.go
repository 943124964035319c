package security

import (
	"regexp"
	"strings"
)

// Verdict is the classifier's judgement of a statement's leading command.
type Verdict int

const (
	// VerdictSafe means the command is whitelisted.
	VerdictSafe Verdict = iota
	// VerdictBlocked means the command is unconditionally blocked.
	VerdictBlocked
	// VerdictConditionallyBlocked means the command is blocked as a
	// precaution (UNION, INTERSECT, EXCEPT).
	VerdictConditionallyBlocked
	// VerdictNotWhitelisted means the command is unknown to the policy and
	// rejected by default.
	VerdictNotWhitelisted
)

func (v Verdict) String() string {
	switch v {
	case VerdictSafe:
		return "Safe"
	case VerdictBlocked:
		return "Blocked"
	case VerdictConditionallyBlocked:
		return "ConditionallyBlocked"
	case VerdictNotWhitelisted:
		return "NotWhitelisted"
	default:
		return "Unknown"
	}
}

// Classification is the classifier result for a raw SQL statement.
type Classification struct {
	FirstCommand string
	Verdict      Verdict
}

var (
	lineCommentRe  = regexp.MustCompile(`(?m)--.*$`)
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	firstWordRe    = regexp.MustCompile(`^([A-Za-z_]+)`)
)

// CleanQuery strips SQL comments and collapses whitespace so keyword
// detection cannot be defeated by comment tricks.
func CleanQuery(query string) string {
	query = lineCommentRe.ReplaceAllString(query, "")
	query = blockCommentRe.ReplaceAllString(query, "")
	return strings.Join(strings.Fields(query), " ")
}

// FirstCommand extracts the leading SQL keyword after stripping comments and
// whitespace, uppercased. Returns "" when the query is empty after cleaning.
func FirstCommand(query string) string {
	cleaned := strings.TrimSpace(CleanQuery(query))
	if cleaned == "" {
		return ""
	}
	if m := firstWordRe.FindString(cleaned); m != "" {
		return strings.ToUpper(m)
	}
	return ""
}

// Classify extracts the leading command of rawSQL and looks it up against
// the policy's three command sets. Commands absent from every set are
// NotWhitelisted: the policy is default-deny. Only the read-only query path
// and the inspection tool call this; declarative operations never carry raw
// SQL, so they bypass the classifier entirely.
func (c *Config) Classify(rawSQL string) Classification {
	cmd := FirstCommand(rawSQL)

	cls := Classification{FirstCommand: cmd}
	switch {
	case cmd == "":
		cls.Verdict = VerdictNotWhitelisted
	case c.isBlocked(cmd):
		cls.Verdict = VerdictBlocked
	case c.isConditional(cmd):
		cls.Verdict = VerdictConditionallyBlocked
	case c.isAllowed(cmd):
		cls.Verdict = VerdictSafe
	default:
		cls.Verdict = VerdictNotWhitelisted
	}
	return cls
}

func (c *Config) isAllowed(cmd string) bool {
	_, ok := c.allowed[cmd]
	return ok
}

func (c *Config) isBlocked(cmd string) bool {
	_, ok := c.blocked[cmd]
	return ok
}

func (c *Config) isConditional(cmd string) bool {
	_, ok := c.conditional[cmd]
	return ok
}

// blockedCommandsIn returns every blocked command appearing as a whole word
// anywhere in the cleaned query, in sorted order.
func (c *Config) blockedCommandsIn(cleaned string) []string {
	upper := strings.ToUpper(cleaned)
	var found []string
	for _, cmd := range c.blockedList {
		if containsWord(upper, cmd) {
			found = append(found, cmd)
		}
	}
	return found
}

// conditionalCommandsIn returns every precaution-blocked command appearing
// as a whole word in the cleaned query.
func (c *Config) conditionalCommandsIn(cleaned string) []string {
	upper := strings.ToUpper(cleaned)
	var found []string
	for _, cmd := range c.conditionalList {
		if containsWord(upper, cmd) {
			found = append(found, cmd)
		}
	}
	return found
}

func containsWord(haystack, word string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(haystack[start-1])
		afterOK := end == len(haystack) || !isWordChar(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

package security

import (
	"fmt"
	"strings"

	"mcp-databases/internal/errors"
)

// Report is the full analysis produced by the inspection path. It never
// fails: an unsafe query yields IsSafe=false with the findings, not an
// error.
type Report struct {
	IsSafe            bool     `json:"is_safe"`
	Message           string   `json:"message"`
	FirstCommand      string   `json:"first_command"`
	DangerousCommands []string `json:"dangerous_commands"`
	DangerousPatterns []string `json:"dangerous_patterns"`
	CleanedQuery      string   `json:"cleaned_query"`
}

// Inspect analyzes raw query text and reports everything the policy finds:
// the leading command's verdict, every blocked command appearing anywhere in
// the statement, and every dangerous pattern match.
func (c *Config) Inspect(query string) Report {
	cleaned := CleanQuery(query)
	cls := c.Classify(query)

	report := Report{
		FirstCommand:      cls.FirstCommand,
		DangerousCommands: []string{},
		DangerousPatterns: []string{},
		CleanedQuery:      truncate(cleaned, 200),
	}

	report.DangerousCommands = append(report.DangerousCommands, c.blockedCommandsIn(cleaned)...)
	for _, m := range c.ScanQuery(cleaned) {
		report.DangerousPatterns = append(report.DangerousPatterns, m.Label)
	}
	conditional := c.conditionalCommandsIn(cleaned)

	switch {
	case strings.TrimSpace(cleaned) == "":
		report.Message = "query is empty after comment stripping"
	case len(report.DangerousCommands) > 0:
		report.Message = fmt.Sprintf("dangerous command(s) detected: %s",
			strings.Join(report.DangerousCommands, ", "))
	case len(report.DangerousPatterns) > 0:
		report.Message = fmt.Sprintf("dangerous pattern(s) detected: %s",
			strings.Join(report.DangerousPatterns, "; "))
	case len(conditional) > 0:
		report.Message = fmt.Sprintf("command(s) blocked as a precaution: %s",
			strings.Join(conditional, ", "))
	case cls.Verdict == VerdictNotWhitelisted:
		report.Message = fmt.Sprintf("command %q is not whitelisted; allowed commands: %s",
			cls.FirstCommand, strings.Join(c.allowedList, ", "))
	default:
		report.IsSafe = true
		report.Message = "query passed all security checks"
	}

	return report
}

// ValidateQuery gates the read-only execution path: the query must classify
// as a whitelisted command, carry no blocked command anywhere in its text,
// and match no dangerous pattern. Returns a typed rejection on the first
// failure.
func (c *Config) ValidateQuery(query string) error {
	cleaned := CleanQuery(query)
	if strings.TrimSpace(cleaned) == "" {
		return errors.New(errors.KindNotWhitelisted, "empty query")
	}

	if found := c.blockedCommandsIn(cleaned); len(found) > 0 {
		return errors.Newf(errors.KindDangerousCommand,
			"dangerous command(s) detected: %s", strings.Join(found, ", ")).
			WithFragment("query", truncate(query, 100))
	}

	if matches := c.ScanQuery(cleaned); len(matches) > 0 {
		return errors.Newf(errors.KindDangerousPattern,
			"dangerous pattern detected: %s", matches[0].Label).
			WithFragment("query", matches[0].Fragment)
	}

	if found := c.conditionalCommandsIn(cleaned); len(found) > 0 {
		return errors.Newf(errors.KindConditionalCommandBlocked,
			"command(s) blocked as a precaution: %s", strings.Join(found, ", ")).
			WithFragment("query", truncate(query, 100))
	}

	if cls := c.Classify(query); cls.Verdict != VerdictSafe {
		return errors.Newf(errors.KindNotWhitelisted,
			"command %q is not whitelisted; allowed commands: %s",
			cls.FirstCommand, strings.Join(c.allowedList, ", ")).
			WithFragment("query", truncate(query, 100))
	}

	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

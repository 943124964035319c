package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the category of an engine rejection. Rejections are
// caller-input malformations and are never retried.
type Kind int

const (
	KindInvalidIdentifier Kind = iota
	KindDangerousCommand
	KindDangerousPattern
	KindConditionalCommandBlocked
	KindNotWhitelisted
	KindMissingConfirmation
	KindConfirmationMismatch
	KindSafetyLimitExceeded
	KindTypeNotAllowed
	KindUnsupportedOperationForDialect
	KindInconsistentRecordShape
	KindRecordCountExceeded
	KindDriverError
)

func (k Kind) String() string {
	switch k {
	case KindInvalidIdentifier:
		return "InvalidIdentifier"
	case KindDangerousCommand:
		return "DangerousCommand"
	case KindDangerousPattern:
		return "DangerousPattern"
	case KindConditionalCommandBlocked:
		return "ConditionalCommandBlocked"
	case KindNotWhitelisted:
		return "NotWhitelisted"
	case KindMissingConfirmation:
		return "MissingConfirmation"
	case KindConfirmationMismatch:
		return "ConfirmationMismatch"
	case KindSafetyLimitExceeded:
		return "SafetyLimitExceeded"
	case KindTypeNotAllowed:
		return "TypeNotAllowed"
	case KindUnsupportedOperationForDialect:
		return "UnsupportedOperationForDialect"
	case KindInconsistentRecordShape:
		return "InconsistentRecordShape"
	case KindRecordCountExceeded:
		return "RecordCountExceeded"
	case KindDriverError:
		return "DriverError"
	default:
		return "Unknown"
	}
}

// SecurityError is a structured, non-retryable rejection produced by the
// validation engine. Fragment carries the offending input for auditability,
// redacted when the associated key looks credential-like.
type SecurityError struct {
	Kind     Kind
	Message  string
	Fragment string
	Actual   int64 // populated for SafetyLimitExceeded / RecordCountExceeded
	Limit    int64
	Cause    error
}

// Error implements the error interface
func (e *SecurityError) Error() string {
	if e.Fragment != "" {
		return fmt.Sprintf("[%s] %s (offending input: %q)", e.Kind, e.Message, e.Fragment)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause
func (e *SecurityError) Unwrap() error {
	return e.Cause
}

// New creates a new SecurityError
func New(kind Kind, message string) *SecurityError {
	return &SecurityError{Kind: kind, Message: message}
}

// Newf creates a new SecurityError with a formatted message
func Newf(kind Kind, format string, args ...interface{}) *SecurityError {
	return &SecurityError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithFragment attaches the offending input fragment, redacting it when key
// names a credential-like field.
func (e *SecurityError) WithFragment(key, fragment string) *SecurityError {
	e.Fragment = Redact(key, fragment)
	return e
}

// LimitExceeded builds a SafetyLimitExceeded rejection carrying both the
// pre-flight count and the configured ceiling.
func LimitExceeded(actual, limit int64) *SecurityError {
	return &SecurityError{
		Kind:    KindSafetyLimitExceeded,
		Message: fmt.Sprintf("operation would affect %d row(s), safety limit is %d", actual, limit),
		Actual:  actual,
		Limit:   limit,
	}
}

// RecordCountExceeded builds a rejection for bulk operations that exceed the
// fixed record ceiling.
func RecordCountExceeded(actual, limit int64) *SecurityError {
	return &SecurityError{
		Kind:    KindRecordCountExceeded,
		Message: fmt.Sprintf("bulk operation carries %d record(s), ceiling is %d", actual, limit),
		Actual:  actual,
		Limit:   limit,
	}
}

// Driver wraps a database driver failure. Driver errors are passed through
// as their own category and never reinterpreted as security rejections.
func Driver(err error, operation string) *SecurityError {
	if err == nil {
		return nil
	}
	return &SecurityError{
		Kind:    KindDriverError,
		Message: fmt.Sprintf("driver failure during %s", operation),
		Cause:   err,
	}
}

// KindOf extracts the rejection kind from an error chain.
func KindOf(err error) (Kind, bool) {
	var se *SecurityError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is a SecurityError of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

var credentialHints = []string{"password", "passwd", "secret", "token", "api_key", "apikey", "credential"}

// Redact replaces values bound to credential-like keys so rejections stay
// auditable without leaking secrets.
func Redact(key, value string) string {
	lower := strings.ToLower(key)
	for _, hint := range credentialHints {
		if strings.Contains(lower, hint) {
			return "[REDACTED]"
		}
	}
	return value
}

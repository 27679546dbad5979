package index

import (
	"errors"
	"fmt"
)

// ErrorKind classifies index failures.
type ErrorKind int

const (
	// KindNotFound means a skill, sub-skill, or expected file is absent.
	KindNotFound ErrorKind = iota
	// KindRead means an I/O failure reading an existing path.
	KindRead
	// KindParse means a malformed manifest.
	KindParse
	// KindValidation means a schema violation or path-escape attempt.
	KindValidation
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindRead:
		return "read error"
	case KindParse:
		return "parse error"
	case KindValidation:
		return "validation error"
	default:
		return "unknown"
	}
}

// Error is a typed index failure. Callers branch on Kind via the Is*
// helpers instead of matching message strings.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func notFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func readErr(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindRead, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func parseErr(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindParse, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func validationErrf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func kindOf(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsNotFound reports whether err is a not-found index error.
func IsNotFound(err error) bool { return kindOf(err, KindNotFound) }

// IsReadError reports whether err is an I/O index error.
func IsReadError(err error) bool { return kindOf(err, KindRead) }

// IsParseError reports whether err is a manifest parse error.
func IsParseError(err error) bool { return kindOf(err, KindParse) }

// IsValidationError reports whether err is a validation error.
func IsValidationError(err error) bool { return kindOf(err, KindValidation) }

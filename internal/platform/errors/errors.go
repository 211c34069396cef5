// Package errors provides coded application errors with wrapping helpers.
//
// Every error that crosses a package boundary should carry an ErrorCode so
// callers can branch on taxonomy instead of string matching. Retry policy
// hangs off the code too: see Retryable
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode is the coarse application-level taxonomy
type ErrorCode int

const (
	// CodeUnknown is the zero value fallback
	CodeUnknown ErrorCode = iota

	// CodeAuth means credentials were rejected (never retryable)
	CodeAuth

	// CodeRateLimited means the upstream throttled us
	CodeRateLimited

	// CodeTimeout means a deadline or context expiry
	CodeTimeout

	// CodeTransport means a network-level failure (DNS, conn reset, 5xx)
	CodeTransport

	// CodeSyntax means the request itself was malformed (never retryable)
	CodeSyntax

	// CodeNotFound means the entity does not exist
	CodeNotFound

	// CodeValidation means domain-level input validation failed
	CodeValidation

	// CodeInvalidArgument means a programmer-level bad argument
	CodeInvalidArgument

	// CodeConflict means a state conflict (stale write, bad transition)
	CodeConflict

	// CodeDuplicateKey means a uniqueness violation
	CodeDuplicateKey

	// CodeDB means a storage failure not covered by a finer code
	CodeDB

	// CodeUnavailable means a dependency is down or refusing work
	CodeUnavailable
)

// String returns the stable snake_case name of the code
func (c ErrorCode) String() string {
	switch c {
	case CodeAuth:
		return "auth"
	case CodeRateLimited:
		return "rate_limited"
	case CodeTimeout:
		return "timeout"
	case CodeTransport:
		return "transport"
	case CodeSyntax:
		return "syntax"
	case CodeNotFound:
		return "not_found"
	case CodeValidation:
		return "validation"
	case CodeInvalidArgument:
		return "invalid_argument"
	case CodeConflict:
		return "conflict"
	case CodeDuplicateKey:
		return "duplicate_key"
	case CodeDB:
		return "db"
	case CodeUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Error is the concrete coded error
type Error struct {
	Code  ErrorCode
	Msg   string
	cause error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Unwrap exposes the cause for errors.Is / errors.As chains
func (e *Error) Unwrap() error { return e.cause }

// New builds a coded error with a plain message
func New(code ErrorCode, msg string) error {
	return &Error{Code: code, Msg: msg}
}

// Newf builds a coded error with a formatted message
func Newf(code ErrorCode, format string, args ...any) error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an existing error, nil stays nil
func Wrap(err error, code ErrorCode, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Msg: msg, cause: err}
}

// Wrapf is Wrap with formatting
func Wrapf(err error, code ErrorCode, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...), cause: err}
}

// Code extracts the ErrorCode from anywhere in the chain, CodeUnknown otherwise
func Code(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// Is reports whether any error in the chain carries the given code
func Is(err error, code ErrorCode) bool { return Code(err) == code }

// Retryable reports whether an operation failing with err is worth retrying.
// Auth and syntax failures will fail identically on every attempt
func Retryable(err error) bool {
	switch Code(err) {
	case CodeRateLimited, CodeTimeout, CodeTransport, CodeUnavailable:
		return true
	default:
		return false
	}
}

// Convenience constructors for the codes used most often

// Authf builds a CodeAuth error
func Authf(format string, args ...any) error { return Newf(CodeAuth, format, args...) }

// RateLimitedf builds a CodeRateLimited error
func RateLimitedf(format string, args ...any) error { return Newf(CodeRateLimited, format, args...) }

// Timeoutf builds a CodeTimeout error
func Timeoutf(format string, args ...any) error { return Newf(CodeTimeout, format, args...) }

// Transportf builds a CodeTransport error
func Transportf(format string, args ...any) error { return Newf(CodeTransport, format, args...) }

// Syntaxf builds a CodeSyntax error
func Syntaxf(format string, args ...any) error { return Newf(CodeSyntax, format, args...) }

// NotFoundf builds a CodeNotFound error
func NotFoundf(format string, args ...any) error { return Newf(CodeNotFound, format, args...) }

// Validationf builds a CodeValidation error
func Validationf(format string, args ...any) error { return Newf(CodeValidation, format, args...) }

// InvalidArgf builds a CodeInvalidArgument error
func InvalidArgf(format string, args ...any) error { return Newf(CodeInvalidArgument, format, args...) }

// Conflictf builds a CodeConflict error
func Conflictf(format string, args ...any) error { return Newf(CodeConflict, format, args...) }

// Unavailablef builds a CodeUnavailable error
func Unavailablef(format string, args ...any) error { return Newf(CodeUnavailable, format, args...) }

// Std re-exports for call sites that only import this package

// StdIs is errors.Is from the standard library
func StdIs(err, target error) bool { return errors.Is(err, target) }

// StdAs is errors.As from the standard library
func StdAs(err error, target any) bool { return errors.As(err, target) }

// Join is errors.Join from the standard library
func Join(errs ...error) error { return errors.Join(errs...) }

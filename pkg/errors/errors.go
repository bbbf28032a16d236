// Package errors provides structured error types for molview.
//
// Every failure that crosses a package boundary carries a machine-readable
// [Code] so the CLI and the HTTP server can react without string matching:
//
//   - MALFORMED_* and TRUNCATED_INPUT: structure file could not be parsed
//   - INVALID_*: a value was rejected (bond index, element code, angle)
//   - EMPTY_MOLECULE: an operation needed at least one atom
//   - NOT_FOUND, CONFLICT: persistence outcomes
//   - INTERNAL_ERROR, UNSUPPORTED: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedHeader, "line %d: expected two counts", n)
//	if errors.Is(err, errors.ErrCodeMalformedHeader) {
//	    // reject the upload
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "store molecule %q", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Structure file errors
	ErrCodeMalformedHeader Code = "MALFORMED_HEADER"
	ErrCodeMalformedAtom   Code = "MALFORMED_ATOM"
	ErrCodeMalformedBond   Code = "MALFORMED_BOND"
	ErrCodeTruncatedInput  Code = "TRUNCATED_INPUT"

	// Graph and input validation errors
	ErrCodeInvalidBondIndex Code = "INVALID_BOND_INDEX"
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidElement   Code = "INVALID_ELEMENT"
	ErrCodeInvalidName      Code = "INVALID_NAME"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeEmptyMolecule    Code = "EMPTY_MOLECULE"

	// Persistence errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeConflict Code = "CONFLICT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsParseError reports whether err came from reading a structure file.
func IsParseError(err error) bool {
	switch GetCode(err) {
	case ErrCodeMalformedHeader, ErrCodeMalformedAtom, ErrCodeMalformedBond,
		ErrCodeTruncatedInput, ErrCodeInvalidBondIndex:
		return true
	}
	return false
}

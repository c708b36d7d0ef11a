// Package errs defines the typed error kinds surfaced by the core engine.
//
// Every error that can reach a UI adapter or a CLI command is one of the
// Codes below. Storage busy/locked failures inside the store's write
// transactions are retried, and surface as CodeStorageUnavailable once the
// retry budget is exhausted; failed read queries are not retried and
// surface as CodeStorageTransient.
package errs

import (
	"errors"
	"fmt"
)

// Code identifies a class of error the core can return.
type Code string

const (
	CodeUnknownTag                  Code = "unknown_tag"
	CodeDuplicateTag                Code = "duplicate_tag"
	CodeInactiveEmployee             Code = "inactive_employee"
	CodeInvalidInput                Code = "invalid_input"
	CodeFirstUserMustBeAdmin         Code = "first_user_must_be_admin"
	CodeStorageTransient             Code = "storage_transient"
	CodeStorageUnavailable           Code = "storage_unavailable"
	CodeRecalculationFailed          Code = "recalculation_failed"
	CodePendingIdentificationMismatch Code = "pending_identification_mismatch"
	CodeNotFound                     Code = "not_found"
)

// Error is a typed, wrapped error carrying a Code for callers to branch on.
type Error struct {
	Code Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an *Error with no wrapped cause.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// Wrap creates an *Error that wraps an underlying cause.
func Wrap(code Code, msg string, err error) *Error {
	return &Error{Code: code, Msg: msg, Err: err}
}

// Is reports whether err carries the given Code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf extracts the Code from err, returning "" if err is not an *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

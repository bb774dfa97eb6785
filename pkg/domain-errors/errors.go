// Package domainerrors carries coded errors from the domain layer to the
// transport layer. Services return *Error values; handlers translate the Code
// into an HTTP status and a stable reason string.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies the class of a domain error.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeInternal           Code = "internal_error"
	CodeTimeout            Code = "timeout"
	CodeInvariantViolation Code = "invariant_violation"
	CodeRateLimited        Code = "rate_limited"

	// Review subsystem codes. Each maps to exactly one reason string.
	CodeIdentityMismatch    Code = "identity_mismatch"
	CodePolicyNotFound      Code = "policy_not_found"
	CodeUpstreamUnavailable Code = "upstream_unavailable"
	CodeInvalidTransition   Code = "invalid_transition"
	CodeMissingComment      Code = "missing_comment"
	CodeRecordLocked        Code = "record_locked"
	CodeLockedByOther       Code = "locked_by_other"
	CodeStaleVersion        Code = "stale_version"
)

var reasons = map[Code]string{
	CodeIdentityMismatch:    "The details provided do not match our records.",
	CodePolicyNotFound:      "No policy was found for the given policy number and date of birth.",
	CodeUpstreamUnavailable: "The policy registry is temporarily unavailable. Please try again.",
	CodeInvalidTransition:   "This status change is not allowed for the submission.",
	CodeMissingComment:      "A comment is required when rejecting or marking a submission incomplete.",
	CodeRecordLocked:        "This submission is verified and locked.",
	CodeLockedByOther:       "This submission is being reviewed by another reviewer.",
	CodeStaleVersion:        "This submission was changed by someone else. Reload and try again.",
}

// Reason returns the stable human-readable reason for a review code.
// Unknown codes return an empty string.
func Reason(code Code) string {
	return reasons[code]
}

// Error is a domain error with a stable code.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for err != nil {
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// GetCode returns the outermost domain code, or CodeInternal when the chain
// has no domain error.
func GetCode(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

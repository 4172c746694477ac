package portfolio

import (
	"errors"
	"fmt"
)

// Code classifies every failure the allocation core can surface. Handlers map
// these to HTTP statuses; nothing below this package should need to parse
// error strings.
type Code string

const (
	// CodeUnauthenticated means no wallet session was supplied.
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	// CodeForbidden means the session wallet is not the contract owner.
	CodeForbidden Code = "FORBIDDEN"
	// CodeNoChanges means there is no pending draft to submit.
	CodeNoChanges Code = "NO_CHANGES"
	// CodeInvalidAllocation means the draft does not sum to 100. Sum carries
	// the actual total.
	CodeInvalidAllocation Code = "INVALID_ALLOCATION"
	// CodeNotFound means an unknown category id.
	CodeNotFound Code = "NOT_FOUND"
	// CodeInvalidState means a degenerate operation input, e.g. auto-balancing
	// a zero-sum set.
	CodeInvalidState Code = "INVALID_STATE"
	// CodeBusy means a submission attempt is already in flight.
	CodeBusy Code = "SUBMISSION_IN_FLIGHT"
	// CodeWriteFailure means the chain write was rejected or never accepted.
	CodeWriteFailure Code = "WRITE_FAILURE"
	// CodeConfirmationFailure means the write was accepted but later reported
	// failed or reverted.
	CodeConfirmationFailure Code = "CONFIRMATION_FAILURE"
)

// Error is the structured failure carried across the core's boundaries.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	// Sum is the actual allocation total, set for INVALID_ALLOCATION failures
	// of a full set. A pointer so that a zero total still serializes.
	Sum *int `json:"sum,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates a core error with a formatted message.
func NewError(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrCode extracts the taxonomy code from an error, or empty when the error
// did not originate in this package.
func ErrCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

package model

import (
	"errors"
	"fmt"
)

// PreconditionError reports a structural gap in the loaded dataset that
// makes an engine refuse to run rather than produce a misleading answer.
//
// Empty data is never a PreconditionError; engines represent it as an
// explicit empty result.
type PreconditionError struct {
	// Code identifies the missing precondition.
	Code PreconditionCode

	// Message is a human-readable description.
	Message string

	// Details contains additional context.
	Details map[string]string
}

// PreconditionCode categorizes precondition failures.
type PreconditionCode string

const (
	// ErrCodeMissingActivityType indicates the Activity table has no type column.
	ErrCodeMissingActivityType PreconditionCode = "MISSING_ACTIVITY_TYPE"

	// ErrCodeMissingCredential indicates the Servant table has no credential column.
	ErrCodeMissingCredential PreconditionCode = "MISSING_CREDENTIAL"
)

func (e *PreconditionError) Error() string {
	if table, ok := e.Details["table"]; ok {
		return fmt.Sprintf("%s: %s (table=%s)", e.Code, e.Message, table)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsPreconditionError returns true if err is, or wraps, a PreconditionError.
func IsPreconditionError(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// NewMissingActivityTypeError creates the error raised by engines that need
// Core/Selective classification.
func NewMissingActivityTypeError() *PreconditionError {
	return &PreconditionError{
		Code:    ErrCodeMissingActivityType,
		Message: "activities have no activity_type; assign each activity as Core or Selective",
		Details: map[string]string{"table": "Activity", "column": "activity_type"},
	}
}

// NewMissingCredentialError creates the error raised when servants cannot
// be authenticated because the store holds no credentials.
func NewMissingCredentialError() *PreconditionError {
	return &PreconditionError{
		Code:    ErrCodeMissingCredential,
		Message: "servants have no credential column; login is disabled",
		Details: map[string]string{"table": "Servant", "column": "password"},
	}
}

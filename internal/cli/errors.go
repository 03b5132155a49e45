package cli

import (
	"errors"
	"fmt"

	"github.com/roach88/flock/internal/auth"
	"github.com/roach88/flock/internal/model"
	"github.com/roach88/flock/internal/scope"
	"github.com/roach88/flock/internal/session"
	"github.com/roach88/flock/internal/store"
)

// Error codes reported in the JSON envelope. Precondition failures report
// their own code instead.
const (
	ErrCodeGeneric    = "E001"
	ErrCodeUsage      = "E002"
	ErrCodeStore      = "E003"
	ErrCodeLogin      = "E004"
	ErrCodeForbidden  = "E005"
	ErrCodeInvalid    = "E006"
	ErrCodeDuplicate  = "E007"
	ErrCodeReference  = "E008"
	ErrCodeUnassigned = "E009"
)

// classify maps an error onto a response code and an exit code.
func classify(err error) (string, int) {
	var pe *model.PreconditionError
	switch {
	case errors.As(err, &pe):
		return string(pe.Code), ExitFailure
	case errors.Is(err, auth.ErrInvalidCredentials):
		return ErrCodeLogin, ExitFailure
	case errors.Is(err, scope.ErrUnassigned):
		return ErrCodeUnassigned, ExitFailure
	case errors.Is(err, scope.ErrForbidden):
		return ErrCodeForbidden, ExitFailure
	case errors.Is(err, session.ErrInvalid):
		return ErrCodeInvalid, ExitCommandError
	case errors.Is(err, store.ErrDuplicate):
		return ErrCodeDuplicate, ExitFailure
	case errors.Is(err, store.ErrReference):
		return ErrCodeReference, ExitFailure
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code == ExitCommandError {
		return ErrCodeUsage, ExitCommandError
	}
	return ErrCodeGeneric, ExitFailure
}

// fail reports err through the formatter and returns it as an ExitError.
func fail(f *OutputFormatter, err error) error {
	code, exit := classify(err)

	var details any
	var pe *model.PreconditionError
	if errors.As(err, &pe) {
		details = pe.Details
	}
	_ = f.Error(code, err.Error(), details)

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		exitErr = WrapExitError(exit, code, err)
	}
	exitErr.reported = true
	return exitErr
}

// invalidSetting marks a rejected settings change as invalid input unless
// it was refused for the caller's role.
func invalidSetting(err error) error {
	if errors.Is(err, scope.ErrForbidden) {
		return err
	}
	return fmt.Errorf("%w: %v", session.ErrInvalid, err)
}

package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the resource is in a state that forbids the operation.
var ErrConflict = errors.New("state conflict")

// ErrInternal indicates a storage or connectivity failure.
var ErrInternal = errors.New("internal error")

// ErrUnauthorized indicates a missing or invalid caller identity.
var ErrUnauthorized = errors.New("unauthorized")

// Ledger error kinds. Each wraps one of the categories above so callers can
// branch on either the precise kind or the broad category with errors.Is.
var (
	ErrEmptyEntrySet      = fmt.Errorf("%w: empty entry set", ErrValidation)
	ErrUnbalancedEntry    = fmt.Errorf("%w: unbalanced entry", ErrValidation)
	ErrInvalidAmount      = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrInvalidEntryType   = fmt.Errorf("%w: invalid entry type", ErrValidation)
	ErrInvalidAccountType = fmt.Errorf("%w: invalid account type", ErrValidation)
	ErrAccountInactive    = fmt.Errorf("%w: account inactive", ErrValidation)
	ErrParentInactive     = fmt.Errorf("%w: parent account inactive", ErrValidation)

	ErrAccountNotFound     = fmt.Errorf("%w: account", ErrNotFound)
	ErrParentNotFound      = fmt.Errorf("%w: parent account", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("%w: transaction", ErrNotFound)

	ErrDuplicateAccount = fmt.Errorf("%w: account code", ErrDuplicate)

	ErrAlreadyReversed = fmt.Errorf("%w: transaction already reversed", ErrConflict)
	ErrNotPosted       = fmt.Errorf("%w: transaction not posted", ErrConflict)
)

// AppError is an infrastructure failure with an HTTP-style status code.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError wraps err with a status code and message.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped error to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is makes every AppError match ErrInternal.
func (e *AppError) Is(target error) bool {
	return target == ErrInternal
}

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

// ErrInternal is returned for unexpected faults (store unavailable, driver errors).
var ErrInternal = errors.New("internal error")

// Business outcomes of the payment core. Every expected condition is one of these.
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrLedgerBlocked      = errors.New("async ledger is blocked")
	ErrLimitExceeded      = errors.New("offline transfer limit exceeded")
	ErrDailyLimitExceeded = errors.New("daily limit exceeded")
	ErrKycRequired        = errors.New("identity validation required")
	ErrAlreadyProcessed   = errors.New("transaction already processed")
)

var businessErrors = []error{
	ErrInvalidArgument,
	ErrAccountNotFound,
	ErrInsufficientFunds,
	ErrLedgerBlocked,
	ErrLimitExceeded,
	ErrDailyLimitExceeded,
	ErrKycRequired,
	ErrNotFound,
	ErrAlreadyProcessed,
	ErrValidation,
}

// IsBusiness reports whether err is one of the typed business outcomes rather than
// an infrastructure fault.
func IsBusiness(err error) bool {
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrInternal) match any 5xx AppError.
func (e *AppError) Is(target error) bool {
	return target == ErrInternal && e.Code >= 500
}

// NewAppError builds an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

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

// ErrInvalidState indicates the resource is in the wrong state for the requested transition.
var ErrInvalidState = errors.New("invalid state")

// ErrImmutable indicates an attempt to edit or delete a protected resource.
var ErrImmutable = errors.New("resource is immutable")

// ErrLocked indicates the operation is blocked by a lock (locked voucher, closed period).
var ErrLocked = errors.New("resource is locked")

// ErrConflict indicates the operation conflicts with existing data.
var ErrConflict = errors.New("conflict")

// ErrPermission indicates the actor may not act on the requested entity.
var ErrPermission = errors.New("permission denied")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInternal indicates an unexpected infrastructure failure.
var ErrInternal = errors.New("internal error")

// Voucher validation failures. Each one also matches ErrValidation.
var (
	ErrUnbalancedVoucher = fmt.Errorf("%w: unbalanced voucher", ErrValidation)
	ErrZeroAmount        = fmt.Errorf("%w: zero amount", ErrValidation)
	ErrMalformedEntry    = fmt.Errorf("%w: malformed entry", ErrValidation)
)

// ErrAccountResolution is returned when a well-known account cannot be resolved. Matches ErrNotFound.
var ErrAccountResolution = fmt.Errorf("%w: account resolution failed", ErrNotFound)

// ErrEventAlreadyProcessed is returned when an accounting event is replayed. Matches ErrConflict.
var ErrEventAlreadyProcessed = fmt.Errorf("%w: event already processed", ErrConflict)

// AppError wraps infrastructure failures with a status code and a safe message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError. A nil err is reported as ErrInternal.
func NewAppError(code int, message string, err error) *AppError {
	if err == nil {
		err = ErrInternal
	}
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// kinds is ordered from most to least specific; Kind returns the first match.
var kinds = []struct {
	err  error
	name string
}{
	{ErrPermission, "PERMISSION"},
	{ErrUnauthorized, "UNAUTHORIZED"},
	{ErrUnbalancedVoucher, "UNBALANCED_VOUCHER"},
	{ErrZeroAmount, "ZERO_AMOUNT"},
	{ErrMalformedEntry, "MALFORMED_ENTRY"},
	{ErrValidation, "VALIDATION"},
	{ErrNotFound, "NOT_FOUND"},
	{ErrInvalidState, "INVALID_STATE"},
	{ErrImmutable, "IMMUTABLE"},
	{ErrLocked, "LOCKED"},
	{ErrEventAlreadyProcessed, "EVENT_ALREADY_PROCESSED"},
	{ErrConflict, "CONFLICT"},
	{ErrDuplicate, "DUPLICATE"},
}

// Kind returns a stable name for the error family of err, or "INTERNAL".
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "INTERNAL"
}

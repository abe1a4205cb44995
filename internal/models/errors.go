// -----------------------------------------------------------------------------
// Application Errors
// -----------------------------------------------------------------------------
// Every failure that crosses a package boundary is an *AppError with a Kind.
// Lookups by id fail with KindNotFound instead of returning zero values, and
// controllers map the kind to an HTTP status.
// -----------------------------------------------------------------------------

package models

import "errors"

// ErrorKind classifies an AppError.
type ErrorKind string

const (
	KindNotFound        ErrorKind = "not_found"
	KindInvalid         ErrorKind = "invalid"
	KindConflict        ErrorKind = "conflict"
	KindStateTransition ErrorKind = "state_transition"
	KindUnauthorized    ErrorKind = "unauthorized"
	KindPayment         ErrorKind = "payment"
)

// AppError is the application error type.
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Fields  map[string][]string
}

func (e *AppError) Error() string {
	return e.Message
}

// Is matches two AppErrors by Code so wrapped sentinels work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewAppError builds an AppError.
func NewAppError(kind ErrorKind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

// NewValidationError builds the KindInvalid error carrying per-field messages.
func NewValidationError(message string, fields map[string][]string) *AppError {
	return &AppError{Kind: KindInvalid, Code: "VALIDATION_FAILED", Message: message, Fields: fields}
}

// KindOf returns the kind of the first AppError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// Errors
var (
	ErrTicketTypeNotFound     = NewAppError(KindNotFound, "TICKET_TYPE_NOT_FOUND", "ticket type not found")
	ErrPurchaseNotFound       = NewAppError(KindNotFound, "PURCHASE_NOT_FOUND", "purchase not found")
	ErrTransactionNotFound    = NewAppError(KindNotFound, "TRANSACTION_NOT_FOUND", "transaction not found")
	ErrStaffNotFound          = NewAppError(KindNotFound, "STAFF_NOT_FOUND", "staff member not found")
	ErrCircleNotFound         = NewAppError(KindNotFound, "CIRCLE_NOT_FOUND", "circle not found")
	ErrTicketTypeExists       = NewAppError(KindConflict, "TICKET_TYPE_EXISTS", "ticket type already exists")
	ErrStaffExists            = NewAppError(KindConflict, "STAFF_EXISTS", "staff email already registered")
	ErrPurchaseExists         = NewAppError(KindConflict, "PURCHASE_EXISTS", "purchase already recorded")
	ErrSoldOut                = NewAppError(KindConflict, "SOLD_OUT", "not enough tickets available")
	ErrTicketTypeInactive     = NewAppError(KindConflict, "TICKET_TYPE_INACTIVE", "ticket type is not on sale")
	ErrInvalidQuantity        = NewAppError(KindInvalid, "INVALID_QUANTITY", "quantity must be at least 1")
	ErrInvalidCapacity        = NewAppError(KindInvalid, "INVALID_CAPACITY", "available quantity must be between 0 and max quantity")
	ErrInvalidStateTransition = NewAppError(KindStateTransition, "INVALID_STATE_TRANSITION", "invalid state transition")
	ErrImmutableField         = NewAppError(KindInvalid, "IMMUTABLE_FIELD", "purchase identity fields cannot be changed")
	ErrInvalidCredentials     = NewAppError(KindUnauthorized, "INVALID_CREDENTIALS", "invalid email or passcode")
	ErrPaymentDeclined        = NewAppError(KindPayment, "PAYMENT_DECLINED", "payment was declined")
	ErrAgeRestricted          = NewAppError(KindInvalid, "AGE_RESTRICTED", "attendee is below the minimum age for this ticket")
	ErrAgeRequired            = NewAppError(KindInvalid, "AGE_REQUIRED", "attendee age is required for this ticket")
	ErrValidationFailed       = NewAppError(KindInvalid, "VALIDATION_FAILED", "validation failed")
	ErrInvalidReview          = NewAppError(KindInvalid, "INVALID_REVIEW", "review status must be approved, rejected or waitlist")
)

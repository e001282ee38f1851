package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the request is valid but clashes with the current state of a resource.
var ErrConflict = errors.New("resource state conflict")

// Posting engine failures. Each one is reported to the caller, none is retried internally.
var (
	ErrUnresolvedAccount = errors.New("cannot determine ledger account, configure mapping")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnbalancedEntry   = errors.New("journal entry is not balanced")
	ErrStorageFailure    = errors.New("storage failure, try again")
)

// AppError carries an HTTP-ish status code alongside the wrapped cause.
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

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewStorageError wraps an infrastructure error so that it matches ErrStorageFailure.
func NewStorageError(message string, err error) error {
	if err == nil {
		return &AppError{Code: http.StatusServiceUnavailable, Message: message, Err: ErrStorageFailure}
	}
	return &AppError{Code: http.StatusServiceUnavailable, Message: message, Err: fmt.Errorf("%w: %w", ErrStorageFailure, err)}
}

// IsRetryable reports whether the caller may retry the same request with the same idempotency key.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageFailure)
}

// UnresolvedAccountError names the transaction facts no account could be found for.
type UnresolvedAccountError struct {
	Category string
	Type     string
	Usage    string
}

func (e *UnresolvedAccountError) Error() string {
	return fmt.Sprintf("cannot determine ledger account for category %q, type %q (usage %s), configure a mapping rule", e.Category, e.Type, e.Usage)
}

func (e *UnresolvedAccountError) Unwrap() error { return ErrUnresolvedAccount }

// InsufficientStockError is returned when a posting would drive an item below zero.
type InsufficientStockError struct {
	ItemID    string
	Requested int64
	OnHand    int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %s: requested %d, on hand %d", e.ItemID, e.Requested, e.OnHand)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// UnbalancedEntryError signals a composer bug. It should never reach a user in normal operation.
type UnbalancedEntryError struct {
	TransactionID string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
	Reason        string
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("journal entry %s is not balanced (debit %s, credit %s): %s", e.TransactionID, e.Debit.String(), e.Credit.String(), e.Reason)
}

func (e *UnbalancedEntryError) Unwrap() error { return ErrUnbalancedEntry }

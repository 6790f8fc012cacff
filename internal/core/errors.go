// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Data errors
	ErrTickerNotFound   = &Error{Code: "TICKER_NOT_FOUND", Message: "ticker not found"}
	ErrPriceUnavailable = &Error{Code: "PRICE_UNAVAILABLE", Message: "price unavailable for ticker"}
	ErrNotFound         = &Error{Code: "NOT_FOUND", Message: "key not found"}

	// Fetch errors
	ErrFetchFailed = &Error{Code: "FETCH_FAILED", Message: "market data fetch failed"}

	// Trade errors
	ErrInsufficientShares = &Error{Code: "INSUFFICIENT_SHARES", Message: "not enough shares to sell"}
	ErrInvalidQuantity    = &Error{Code: "INVALID_QUANTITY", Message: "quantity must be positive"}
	ErrInvalidTicker      = &Error{Code: "INVALID_TICKER", Message: "ticker cannot be empty"}
	ErrInvalidPrice       = &Error{Code: "INVALID_PRICE", Message: "price cannot be negative"}

	// Storage errors
	ErrStorageFailed = &Error{Code: "STORAGE_FAILED", Message: "persisting state failed"}

	// Request errors
	ErrInvalidRequest = &Error{Code: "INVALID_REQUEST", Message: "malformed request"}
	ErrUnauthorized   = &Error{Code: "UNAUTHORIZED", Message: "missing or invalid API key"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)

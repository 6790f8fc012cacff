// Package response writes the JSON envelopes every API endpoint returns.
package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/newthinker/folio/internal/core"
)

// Meta is attached to every success envelope.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
}

// SuccessResponse wraps a payload.
type SuccessResponse struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

// ErrorDetail describes a failure. Cause is only set for domain errors.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   string `json:"cause,omitempty"`
}

// ErrorResponse wraps an ErrorDetail.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

var internalError = ErrorDetail{Code: "INTERNAL_ERROR", Message: "an internal error occurred"}

// JSON writes data inside a success envelope.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, SuccessResponse{
		Data: data,
		Meta: Meta{Timestamp: time.Now().UTC()},
	})
}

// Error writes err inside an error envelope with the given status.
func Error(w http.ResponseWriter, status int, err error) {
	write(w, status, ErrorResponse{Error: detailFor(err)})
}

// Fail writes err with the status StatusFor picks.
func Fail(w http.ResponseWriter, err error) {
	Error(w, StatusFor(err), err)
}

// StatusFor maps a domain error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case isAny(err, core.ErrInvalidRequest, core.ErrInvalidTicker, core.ErrInvalidQuantity, core.ErrInvalidPrice):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusUnauthorized
	case isAny(err, core.ErrTickerNotFound, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInsufficientShares):
		return http.StatusConflict
	case errors.Is(err, core.ErrPriceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func detailFor(err error) ErrorDetail {
	var coreErr *core.Error
	if !errors.As(err, &coreErr) {
		return internalError
	}
	detail := ErrorDetail{Code: coreErr.Code, Message: coreErr.Message}
	if coreErr.Cause != nil {
		detail.Cause = coreErr.Cause.Error()
	}
	return detail
}

func isAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

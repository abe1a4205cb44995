// -----------------------------------------------------------------------------
// Error Response Helpers
// -----------------------------------------------------------------------------
// FromError maps service errors to status codes:
//
//	KindInvalid         → 422
//	KindNotFound        → 404
//	KindConflict        → 409
//	KindStateTransition → 409
//	KindUnauthorized    → 401
//	KindPayment         → 402
//	anything else       → 500 (message hidden)
// -----------------------------------------------------------------------------

package response

import (
	"errors"
	"log"
	"net/http"

	"github.com/doujindesk/doujindesk-api/internal/models"
)

// StatusFor returns the HTTP status of err.
func StatusFor(err error) int {
	switch models.KindOf(err) {
	case models.KindInvalid:
		return http.StatusUnprocessableEntity
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindConflict, models.KindStateTransition:
		return http.StatusConflict
	case models.KindUnauthorized:
		return http.StatusUnauthorized
	case models.KindPayment:
		return http.StatusPaymentRequired
	}
	return http.StatusInternalServerError
}

// FromError writes err as an error envelope. Unclassified errors are logged
// and answered with a generic 500.
func FromError(w http.ResponseWriter, err error, logger *log.Logger) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.Printf("❌ Internal error: %v", err)
		}
		ServerError(w, "")
		return
	}

	payload := JSONResponse{Success: false, Error: err.Error()}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		payload.Code = appErr.Code
		payload.Fields = appErr.Fields
		if appErr.Fields != nil {
			payload.Error = appErr.Message
		}
	}
	Send(w, status, payload)
}

// InvalidJSON answers a body that could not be decoded.
func InvalidJSON(w http.ResponseWriter) {
	Error(w, http.StatusBadRequest, "Invalid JSON format")
}

// ValidationError answers per-field validation failures with 422.
func ValidationError(w http.ResponseWriter, fields map[string][]string) {
	Error(w, http.StatusUnprocessableEntity, fields)
}

func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Authentication required"
	}
	Error(w, http.StatusUnauthorized, message)
}

func Forbidden(w http.ResponseWriter, message string) {
	if message == "" {
		message = "You don't have permission to perform this action"
	}
	Error(w, http.StatusForbidden, message)
}

func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Resource not found"
	}
	Error(w, http.StatusNotFound, message)
}

func ServerError(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Internal server error"
	}
	Error(w, http.StatusInternalServerError, message)
}

func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

func TooManyRequests(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Too many requests. Please try again later."
	}
	Error(w, http.StatusTooManyRequests, message)
}

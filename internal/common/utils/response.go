// Standardized API responses

package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/imadgeboyega/datewrapped/internal/common/apperr"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Field   string      `json:"field,omitempty"`
}

// SuccessResponse sends a successful response
func SuccessResponse(w http.ResponseWriter, data interface{}, statusCode int) {
	RespondWithJSON(w, statusCode, Response{Success: true, Data: data})
}

// ErrorResponse sends an error response
func ErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	RespondWithJSON(w, statusCode, Response{Success: false, Error: message})
}

// MessageResponse sends a simple message response
func MessageResponse(w http.ResponseWriter, message string, statusCode int) {
	RespondWithJSON(w, statusCode, Response{Success: true, Message: message})
}

// RespondWithJSON sends a JSON response with the specified status code and payload
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error":"Error marshaling JSON"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// StatusFor maps an error kind to the HTTP status the API answers with.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.ErrAuth:
		return http.StatusUnauthorized
	case apperr.ErrValidation:
		return http.StatusBadRequest
	case apperr.ErrNotFound:
		return http.StatusNotFound
	case apperr.ErrConflict:
		return http.StatusConflict
	case apperr.ErrGeneration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithAppError writes err using the status of its kind. Storage and
// unclassified failures are reported with a generic message.
func RespondWithAppError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Internal server error"
	}
	var e *apperr.Error
	field := ""
	if errors.As(err, &e) {
		field = e.Field
	}
	RespondWithJSON(w, status, Response{Success: false, Error: msg, Field: field})
}

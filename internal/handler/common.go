package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/clinova/consult/internal/model"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// writeDomainError maps the error's kind onto the HTTP status. Conflicts
// between the request and the meeting's current state (timing, capacity,
// illegal transitions) are all 409s; upstream provider and dispatch
// failures surface as 502.
func writeDomainError(w http.ResponseWriter, err error) {
	var statusCode int
	switch model.KindOf(err) {
	case model.KindValidation:
		statusCode = http.StatusBadRequest
	case model.KindNotFound:
		statusCode = http.StatusNotFound
	case model.KindTiming, model.KindCapacity, model.KindTransition:
		statusCode = http.StatusConflict
	case model.KindProvider, model.KindDispatch:
		statusCode = http.StatusBadGateway
	default:
		statusCode = http.StatusInternalServerError
	}

	message := err.Error()
	if statusCode == http.StatusInternalServerError {
		// Internal details stay in the logs.
		message = "internal server error"
	}

	writeError(w, statusCode, message)
}

// parseQueryInt parses an integer query parameter with a default value
func parseQueryInt(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

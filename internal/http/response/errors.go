package response

import (
	"encoding/json"
	"net/http"

	"github.com/diagnosis/consult-relay/pkg/logger"
)

// ErrorResponse is the failure envelope shared by every relay route.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Path    string `json:"path,omitempty"`
}

// WriteJSON writes data as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// WriteError writes a structured JSON error response
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteErrorWithDetails writes a structured JSON error response with additional details
func WriteErrorWithDetails(w http.ResponseWriter, statusCode int, message, details string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Details: details})
}

func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

func DeliveryFailed(w http.ResponseWriter, message, details string) {
	WriteErrorWithDetails(w, http.StatusInternalServerError, message, details)
}

func NotFound(w http.ResponseWriter, path string) {
	WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: "Endpoint not found", Path: path})
}

// InternalError hides details unless exposeDetails is set (non-production).
func InternalError(w http.ResponseWriter, details string, exposeDetails bool) {
	if !exposeDetails {
		details = ""
	}
	WriteErrorWithDetails(w, http.StatusInternalServerError, "Internal server error", details)
}

func RateLimit(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, message)
}

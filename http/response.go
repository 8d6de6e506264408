package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes a 500 for unexpected server faults. Denials never
// reach here; they carry their own status via writeDenial.
func HandleError(w http.ResponseWriter, err error) {
	slog.Error("request error", "error", err)
	WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}

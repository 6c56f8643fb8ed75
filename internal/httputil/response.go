package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/telhawk-systems/telhawk-notify/internal/models"
)

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// WriteError writes an ErrorResponse. requestID is omitted from the body when empty.
func WriteError(w http.ResponseWriter, status int, requestID, message string) {
	WriteJSON(w, status, models.ErrorResponse{RequestID: requestID, Error: message})
}

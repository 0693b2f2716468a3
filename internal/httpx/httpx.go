// Package httpx holds the JSON response helpers shared by the service
// handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lalaavipsha/microservices-platform/internal/apierror"
)

func WriteJSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// WriteError maps an *apierror.Error to its status and error body.
// Anything else becomes a generic 500 so internal detail never reaches
// the caller.
func WriteError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		WriteJSON(w, logger, apiErr.Kind.HTTPStatus(), map[string]string{"error": apiErr.Message})
		return
	}
	logger.Error("unhandled error", "error", err)
	WriteJSON(w, logger, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

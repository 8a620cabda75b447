package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prudhvinik1/electoralsync/internal/services"
	"go.uber.org/zap"
)

const msgInternalError = "Internal server error"

// Response is the envelope of every API response.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, statusCode int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

func writeData(w http.ResponseWriter, logger *zap.Logger, message string, data any) {
	writeJSON(w, logger, http.StatusOK, Response{Success: true, Message: message, Data: data})
}

func writeFailure(w http.ResponseWriter, logger *zap.Logger, statusCode int, message string) {
	writeJSON(w, logger, statusCode, Response{Success: false, Message: message})
}

// writeError maps invalid arguments to 400 with their fixed message and anything
// else to a logged 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var invalid *services.InvalidArgumentError
	if errors.As(err, &invalid) {
		writeFailure(w, logger, http.StatusBadRequest, invalid.Message)
		return
	}

	logger.Error("Request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	writeFailure(w, logger, http.StatusInternalServerError, msgInternalError)
}

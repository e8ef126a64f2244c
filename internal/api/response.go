package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/lifemap/internal/model"
	"github.com/sells-group/lifemap/internal/session"
)

// Envelope provides a consistent JSON response structure.
type Envelope struct {
	Data    any               `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Details map[string]string `json:"details,omitempty"`
	Success bool              `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		zap.L().Error("api: encode response", zap.Error(err))
	}
}

func success(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

func created(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

func fail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Error: message})
}

// handleError maps domain errors to status codes; anything unknown is a 500.
func handleError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, Envelope{Error: verr.Error(), Details: verr.Fields})
	case errors.Is(err, session.ErrNotFound):
		fail(w, http.StatusNotFound, "session not found")
	case errors.Is(err, model.ErrUnknownField), errors.Is(err, model.ErrInvalidYear):
		fail(w, http.StatusBadRequest, err.Error())
	default:
		zap.L().Error("api: unhandled error", zap.Error(err))
		fail(w, http.StatusInternalServerError, "internal server error")
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/XDTerminated/pomopatch-hackwashu-2025/internal/game"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps the engine's error taxonomy onto HTTP statuses.
// Unexpected store failures are logged and reported as a generic internal
// error, distinct from the business-rule taxonomy.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, game.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, game.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, game.ErrInvalidState):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrDuplicateAccount):
		writeError(w, http.StatusConflict, "account already exists")
	case errors.Is(err, game.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "username already taken")
	case errors.Is(err, game.ErrCapacityExhausted):
		log.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, "unable to generate a unique username")
	default:
		log.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

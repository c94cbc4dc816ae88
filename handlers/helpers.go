package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cyberarena/tournament-bot/repositories"
	"github.com/cyberarena/tournament-bot/services"
)

type jsonResponse map[string]interface{}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("failed to write JSON response", slog.Any("error", err))
	}
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, jsonResponse{"error": message})
}

// mapServiceError converts service and repository errors into HTTP statuses
// for the read-only API surface.
func mapServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound),
		errors.Is(err, repositories.ErrMatchNotFound),
		errors.Is(err, repositories.ErrGameNotFound),
		errors.Is(err, services.ErrNotFound):
		errorResponse(w, http.StatusNotFound, "the requested resource could not be found")
	case errors.Is(err, services.ErrBracketNotCreated):
		errorResponse(w, http.StatusConflict, err.Error())
	default:
		slog.Error("internal error", slog.Any("error", err))
		errorResponse(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
	}
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cyberarena/tournament-bot/repositories"
	"github.com/cyberarena/tournament-bot/services"
)

// BracketHandler serves the read-only JSON consumed by the live bracket
// viewer page.
type BracketHandler struct {
	tournaments *services.TournamentService
	sync        *services.SyncService
}

func NewBracketHandler(tournaments *services.TournamentService, sync *services.SyncService) *BracketHandler {
	return &BracketHandler{tournaments: tournaments, sync: sync}
}

func (h *BracketHandler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournaments.List(r.Context(), repositories.ListTournamentsFilter{})
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments})
}

func (h *BracketHandler) GetTournament(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "tournamentID"))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid tournament id")
		return
	}
	tournament, err := h.tournaments.GetByID(r.Context(), id)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament})
}

func (h *BracketHandler) GetBracket(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "tournamentID"))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid tournament id")
		return
	}
	groups, err := h.sync.LocalBracket(r.Context(), id)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"tournament_id": id, "groups": groups})
}

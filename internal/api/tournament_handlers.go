package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// JoinTournamentHandler handles POST /user/{userId}/tournaments/{tournamentId}/join
func (h *HandlerProvider) JoinTournamentHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path", "invalid_user_id")
		return
	}
	tournamentID := chi.URLParam(r, "tournamentId")

	p, err := h.entry.Join(r.Context(), userID, tournamentID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"participationId": p.ID,
		"tournamentId":    p.TournamentID,
		"userId":          p.UserID,
		"joinedAt":        p.JoinedAt,
		"refundable":      p.Refundable,
	})
}

// LeaveTournamentHandler handles POST /user/{userId}/tournaments/{tournamentId}/leave
func (h *HandlerProvider) LeaveTournamentHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path", "invalid_user_id")
		return
	}
	tournamentID := chi.URLParam(r, "tournamentId")

	res, err := h.entry.Leave(r.Context(), userID, tournamentID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "left",
		"refunded": res.Refunded,
	})
}

// GetOccupancyHandler handles GET /tournaments/{tournamentId}/occupancy
func (h *HandlerProvider) GetOccupancyHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentId")

	current, max, err := h.entry.Occupancy(r.Context(), tournamentID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tournamentId":        tournamentID,
		"currentParticipants": current,
		"maxParticipants":     max,
	})
}

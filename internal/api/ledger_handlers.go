package api

import (
	"net/http"
	"strconv"
	"time"
)

// GetBalanceHandler handles GET /user/{userId}/balance
func (h *HandlerProvider) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path", "invalid_user_id")
		return
	}

	bal, err := h.ledger.GetBalance(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"userId":  userID,
		"balance": bal,
	})
}

type ledgerEntryResponse struct {
	ID                string    `json:"id"`
	Amount            int64     `json:"amount"`
	Kind              string    `json:"kind"`
	Status            string    `json:"status"`
	ExternalPaymentID *string   `json:"externalPaymentId,omitempty"`
	TournamentID      *string   `json:"tournamentId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// GetLedgerHandler handles GET /user/{userId}/ledger?limit=&offset=
func (h *HandlerProvider) GetLedgerHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path", "invalid_user_id")
		return
	}

	limit, offset := parsePageParams(r)

	list, err := h.ledger.History(r.Context(), userID, limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]ledgerEntryResponse, 0, len(list))
	for _, e := range list {
		resp = append(resp, ledgerEntryResponse{
			ID:                e.ID,
			Amount:            e.Amount,
			Kind:              string(e.Kind),
			Status:            string(e.Status),
			ExternalPaymentID: e.ExternalPaymentID,
			TournamentID:      e.TournamentID,
			CreatedAt:         e.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"userId":  userID,
		"entries": resp,
	})
}

// parsePageParams reads limit/offset query params, leaving zero values for
// the service defaults when absent or malformed.
func parsePageParams(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit, _ = strconv.Atoi(q.Get("limit"))
	offset, _ = strconv.Atoi(q.Get("offset"))
	return limit, offset
}

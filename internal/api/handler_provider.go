package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/entries"
	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/participations"
	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/tournaments"
	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/users"
	"github.com/HazemSalah29/bracketesports-sub001/internal/services/entry"
	"github.com/HazemSalah29/bracketesports-sub001/internal/services/ledger"
	"github.com/HazemSalah29/bracketesports-sub001/internal/services/purchase"
)

// Deps carries the services the handlers dispatch to.
type Deps struct {
	Ledger   *ledger.Service
	Entry    *entry.Service
	Purchase *purchase.Service
}

type HandlerProvider struct {
	ledger   *ledger.Service
	entry    *entry.Service
	purchase *purchase.Service
}

// NewHandler returns a new Handler provider.
func NewHandler(deps Deps) *HandlerProvider {
	return &HandlerProvider{
		ledger:   deps.Ledger,
		entry:    deps.Entry,
		purchase: deps.Purchase,
	}
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// decodeJSON reads a request body into dst with a 1MB cap and unknown
// fields rejected.
func decodeJSON(r *http.Request, w http.ResponseWriter, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return errors.New("invalid JSON")
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, msg, reason string) {
	writeJSON(w, status, errorResponse{Error: msg, Reason: reason})
}

// writeDomainError maps service errors to HTTP statuses. Steady-state
// conflicts (insufficient balance, full tournament, duplicates) are 409
// with a machine-readable reason code so clients can branch on them.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found", "user_not_found")
	case errors.Is(err, tournaments.ErrTournamentNotFound):
		writeError(w, http.StatusNotFound, "tournament not found", "tournament_not_found")
	case errors.Is(err, entries.ErrEntryNotFound):
		writeError(w, http.StatusNotFound, "ledger entry not found", "entry_not_found")
	case errors.Is(err, users.ErrInsufficientBalance):
		writeError(w, http.StatusConflict, "insufficient balance", "insufficient_balance")
	case errors.Is(err, tournaments.ErrTournamentFull):
		writeError(w, http.StatusConflict, "tournament is full", "tournament_full")
	case errors.Is(err, participations.ErrAlreadyJoined):
		writeError(w, http.StatusConflict, "already joined", "already_joined")
	case errors.Is(err, participations.ErrNotParticipating):
		writeError(w, http.StatusConflict, "not a participant", "not_participating")
	case errors.Is(err, entry.ErrTournamentNotOpen):
		writeError(w, http.StatusConflict, "tournament not open for registration", "tournament_not_open")
	case errors.Is(err, entry.ErrTooLateToLeave):
		writeError(w, http.StatusConflict, "too late to withdraw", "too_late_to_leave")
	case errors.Is(err, ledger.ErrAlreadyResolved):
		writeError(w, http.StatusConflict, "payment already resolved with a different outcome", "already_resolved")
	case errors.Is(err, ledger.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "amount must be positive", "invalid_amount")
	case errors.Is(err, purchase.ErrGatewayUnavailable):
		writeError(w, http.StatusBadGateway, "payment gateway unavailable", "gateway_unavailable")
	default:
		slog.Error("unhandled error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error", "")
	}
}

// parseUserIDFromPath reads `{userId}` from chi routes like:
//
//	GET  /user/{userId}/balance
//	POST /user/{userId}/tournaments/{tournamentId}/join
func parseUserIDFromPath(r *http.Request) (uint64, error) {
	idStr := chi.URLParam(r, "userId")
	if idStr == "" {
		return 0, fmt.Errorf("missing userId")
	}

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid userId: %w", err)
	}
	if id == 0 {
		return 0, fmt.Errorf("invalid userId: must be positive")
	}

	return id, nil
}

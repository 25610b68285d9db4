package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter constructs the chi router with all API endpoints registered.
func NewRouter(deps Deps) http.Handler {
	h := NewHandler(deps)
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/user/{userId}/balance", h.GetBalanceHandler)
	r.Get("/user/{userId}/ledger", h.GetLedgerHandler)
	r.Post("/user/{userId}/purchase", h.InitiatePurchaseHandler)
	r.Post("/user/{userId}/payout", h.PayoutHandler)

	r.Post("/user/{userId}/tournaments/{tournamentId}/join", h.JoinTournamentHandler)
	r.Post("/user/{userId}/tournaments/{tournamentId}/leave", h.LeaveTournamentHandler)
	r.Get("/tournaments/{tournamentId}/occupancy", h.GetOccupancyHandler)

	r.Post("/webhooks/payments", h.PaymentWebhookHandler)

	return r
}

package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/entries"
	"github.com/HazemSalah29/bracketesports-sub001/internal/services/ledger"
)

type purchaseRequest struct {
	Coins int64 `json:"coins"`
}

// InitiatePurchaseHandler handles POST /user/{userId}/purchase
func (h *HandlerProvider) InitiatePurchaseHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path", "invalid_user_id")
		return
	}

	var req purchaseRequest
	if err := decodeJSON(r, w, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "invalid_body")
		return
	}

	receipt, err := h.purchase.Initiate(r.Context(), userID, req.Coins)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"entryId":      receipt.EntryID,
		"intentId":     receipt.IntentID,
		"clientSecret": receipt.ClientSecret,
	})
}

type payoutRequest struct {
	Coins        int64  `json:"coins"`
	TournamentID string `json:"tournamentId"`
}

// PayoutHandler handles POST /user/{userId}/payout
//
// Prize credits come from an operator process, not end users; routing-level
// access control is expected in front of this endpoint.
func (h *HandlerProvider) PayoutHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path", "invalid_user_id")
		return
	}

	var req payoutRequest
	if err := decodeJSON(r, w, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "invalid_body")
		return
	}

	entryID, err := h.ledger.Credit(r.Context(), userID, req.Coins, entries.KindPayout, ledger.Refs{TournamentID: req.TournamentID})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"entryId": entryID})
}

type webhookRequest struct {
	Type            string `json:"type"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// PaymentWebhookHandler handles POST /webhooks/payments
//
// The gateway delivers at least once and retries on non-2xx, so anything
// that will not improve on retry must answer 200: unknown event types and
// unknown intent ids are acknowledged and logged. Conflicting outcomes for
// an already-resolved payment answer 409 so they surface in gateway logs.
func (h *HandlerProvider) PaymentWebhookHandler(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := decodeJSON(r, w, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "invalid_body")
		return
	}
	if req.PaymentIntentID == "" {
		writeError(w, http.StatusBadRequest, "paymentIntentId required", "invalid_body")
		return
	}

	var err error
	switch req.Type {
	case "payment.succeeded":
		err = h.purchase.OnPaymentSucceeded(r.Context(), req.PaymentIntentID)
	case "payment.failed":
		err = h.purchase.OnPaymentFailed(r.Context(), req.PaymentIntentID)
	default:
		slog.Info("ignoring unknown webhook event type", "type", req.Type)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	if err != nil {
		if errors.Is(err, entries.ErrEntryNotFound) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
			return
		}
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

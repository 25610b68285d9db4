// Package purchase handles coin-lot purchases: synchronous initiation
// against the payment gateway and asynchronous reconciliation of the
// resulting pending ledger entries, exactly once per payment intent.
package purchase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/entries"
	"github.com/HazemSalah29/bracketesports-sub001/internal/services/ledger"
)

type Service struct {
	ledger         *ledger.Service
	gateway        Gateway
	coinPriceCents int64
}

func New(ledgerSvc *ledger.Service, gateway Gateway, coinPriceCents int64) *Service {
	return &Service{
		ledger:         ledgerSvc,
		gateway:        gateway,
		coinPriceCents: coinPriceCents,
	}
}

// Receipt is returned from a successful initiation. The purchase stays
// pending (no balance effect) until the gateway reports an outcome.
type Receipt struct {
	EntryID      string
	IntentID     string
	ClientSecret string
}

// Initiate creates a payment intent at the gateway and records the pending
// purchase entry keyed by the intent id. A gateway failure records nothing;
// a record failure after intent creation leaves a dangling intent whose
// webhook will be treated as unknown (logged, no effect).
func (s *Service) Initiate(ctx context.Context, userID uint64, coins int64) (Receipt, error) {
	if coins <= 0 {
		return Receipt{}, ledger.ErrInvalidAmount
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, coins*s.coinPriceCents, map[string]string{
		"user_id": strconv.FormatUint(userID, 10),
		"coins":   strconv.FormatInt(coins, 10),
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("create payment intent: %w", err)
	}

	entryID, err := s.ledger.RecordPending(ctx, userID, coins, entries.KindPurchase, intent.ID)
	if err != nil {
		return Receipt{}, fmt.Errorf("record pending purchase: %w", err)
	}

	slog.Info("purchase initiated",
		"userID", userID, "coins", coins, "intentID", intent.ID, "entryID", entryID)

	return Receipt{
		EntryID:      entryID,
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// OnPaymentSucceeded credits the purchased coins, exactly once for the
// given intent. Redelivered events are no-ops.
func (s *Service) OnPaymentSucceeded(ctx context.Context, intentID string) error {
	return s.resolve(ctx, intentID, entries.StatusCompleted)
}

// OnPaymentFailed marks the purchase failed; the balance is untouched.
func (s *Service) OnPaymentFailed(ctx context.Context, intentID string) error {
	return s.resolve(ctx, intentID, entries.StatusFailed)
}

func (s *Service) resolve(ctx context.Context, intentID string, outcome entries.Status) error {
	entryID, err := s.ledger.ResolvePending(ctx, intentID, outcome)
	if err != nil {
		if errors.Is(err, entries.ErrEntryNotFound) {
			// Expected under at-least-once delivery with unknown or
			// foreign intents; the gateway's retry policy owns redelivery.
			slog.Warn("reconciliation event for unknown payment intent",
				"intentID", intentID, "outcome", outcome)
		}

		return fmt.Errorf("resolve intent %s: %w", intentID, err)
	}

	slog.Info("purchase reconciled", "intentID", intentID, "entryID", entryID, "outcome", outcome)

	return nil
}

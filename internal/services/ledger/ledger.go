// Package ledger is the coin ledger store: an append-only record of
// balance-affecting entries plus the materialized balance per user. Every
// operation that touches a balance writes the entry and the balance inside
// one database transaction, so the invariant "balance == sum of completed
// entry amounts" cannot be broken by a partial write.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/HazemSalah29/bracketesports-sub001/internal/infra/pgutils"
	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/entries"
	pgentries "github.com/HazemSalah29/bracketesports-sub001/internal/repos/entries/postgres"
	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/users"
	pgusers "github.com/HazemSalah29/bracketesports-sub001/internal/repos/users/postgres"
)

var (
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrAlreadyResolved signals a reconciliation outcome that conflicts
	// with the terminal state already recorded for the same payment ref.
	ErrAlreadyResolved = errors.New("entry already resolved with different outcome")
)

// Refs carries the optional references attached to a ledger entry.
type Refs struct {
	ExternalPaymentID string
	TournamentID      string
}

type Service struct {
	db      *sql.DB
	users   users.Users
	entries entries.Entries
}

func New(db *sql.DB) *Service {
	return &Service{
		db:      db,
		users:   pgusers.New(db),
		entries: pgentries.New(db),
	}
}

// Credit adds amount coins to the user's balance and appends a completed
// entry, atomically.
func (s *Service) Credit(ctx context.Context, userID uint64, amount int64, kind entries.Kind, refs Refs) (string, error) {
	if amount <= 0 {
		return "", ErrInvalidAmount
	}

	entryID := uuid.NewString()

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := s.users.LockBalance(tx, userID)
		if err != nil {
			return fmt.Errorf("lock balance: %w", err)
		}

		err = s.users.Credit(tx, userID, amount)
		if err != nil {
			return fmt.Errorf("credit balance: %w", err)
		}

		err = s.entries.Insert(tx, completedEntry(entryID, userID, amount, kind, refs))
		if err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}

		return nil
	})
	if err != nil {
		return "", fmt.Errorf("credit: %w", err)
	}

	return entryID, nil
}

// Debit removes amount coins and appends a completed entry with a negative
// amount. The sufficiency check runs inside the same transaction as the
// write; a concurrent debit cannot sneak between them.
func (s *Service) Debit(ctx context.Context, userID uint64, amount int64, kind entries.Kind, refs Refs) (string, error) {
	if amount <= 0 {
		return "", ErrInvalidAmount
	}

	entryID := uuid.NewString()

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		balance, err := s.users.LockBalance(tx, userID)
		if err != nil {
			return fmt.Errorf("lock balance: %w", err)
		}

		if balance < amount {
			return fmt.Errorf("pre-check debit: %w", users.ErrInsufficientBalance)
		}

		err = s.users.Debit(tx, userID, amount)
		if err != nil {
			return fmt.Errorf("debit balance: %w", err)
		}

		err = s.entries.Insert(tx, completedEntry(entryID, userID, -amount, kind, refs))
		if err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}

		return nil
	})
	if err != nil {
		return "", fmt.Errorf("debit: %w", err)
	}

	return entryID, nil
}

// GetBalance returns the user's balance (no locks; read paths).
func (s *Service) GetBalance(ctx context.Context, userID uint64) (int64, error) {
	balance, err := s.users.GetBalance(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// History returns the user's ledger entries, newest first.
func (s *Service) History(ctx context.Context, userID uint64, limit, offset int) ([]entries.Entry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	// Surface unknown users as an error rather than an empty page.
	_, err := s.users.GetBalance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}

	list, err := s.entries.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	return list, nil
}

// RecordPending appends a pending entry keyed by the external payment ref.
// Pending entries have no balance effect until resolved.
func (s *Service) RecordPending(ctx context.Context, userID uint64, amount int64, kind entries.Kind, externalRef string) (string, error) {
	if amount <= 0 {
		return "", ErrInvalidAmount
	}
	if externalRef == "" {
		return "", errors.New("external payment ref required")
	}

	entryID := uuid.NewString()

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := s.users.LockBalance(tx, userID)
		if err != nil {
			return fmt.Errorf("lock balance: %w", err)
		}

		ref := externalRef
		err = s.entries.Insert(tx, entries.Entry{
			ID:                entryID,
			UserID:            userID,
			Amount:            amount,
			Kind:              kind,
			Status:            entries.StatusPending,
			ExternalPaymentID: &ref,
		})
		if err != nil {
			return fmt.Errorf("insert pending entry: %w", err)
		}

		return nil
	})
	if err != nil {
		return "", fmt.Errorf("record pending: %w", err)
	}

	return entryID, nil
}

// ResolvePending flips the pending entry for externalRef to the given
// terminal outcome, applying the balance effect exactly once. A repeated
// delivery with the same outcome is a no-op returning the existing entry
// id; a conflicting outcome is ErrAlreadyResolved and changes nothing.
func (s *Service) ResolvePending(ctx context.Context, externalRef string, outcome entries.Status) (string, error) {
	if outcome != entries.StatusCompleted && outcome != entries.StatusFailed {
		return "", fmt.Errorf("invalid outcome %q", outcome)
	}

	var entryID string

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		e, err := s.entries.LockByExternalRef(tx, externalRef)
		if err != nil {
			return fmt.Errorf("lock pending entry: %w", err)
		}

		entryID = e.ID

		if e.Status != entries.StatusPending {
			if e.Status == outcome {
				slog.Info("duplicate reconciliation delivery ignored",
					"externalRef", externalRef, "outcome", outcome)
				return nil
			}

			return fmt.Errorf("entry %s is %s, requested %s: %w",
				e.ID, e.Status, outcome, ErrAlreadyResolved)
		}

		if outcome == entries.StatusCompleted {
			_, err = s.users.LockBalance(tx, e.UserID)
			if err != nil {
				return fmt.Errorf("lock balance: %w", err)
			}

			err = s.users.Credit(tx, e.UserID, e.Amount)
			if err != nil {
				return fmt.Errorf("credit balance: %w", err)
			}
		}

		err = s.entries.UpdateStatus(tx, e.ID, outcome)
		if err != nil {
			return fmt.Errorf("update entry status: %w", err)
		}

		return nil
	})
	if err != nil {
		return "", fmt.Errorf("resolve pending: %w", err)
	}

	return entryID, nil
}

// VerifyBalance recomputes the user's balance from completed entries and
// compares it with the materialized value. Audit/diagnostic path.
func (s *Service) VerifyBalance(ctx context.Context, userID uint64) error {
	balance, err := s.users.GetBalance(ctx, userID)
	if err != nil {
		return fmt.Errorf("get balance: %w", err)
	}

	sum, err := s.entries.SumCompletedByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("sum entries: %w", err)
	}

	if balance != sum {
		return fmt.Errorf("balance mismatch for user %d: materialized %d, entries %d",
			userID, balance, sum)
	}

	return nil
}

func completedEntry(id string, userID uint64, amount int64, kind entries.Kind, refs Refs) entries.Entry {
	e := entries.Entry{
		ID:     id,
		UserID: userID,
		Amount: amount,
		Kind:   kind,
		Status: entries.StatusCompleted,
	}

	if refs.ExternalPaymentID != "" {
		ref := refs.ExternalPaymentID
		e.ExternalPaymentID = &ref
	}
	if refs.TournamentID != "" {
		tid := refs.TournamentID
		e.TournamentID = &tid
	}

	return e
}

// Package entry coordinates the atomic unit behind joining and leaving a
// tournament: slot reservation, entry-fee debit or refund, and the
// participation record. Each join or leave runs inside one database
// transaction; a failure at any step rolls back the earlier steps, so
// participation rows, the occupancy counter, and the ledger can never
// disagree.
package entry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/HazemSalah29/bracketesports-sub001/internal/infra/pgutils"
	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/entries"
	pgentries "github.com/HazemSalah29/bracketesports-sub001/internal/repos/entries/postgres"
	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/participations"
	pgparticipations "github.com/HazemSalah29/bracketesports-sub001/internal/repos/participations/postgres"
	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/tournaments"
	pgtournaments "github.com/HazemSalah29/bracketesports-sub001/internal/repos/tournaments/postgres"
	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/users"
	pgusers "github.com/HazemSalah29/bracketesports-sub001/internal/repos/users/postgres"
)

var (
	ErrTournamentNotOpen = errors.New("tournament not open for registration")
	ErrTooLateToLeave    = errors.New("too late to leave tournament")
)

// Policy holds the business rules that are configuration, not code.
// RefundLeadTime is the minimum gap before start time within which
// fee-bearing entries can no longer be refunded.
type Policy struct {
	RefundLeadTime time.Duration
}

type Service struct {
	db             *sql.DB
	users          users.Users
	entries        entries.Entries
	tournaments    tournaments.Tournaments
	participations participations.Participations
	policy         Policy
}

func New(db *sql.DB, policy Policy) *Service {
	return &Service{
		db:             db,
		users:          pgusers.New(db),
		entries:        pgentries.New(db),
		tournaments:    pgtournaments.New(db),
		participations: pgparticipations.New(db),
		policy:         policy,
	}
}

// Join registers the user in the tournament, debiting the entry fee.
//
// Lock order is tournament row, then user row; Leave uses the same order,
// so concurrent joins and leaves cannot deadlock. All checks and writes
// share one transaction: a failed debit rolls back the slot reservation,
// a failed participation insert rolls back both.
func (s *Service) Join(ctx context.Context, userID uint64, tournamentID string) (participations.Participation, error) {
	var p participations.Participation

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		t, err := s.tournaments.Lock(tx, tournamentID)
		if err != nil {
			return fmt.Errorf("lock tournament: %w", err)
		}

		now := time.Now()
		if t.Status != tournaments.StatusRegistering || !now.Before(t.StartTime) {
			return fmt.Errorf("tournament %s (%s, starts %s): %w",
				t.ID, t.Status, t.StartTime.Format(time.RFC3339), ErrTournamentNotOpen)
		}

		joined, err := s.participations.Exists(tx, tournamentID, userID)
		if err != nil {
			return fmt.Errorf("check participation: %w", err)
		}
		if joined {
			return fmt.Errorf("user %d in tournament %s: %w",
				userID, tournamentID, participations.ErrAlreadyJoined)
		}

		err = s.tournaments.ReserveSlot(tx, tournamentID)
		if err != nil {
			return fmt.Errorf("reserve slot: %w", err)
		}

		if t.EntryFee > 0 {
			balance, err := s.users.LockBalance(tx, userID)
			if err != nil {
				return fmt.Errorf("lock balance: %w", err)
			}

			if balance < t.EntryFee {
				return fmt.Errorf("pre-check entry fee: %w", users.ErrInsufficientBalance)
			}

			err = s.users.Debit(tx, userID, t.EntryFee)
			if err != nil {
				return fmt.Errorf("debit entry fee: %w", err)
			}

			tid := tournamentID
			err = s.entries.Insert(tx, entries.Entry{
				ID:           uuid.NewString(),
				UserID:       userID,
				Amount:       -t.EntryFee,
				Kind:         entries.KindTournamentEntry,
				Status:       entries.StatusCompleted,
				TournamentID: &tid,
			})
			if err != nil {
				return fmt.Errorf("insert entry-fee record: %w", err)
			}
		} else {
			// Zero-fee joins still need an existing user; no zero-amount
			// ledger entries are ever written.
			_, err = s.users.LockBalance(tx, userID)
			if err != nil {
				return fmt.Errorf("lock balance: %w", err)
			}
		}

		p = participations.Participation{
			ID:           uuid.NewString(),
			TournamentID: tournamentID,
			UserID:       userID,
			JoinedAt:     now,
			Refundable:   s.refundableAtJoin(t, now),
		}

		err = s.participations.Insert(tx, p)
		if err != nil {
			return fmt.Errorf("insert participation: %w", err)
		}

		return nil
	})
	if err != nil {
		return participations.Participation{}, fmt.Errorf("join: %w", err)
	}

	return p, nil
}

// Occupancy reports the tournament's slot usage without locking.
func (s *Service) Occupancy(ctx context.Context, tournamentID string) (current, max int, err error) {
	return s.tournaments.Occupancy(ctx, tournamentID)
}

// LeaveResult reports what a successful leave did.
type LeaveResult struct {
	Refunded int64
}

// Leave withdraws the user from the tournament, releasing the slot and
// refunding the entry fee when the refund window is still open. Zero-fee
// entries skip the ledger entirely.
func (s *Service) Leave(ctx context.Context, userID uint64, tournamentID string) (LeaveResult, error) {
	var res LeaveResult

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		t, err := s.tournaments.Lock(tx, tournamentID)
		if err != nil {
			return fmt.Errorf("lock tournament: %w", err)
		}

		p, err := s.participations.LockByPair(tx, tournamentID, userID)
		if err != nil {
			return fmt.Errorf("lock participation: %w", err)
		}

		now := time.Now()
		if !now.Before(s.refundCutoff(t)) || (t.EntryFee > 0 && !p.Refundable) {
			return fmt.Errorf("tournament %s starts %s: %w",
				t.ID, t.StartTime.Format(time.RFC3339), ErrTooLateToLeave)
		}

		err = s.participations.Delete(tx, p.ID)
		if err != nil {
			return fmt.Errorf("delete participation: %w", err)
		}

		err = s.tournaments.ReleaseSlot(tx, tournamentID)
		if err != nil {
			return fmt.Errorf("release slot: %w", err)
		}

		if t.EntryFee > 0 {
			_, err = s.users.LockBalance(tx, userID)
			if err != nil {
				return fmt.Errorf("lock balance: %w", err)
			}

			err = s.users.Credit(tx, userID, t.EntryFee)
			if err != nil {
				return fmt.Errorf("credit refund: %w", err)
			}

			tid := tournamentID
			err = s.entries.Insert(tx, entries.Entry{
				ID:           uuid.NewString(),
				UserID:       userID,
				Amount:       t.EntryFee,
				Kind:         entries.KindTournamentRefund,
				Status:       entries.StatusCompleted,
				TournamentID: &tid,
			})
			if err != nil {
				return fmt.Errorf("insert refund record: %w", err)
			}

			res.Refunded = t.EntryFee
		}

		return nil
	})
	if err != nil {
		return LeaveResult{}, fmt.Errorf("leave: %w", err)
	}

	return res, nil
}

// refundCutoff is the instant from which leaving stops being refundable:
// tournament start for free entries, RefundLeadTime earlier for fee-bearing
// ones.
func (s *Service) refundCutoff(t tournaments.Tournament) time.Time {
	if t.EntryFee > 0 {
		return t.StartTime.Add(-s.policy.RefundLeadTime)
	}

	return t.StartTime
}

// refundableAtJoin snapshots whether this participation can ever be
// refunded. A fee-bearing join inside the lead window is non-refundable
// from the start.
func (s *Service) refundableAtJoin(t tournaments.Tournament, now time.Time) bool {
	if t.EntryFee == 0 {
		return true
	}

	return now.Before(t.StartTime.Add(-s.policy.RefundLeadTime))
}

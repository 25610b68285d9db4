package participations

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrAlreadyJoined    = errors.New("user already joined tournament")
	ErrNotParticipating = errors.New("user not participating in tournament")
)

// Participation is one user's active registration in one tournament. At
// most one row exists per (tournament, user) pair, backed by a unique
// index.
type Participation struct {
	ID           string
	TournamentID string
	UserID       uint64
	JoinedAt     time.Time
	Refundable   bool
}

type Participations interface {
	// Insert creates the registration; a pair clash yields ErrAlreadyJoined.
	Insert(tx *sql.Tx, p Participation) error
	// LockByPair locks the registration for the rest of tx; missing rows
	// yield ErrNotParticipating.
	LockByPair(tx *sql.Tx, tournamentID string, userID uint64) (Participation, error)
	Delete(tx *sql.Tx, id string) error
	Exists(tx *sql.Tx, tournamentID string, userID uint64) (bool, error)
	// CountActive counts registrations for a tournament; audit path for
	// checking the occupancy counter.
	CountActive(ctx context.Context, tournamentID string) (int64, error)
}

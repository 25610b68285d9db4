package tournaments

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTournamentFull     = errors.New("tournament full")
)

type Status string

const (
	StatusRegistering Status = "registering"
	StatusLive        Status = "live"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
)

type Tournament struct {
	ID                  string
	Name                string
	EntryFee            int64
	MaxParticipants     int
	CurrentParticipants int
	StartTime           time.Time
	Status              Status
}

// Tournaments owns the durable occupancy counter. CurrentParticipants always
// equals the count of participation rows for the tournament and never
// exceeds MaxParticipants; both facts are also enforced by schema
// constraints.
type Tournaments interface {
	Get(ctx context.Context, id string) (Tournament, error)
	// Lock locks the tournament row for the rest of tx. Joins and leaves
	// against the same tournament serialize here.
	Lock(tx *sql.Tx, id string) (Tournament, error)
	// ReserveSlot checks current < max and increments in one statement;
	// zero rows affected yields ErrTournamentFull. Under N concurrent calls
	// exactly max-current succeed.
	ReserveSlot(tx *sql.Tx, id string) error
	// ReleaseSlot decrements, never below zero.
	ReleaseSlot(tx *sql.Tx, id string) error
	Occupancy(ctx context.Context, id string) (current, max int, err error)
}

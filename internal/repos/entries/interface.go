package entries

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrEntryNotFound        = errors.New("ledger entry not found")
	ErrDuplicateExternalRef = errors.New("duplicate external payment reference")
)

type Kind string

const (
	KindPurchase         Kind = "purchase"
	KindTournamentEntry  Kind = "tournament_entry"
	KindTournamentRefund Kind = "tournament_refund"
	KindPayout           Kind = "payout"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Entry is one immutable balance-affecting record. Amount is signed:
// positive credits, negative debits. After insertion only Status may change,
// and only pending -> completed or pending -> failed, exactly once.
type Entry struct {
	ID                string
	UserID            uint64
	Amount            int64
	Kind              Kind
	Status            Status
	ExternalPaymentID *string
	TournamentID      *string
	CreatedAt         time.Time
}

type Entries interface {
	// Insert appends an entry. A clash on ExternalPaymentID yields
	// ErrDuplicateExternalRef.
	Insert(tx *sql.Tx, e Entry) error
	// LockByExternalRef locks the entry referencing the given payment id
	// for the rest of tx. Reconciliation serializes here per intent.
	LockByExternalRef(tx *sql.Tx, externalRef string) (Entry, error)
	// UpdateStatus applies a terminal transition to a pending entry. Zero
	// rows affected (already terminal) yields ErrEntryNotFound.
	UpdateStatus(tx *sql.Tx, id string, status Status) error
	// ListByUser returns the user's entries, newest first.
	ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]Entry, error)
	// SumCompletedByUser sums completed amounts; audit path for checking
	// the materialized balance.
	SumCompletedByUser(ctx context.Context, userID uint64) (int64, error)
}

package users

import (
	"context"
	"database/sql"
	"errors"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Users maintains the materialized coin balance per user. The balance is a
// cache of the sum of that user's completed ledger entries; it is only
// written together with the corresponding entry, inside one transaction.
type Users interface {
	// GetBalance reads the balance without locking (display paths).
	GetBalance(ctx context.Context, userID uint64) (int64, error)
	// LockBalance locks the user's row for the rest of tx and returns the
	// current balance. Concurrent mutations of the same user serialize here.
	LockBalance(tx *sql.Tx, userID uint64) (int64, error)
	// Credit adds amount (> 0) to the balance.
	Credit(tx *sql.Tx, userID uint64, amount int64) error
	// Debit subtracts amount (> 0), re-checking sufficiency inside the same
	// statement. The balance can never go negative, even if the caller's
	// pre-check raced a concurrent debit.
	Debit(tx *sql.Tx, userID uint64, amount int64) error
}

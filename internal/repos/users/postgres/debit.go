package users

import (
	"database/sql"
	"fmt"

	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/users"
)

// Debit re-checks sufficiency in the UPDATE itself. Zero rows affected
// means the balance (as of this statement, not some earlier read) could not
// cover the amount.
func (r *usersRepo) Debit(tx *sql.Tx, userID uint64, amount int64) error {
	res, err := tx.Exec(`
		UPDATE users
		SET balance = balance - $2
		WHERE id = $1
		  AND balance >= $2
	`, userID, amount)
	if err != nil {
		return fmt.Errorf("debit balance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return users.ErrInsufficientBalance
	}

	return nil
}

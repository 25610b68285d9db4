package entries

import (
	"database/sql"
	"fmt"

	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/entries"
)

// UpdateStatus only moves entries out of pending; amount and kind are
// immutable and terminal states are final.
func (r *entriesRepo) UpdateStatus(tx *sql.Tx, id string, status entries.Status) error {
	res, err := tx.Exec(`
		UPDATE ledger_entries
		SET status = $2
		WHERE id = $1
		  AND status = 'pending'
	`, id, status)
	if err != nil {
		return fmt.Errorf("update entry status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return entries.ErrEntryNotFound
	}

	return nil
}

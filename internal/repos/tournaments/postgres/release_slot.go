package tournaments

import (
	"database/sql"
	"fmt"
)

// ReleaseSlot never drives the counter below zero; callers should only
// release slots they hold, the guard catches bugs rather than papering
// over them.
func (r *tournamentsRepo) ReleaseSlot(tx *sql.Tx, id string) error {
	_, err := tx.Exec(`
		UPDATE tournaments
		SET current_participants = current_participants - 1
		WHERE id = $1
		  AND current_participants > 0
	`, id)
	if err != nil {
		return fmt.Errorf("release slot: %w", err)
	}

	return nil
}

package tournaments

import (
	"database/sql"
	"fmt"

	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/tournaments"
)

// ReserveSlot increments the occupancy counter only while a free slot
// exists, in a single statement. The capacity check and the increment
// cannot be separated by a concurrent join.
func (r *tournamentsRepo) ReserveSlot(tx *sql.Tx, id string) error {
	res, err := tx.Exec(`
		UPDATE tournaments
		SET current_participants = current_participants + 1
		WHERE id = $1
		  AND current_participants < max_participants
	`, id)
	if err != nil {
		return fmt.Errorf("reserve slot: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return tournaments.ErrTournamentFull
	}

	return nil
}

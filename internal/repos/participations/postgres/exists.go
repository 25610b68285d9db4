package participations

import (
	"database/sql"
	"fmt"
)

func (r *participationsRepo) Exists(tx *sql.Tx, tournamentID string, userID uint64) (bool, error) {
	var exists bool

	err := tx.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM participations
			WHERE tournament_id = $1 AND user_id = $2
		)
	`, tournamentID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check participation exists: %w", err)
	}

	return exists, nil
}

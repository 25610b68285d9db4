package participations

import (
	"database/sql"
	"fmt"

	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/participations"
)

func (r *participationsRepo) Delete(tx *sql.Tx, id string) error {
	res, err := tx.Exec(`
		DELETE FROM participations
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete participation: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return participations.ErrNotParticipating
	}

	return nil
}

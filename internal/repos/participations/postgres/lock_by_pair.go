package participations

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/participations"
)

func (r *participationsRepo) LockByPair(tx *sql.Tx, tournamentID string, userID uint64) (participations.Participation, error) {
	var p participations.Participation

	err := tx.QueryRow(`
		SELECT id, tournament_id, user_id, joined_at, refundable
		FROM participations
		WHERE tournament_id = $1
		  AND user_id = $2
		FOR UPDATE
	`, tournamentID, userID).Scan(&p.ID, &p.TournamentID, &p.UserID, &p.JoinedAt, &p.Refundable)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return participations.Participation{}, participations.ErrNotParticipating
		}

		return participations.Participation{}, fmt.Errorf("lock participation: %w", err)
	}

	return p, nil
}

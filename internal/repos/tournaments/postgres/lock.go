package tournaments

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/tournaments"
)

func (r *tournamentsRepo) Lock(tx *sql.Tx, id string) (tournaments.Tournament, error) {
	var t tournaments.Tournament

	err := tx.QueryRow(`
		SELECT id, name, entry_fee, max_participants, current_participants, start_time, status
		FROM tournaments
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(
		&t.ID, &t.Name, &t.EntryFee, &t.MaxParticipants,
		&t.CurrentParticipants, &t.StartTime, &t.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tournaments.Tournament{}, tournaments.ErrTournamentNotFound
		}

		return tournaments.Tournament{}, fmt.Errorf("lock tournament: %w", err)
	}

	return t, nil
}

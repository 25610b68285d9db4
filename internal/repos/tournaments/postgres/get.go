package tournaments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/tournaments"
)

func (r *tournamentsRepo) Get(ctx context.Context, id string) (tournaments.Tournament, error) {
	var t tournaments.Tournament

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, entry_fee, max_participants, current_participants, start_time, status
		FROM tournaments
		WHERE id = $1
	`, id).Scan(
		&t.ID, &t.Name, &t.EntryFee, &t.MaxParticipants,
		&t.CurrentParticipants, &t.StartTime, &t.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tournaments.Tournament{}, tournaments.ErrTournamentNotFound
		}

		return tournaments.Tournament{}, fmt.Errorf("get tournament: %w", err)
	}

	return t, nil
}

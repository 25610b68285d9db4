package tournaments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/tournaments"
)

func (r *tournamentsRepo) Occupancy(ctx context.Context, id string) (int, int, error) {
	var current, max int

	err := r.db.QueryRowContext(ctx, `
		SELECT current_participants, max_participants
		FROM tournaments
		WHERE id = $1
	`, id).Scan(&current, &max)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, tournaments.ErrTournamentNotFound
		}

		return 0, 0, fmt.Errorf("get occupancy: %w", err)
	}

	return current, max, nil
}

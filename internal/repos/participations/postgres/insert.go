package participations

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/participations"
)

func (r *participationsRepo) Insert(tx *sql.Tx, p participations.Participation) error {
	_, err := tx.Exec(`
		INSERT INTO participations (id, tournament_id, user_id, joined_at, refundable)
		VALUES ($1, $2, $3, $4, $5)
	`, p.ID, p.TournamentID, p.UserID, p.JoinedAt, p.Refundable)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return participations.ErrAlreadyJoined
		}

		return fmt.Errorf("insert participation: %w", err)
	}

	return nil
}

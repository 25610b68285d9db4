package entries

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/entries"
)

func (r *entriesRepo) Insert(tx *sql.Tx, e entries.Entry) error {
	_, err := tx.Exec(`
		INSERT INTO ledger_entries
			(id, user_id, amount, kind, status, external_payment_id, tournament_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.UserID, e.Amount, e.Kind, e.Status, e.ExternalPaymentID, e.TournamentID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return entries.ErrDuplicateExternalRef
		}

		return fmt.Errorf("insert ledger entry: %w", err)
	}

	return nil
}

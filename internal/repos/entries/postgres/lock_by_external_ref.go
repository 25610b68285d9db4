package entries

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/entries"
)

func (r *entriesRepo) LockByExternalRef(tx *sql.Tx, externalRef string) (entries.Entry, error) {
	var e entries.Entry

	err := tx.QueryRow(`
		SELECT id, user_id, amount, kind, status, external_payment_id, tournament_id, created_at
		FROM ledger_entries
		WHERE external_payment_id = $1
		FOR UPDATE
	`, externalRef).Scan(
		&e.ID, &e.UserID, &e.Amount, &e.Kind, &e.Status,
		&e.ExternalPaymentID, &e.TournamentID, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entries.Entry{}, entries.ErrEntryNotFound
		}

		return entries.Entry{}, fmt.Errorf("lock entry by external ref: %w", err)
	}

	return e, nil
}

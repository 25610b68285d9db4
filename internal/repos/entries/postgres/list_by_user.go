package entries

import (
	"context"
	"fmt"

	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/entries"
)

func (r *entriesRepo) ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]entries.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, amount, kind, status, external_payment_id, tournament_id, created_at
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []entries.Entry

	for rows.Next() {
		var e entries.Entry

		err = rows.Scan(
			&e.ID, &e.UserID, &e.Amount, &e.Kind, &e.Status,
			&e.ExternalPaymentID, &e.TournamentID, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}

		out = append(out, e)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return out, nil
}

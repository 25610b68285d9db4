package entries

import (
	"context"
	"fmt"
)

func (r *entriesRepo) SumCompletedByUser(ctx context.Context, userID uint64) (int64, error) {
	var sum int64

	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_entries
		WHERE user_id = $1
		  AND status = 'completed'
	`, userID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum completed entries: %w", err)
	}

	return sum, nil
}

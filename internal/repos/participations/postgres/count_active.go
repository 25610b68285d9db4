package participations

import (
	"context"
	"fmt"
)

func (r *participationsRepo) CountActive(ctx context.Context, tournamentID string) (int64, error) {
	var count int64

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM participations
		WHERE tournament_id = $1
	`, tournamentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count participations: %w", err)
	}

	return count, nil
}

package participations

import (
	"database/sql"

	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/participations"
)

var _ participations.Participations = (*participationsRepo)(nil)

type participationsRepo struct{ db *sql.DB }

func New(db *sql.DB) *participationsRepo {
	return &participationsRepo{db: db}
}

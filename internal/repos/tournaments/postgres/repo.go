package tournaments

import (
	"database/sql"

	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/tournaments"
)

var _ tournaments.Tournaments = (*tournamentsRepo)(nil)

type tournamentsRepo struct{ db *sql.DB }

func New(db *sql.DB) *tournamentsRepo {
	return &tournamentsRepo{db: db}
}

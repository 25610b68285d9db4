package entries

import (
	"database/sql"

	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/entries"
)

var _ entries.Entries = (*entriesRepo)(nil)

type entriesRepo struct{ db *sql.DB }

func New(db *sql.DB) *entriesRepo {
	return &entriesRepo{db: db}
}

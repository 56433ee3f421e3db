package services

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// CategoryMirror mirrors the categories lookup table. Unlike priorities
// the category set is administered in the table, so the seed only
// carries a minimal default set for fresh installations.
type CategoryMirror struct {
	*lookupMirror
}

func NewCategoryMirror(logger zerolog.Logger, pgPool *pgxpool.Pool) *CategoryMirror {
	return &CategoryMirror{
		lookupMirror: newLookupMirror(logger, pgPool, "categories", map[string]int64{
			"work":     1,
			"personal": 2,
			"other":    3,
		}),
	}
}

package services

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/avoronin/go-taskhub/internal/models"
)

// PriorityMirror mirrors the priorities lookup table. The seed rows
// match the fixed priority set, so the mirror works before the first
// refresh.
type PriorityMirror struct {
	*lookupMirror
}

func NewPriorityMirror(logger zerolog.Logger, pgPool *pgxpool.Pool) *PriorityMirror {
	return &PriorityMirror{
		lookupMirror: newLookupMirror(logger, pgPool, "priorities", map[string]int64{
			models.PriorityLow:    1,
			models.PriorityMedium: 2,
			models.PriorityHigh:   3,
		}),
	}
}

package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// lookupMirror keeps a two-way in-memory copy of an id/name lookup
// table. The name is the canonical external representation; the id is
// an internal cache used for storage. The mirror starts from its seed
// rows and is refreshed from the table at startup, so the two cannot
// drift within a single write.
type lookupMirror struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
	table  string

	mu     sync.RWMutex
	byName map[string]int64
	byID   map[int64]string
}

func newLookupMirror(logger zerolog.Logger, pgPool *pgxpool.Pool, table string, seed map[string]int64) *lookupMirror {
	byName := make(map[string]int64, len(seed))
	byID := make(map[int64]string, len(seed))
	for name, id := range seed {
		byName[name] = id
		byID[id] = name
	}
	return &lookupMirror{
		logger: logger,
		pgPool: pgPool,
		table:  table,
		byName: byName,
		byID:   byID,
	}
}

// Refresh replaces the mirror with the current table contents. An empty
// table leaves the seed rows in place.
func (m *lookupMirror) Refresh(ctx context.Context) error {
	// table is a compile-time constant, never user input.
	query := fmt.Sprintf("SELECT id, name FROM %s", m.table)
	rows, err := m.pgPool.Query(ctx, query)
	if err != nil {
		m.logger.Error().
			Err(err).
			Str("table", m.table).
			Msg("failed to select lookup rows")
		return err
	}
	defer rows.Close()

	byName := make(map[string]int64)
	byID := make(map[int64]string)
	for rows.Next() {
		var (
			id   int64
			name string
		)
		err = rows.Scan(&id, &name)
		if err != nil {
			m.logger.Error().
				Err(err).
				Str("table", m.table).
				Msg("failed to scan lookup row")
			return err
		}
		byName[name] = id
		byID[id] = name
	}

	err = rows.Err()
	if err != nil {
		m.logger.Error().
			Err(err).
			Str("table", m.table).
			Msg("failed to iterate over rows")
		return err
	}

	if len(byName) == 0 {
		m.logger.Warn().
			Str("table", m.table).
			Msg("lookup table is empty, keeping seed rows")
		return nil
	}

	m.mu.Lock()
	m.byName = byName
	m.byID = byID
	m.mu.Unlock()

	m.logger.Debug().
		Str("table", m.table).
		Int("count", len(byName)).
		Msg("refreshed lookup mirror")
	return nil
}

func (m *lookupMirror) IDForName(name string) (int64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byName[name]
	return id, ok
}

func (m *lookupMirror) NameForID(id int64) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name, ok := m.byID[id]
	return name, ok
}

// Package snapshot keeps the most recently loaded list in an in-memory DuckDB
// database so it can be inspected with read-only SQL.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/tinytelemetry/spdash/internal/snapshot/migrate"

	_ "github.com/duckdb/duckdb-go/v2"
)

// DefaultQueryTimeout bounds every query issued by the store.
const DefaultQueryTimeout = 30 * time.Second

// Store manages the in-memory DuckDB connection.
type Store struct {
	db           *sql.DB
	mu           sync.RWMutex
	QueryTimeout time.Duration

	attemptID string
	loadedAt  time.Time
}

// NewStore opens an in-memory database and applies the schema.
// An optional queryTimeout can be passed; it defaults to 30s.
func NewStore(queryTimeout ...time.Duration) (*Store, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("snapshot: open duckdb: %w", err)
	}
	// One connection keeps Replace and queries strictly ordered.
	db.SetMaxOpenConns(1)

	qt := DefaultQueryTimeout
	if len(queryTimeout) > 0 && queryTimeout[0] > 0 {
		qt = queryTimeout[0]
	}

	ctx, cancel := context.WithTimeout(context.Background(), qt)
	defer cancel()
	if err := migrate.NewRunner(db).Run(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("snapshot: migrate: %w", err)
	}

	return &Store{db: db, QueryTimeout: qt}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// queryCtx returns a context with the store's configured query timeout.
func (s *Store) queryCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.QueryTimeout)
}

// Loaded reports the attempt id and load time of the stored snapshot.
// The id is empty when nothing has been stored since the last Clear.
func (s *Store) Loaded() (attemptID string, loadedAt time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attemptID, s.loadedAt
}

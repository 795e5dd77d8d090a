package snapshot

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/tinytelemetry/spdash/internal/aggregate"
	"github.com/tinytelemetry/spdash/internal/dashboard"
	"github.com/tinytelemetry/spdash/internal/model"
)

// snapshotTables lists every table rewritten on Replace, in delete order.
var snapshotTables = []string{"list_rows", "list_values", "list_fields"}

// Replace swaps the stored data for snap in one transaction.
func (s *Store) Replace(snap dashboard.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("snapshot: begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range snapshotTables {
		// Table names are hardcoded constants, not user input.
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("snapshot: clear %s: %w", table, err)
		}
	}

	fieldStmt, err := tx.PrepareContext(ctx, "INSERT INTO list_fields (position, field_key, display_name) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("snapshot: prepare fields: %w", err)
	}
	defer fieldStmt.Close()
	for i, f := range snap.Fields {
		if _, err := fieldStmt.ExecContext(ctx, i, f.Key, f.DisplayName); err != nil {
			return fmt.Errorf("snapshot: insert field %s: %w", f.Key, err)
		}
	}

	valueStmt, err := tx.PrepareContext(ctx, "INSERT INTO list_values (row_idx, field_key, value) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("snapshot: prepare values: %w", err)
	}
	defer valueStmt.Close()

	rowStmt, err := tx.PrepareContext(ctx, "INSERT INTO list_rows (row_idx, label, category, minutes, attempt_id, loaded_at) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("snapshot: prepare rows: %w", err)
	}
	defer rowStmt.Close()

	res := snap.Aggregate()
	for i, row := range snap.Rows {
		for _, key := range snap.Schema.Fields {
			v, ok := row[key]
			var value sql.NullString
			if ok && v != nil {
				value = sql.NullString{String: model.FormatValue(v), Valid: true}
			}
			if _, err := valueStmt.ExecContext(ctx, i, key, value); err != nil {
				return fmt.Errorf("snapshot: insert value %d/%s: %w", i, key, err)
			}
		}
		category := aggregate.LabelOf(row, snap.Schema.CategoryField, snap.Schema.CategorySentinel)
		if _, err := rowStmt.ExecContext(ctx, i, res.Durations.Labels[i], category, res.Durations.Minutes[i], snap.AttemptID, snap.LoadedAt); err != nil {
			return fmt.Errorf("snapshot: insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("snapshot: commit: %w", err)
	}
	s.attemptID = snap.AttemptID
	s.loadedAt = snap.LoadedAt
	log.Printf("snapshot: stored %d rows (attempt %s)", len(snap.Rows), snap.AttemptID)
	return nil
}

// Clear empties every snapshot table.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx()
	defer cancel()
	for _, table := range snapshotTables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("snapshot: clear %s: %w", table, err)
		}
	}
	s.attemptID = ""
	s.loadedAt = time.Time{}
	return nil
}

// Observer returns a dashboard observer that mirrors every load into s.
func (s *Store) Observer() func(dashboard.Snapshot) {
	return func(snap dashboard.Snapshot) {
		if err := s.Replace(snap); err != nil {
			log.Printf("snapshot: replace: %v", err)
		}
	}
}

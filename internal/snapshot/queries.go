package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
)

// MaxQueryRows caps the rows returned by ExecuteQuery.
const MaxQueryRows = 1000

// ErrQueryRejected is wrapped by every read-only guard failure.
var ErrQueryRejected = errors.New("query rejected")

// dangerousKeywordPattern matches write or side-effect keywords at word
// boundaries, so "RESET" does not match "SET".
var dangerousKeywordPattern = regexp.MustCompile(
	`(?i)\b(INSERT|UPDATE|DELETE|DROP|CREATE|ALTER|TRUNCATE|COPY|ATTACH|DETACH|LOAD|EXPORT|IMPORT|INSTALL|CALL|EXECUTE|PRAGMA|SET|CHECKPOINT|VACUUM)\b`,
)

// blockCommentPattern matches C-style block comments (/* ... */).
var blockCommentPattern = regexp.MustCompile(`/\*[\s\S]*?\*/`)

// stripSQLComments removes -- line comments and /* */ block comments from a query.
func stripSQLComments(query string) string {
	cleaned := blockCommentPattern.ReplaceAllString(query, " ")
	var result strings.Builder
	for _, line := range strings.Split(cleaned, "\n") {
		if idx := strings.Index(line, "--"); idx >= 0 {
			line = line[:idx]
		}
		result.WriteString(line)
		result.WriteByte('\n')
	}
	return result.String()
}

// checkReadOnly rejects anything but a single SELECT/WITH statement.
func checkReadOnly(query string) error {
	if strings.Contains(query, ";") {
		return fmt.Errorf("%w: query must not contain semicolons", ErrQueryRejected)
	}
	stripped := strings.TrimSpace(stripSQLComments(query))
	upper := strings.ToUpper(stripped)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return fmt.Errorf("%w: only SELECT/WITH queries are allowed", ErrQueryRejected)
	}
	if match := dangerousKeywordPattern.FindString(stripped); match != "" {
		return fmt.Errorf("%w: disallowed keyword %s", ErrQueryRejected, strings.ToUpper(match))
	}
	return nil
}

// ExecuteQuery runs a read-only SQL query against the snapshot tables and
// returns at most MaxQueryRows rows as column maps.
func (s *Store) ExecuteQuery(ctx context.Context, query string) ([]map[string]any, error) {
	trimmed := strings.TrimSpace(query)
	if err := checkReadOnly(trimmed); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, s.QueryTimeout)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, trimmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results := make([]map[string]any, 0)
	for rows.Next() && len(results) < MaxQueryRows {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			log.Printf("snapshot: scan error (ExecuteQuery): %v", err)
			continue
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetSchemaDescription returns a human-readable description of the queryable tables.
func (s *Store) GetSchemaDescription() string {
	return `Table 'list_fields': position (INTEGER), field_key (VARCHAR), display_name (VARCHAR). ` +
		`Table 'list_values': row_idx (INTEGER), field_key (VARCHAR), value (VARCHAR, NULL when absent). ` +
		`Table 'list_rows': row_idx (INTEGER), label (VARCHAR), category (VARCHAR), minutes (INTEGER), ` +
		`attempt_id (VARCHAR), loaded_at (TIMESTAMP).`
}

// TableRowCounts returns the row count of each snapshot table.
func (s *Store) TableRowCounts() (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	counts := make(map[string]int64, len(snapshotTables))
	for _, table := range snapshotTables {
		var count int64
		// Table names are hardcoded constants, not user input.
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			return nil, fmt.Errorf("snapshot: count %s: %w", table, err)
		}
		counts[table] = count
	}
	return counts, nil
}

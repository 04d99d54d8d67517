package pointsource

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/pointwatch/internal/errors"
)

// SQLiteSource resolves point names from a shared configuration database.
type SQLiteSource struct {
	db *sql.DB
}

// NewSQLiteSource opens a SQLite-backed point source.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewSQLiteSource(dbPath string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	src := &SQLiteSource{db: db}
	if err := src.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return src, nil
}

func (s *SQLiteSource) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS points (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_id TEXT NOT NULL,
		name TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		UNIQUE(source_id, name)
	);
	CREATE INDEX IF NOT EXISTS idx_points_source ON points(source_id, position);
	`
	_, err := s.db.Exec(schema)
	return err
}

// AddPoint registers a point name for a source id at the given position.
// Mainly used by provisioning tooling and tests.
func (s *SQLiteSource) AddPoint(ctx context.Context, sourceID, name string, position int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO points (source_id, name, position) VALUES (?, ?, ?)
		 ON CONFLICT(source_id, name) DO UPDATE SET position = excluded.position`,
		sourceID, name, position)
	if err != nil {
		return fmt.Errorf("insert point: %w", err)
	}
	return nil
}

// RemovePoint deletes a point name for a source id.
func (s *SQLiteSource) RemovePoint(ctx context.Context, sourceID, name string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM points WHERE source_id = ? AND name = ?`, sourceID, name)
	if err != nil {
		return fmt.Errorf("delete point: %w", err)
	}
	return nil
}

// ListPointNames implements Source.
func (s *SQLiteSource) ListPointNames(ctx context.Context, sourceID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM points WHERE source_id = ? ORDER BY position, id`, sourceID)
	if err != nil {
		return nil, errors.WrapConfig(err, "query point names").WithContext("source_id", sourceID)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.WrapConfig(err, "scan point name")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapConfig(err, "iterate point names")
	}

	return normalizeNames(names), nil
}

// Close closes the underlying database.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

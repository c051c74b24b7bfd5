package cxxindex

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Snapshot kinds stored in the records table.
const (
	KindLocalHeader = "local_header"
	KindLocalSource = "local_source"
	KindEngine      = "engine_header"
)

// SnapshotRow is one persisted index record.
type SnapshotRow struct {
	Kind   string
	Record FileRecord
	Score  int
}

// SQLiteStore writes index snapshots to a SQLite database. Snapshots are an
// inspection aid; the rewrite pipeline never reads them back.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens/creates the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		root TEXT,
		dir TEXT,
		module_path TEXT,
		score INTEGER,
		PRIMARY KEY(kind, name)
	);
	CREATE INDEX IF NOT EXISTS idx_records_name ON records(name);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveSet replaces the stored snapshot with the contents of set.
func (s *SQLiteStore) SaveSet(set *IndexSet, scores ScoreTable) error {
	if set == nil {
		return errors.New("index set required")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM records`); err != nil {
		tx.Rollback()
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO records (kind, name, root, dir, module_path, score) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, part := range []struct {
		kind string
		idx  *Index
	}{
		{KindLocalHeader, set.LocalHeaders},
		{KindLocalSource, set.LocalSources},
		{KindEngine, set.Engine},
	} {
		for _, rec := range part.idx.Records() {
			score := scores.Score(rec.ModulePath)
			if _, err := stmt.Exec(part.kind, rec.Name, rec.Root, rec.Dir, rec.ModulePath, score); err != nil {
				tx.Rollback()
				return fmt.Errorf("save %s %s: %w", part.kind, rec.Name, err)
			}
		}
	}
	return tx.Commit()
}

// Lookup returns every stored row for name, ordered by kind.
func (s *SQLiteStore) Lookup(name string) ([]SnapshotRow, error) {
	rows, err := s.db.Query(`SELECT kind, name, root, dir, module_path, score FROM records WHERE name = ? ORDER BY kind`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SnapshotRow
	for rows.Next() {
		var row SnapshotRow
		if err := rows.Scan(&row.Kind, &row.Record.Name, &row.Record.Root, &row.Record.Dir, &row.Record.ModulePath, &row.Score); err != nil {
			return nil, err
		}
		row.Record.Ext = "h"
		if row.Kind == KindLocalSource {
			row.Record.Ext = "cpp"
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Count returns the number of stored rows of kind.
func (s *SQLiteStore) Count(kind string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM records WHERE kind = ?`, kind).Scan(&n)
	return n, err
}

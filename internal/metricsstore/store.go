// Package metricsstore implements the MetricsStore collaborator
// (spec.md §4.6): an append-only SQLite-backed log of index/update
// snapshots and their per-file CodeMetadata, used for historical
// reporting. Every operation's failure is logged and swallowed by the
// caller per the engine's non-fatal enrichment contract; this package
// itself always returns errors so the caller can decide how to log
// them, consistent with the rest of this module's error handling.
package metricsstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lytics/dev-agent/internal/stats"
)

// CodeMetadata is one file's per-snapshot enrichment record.
type CodeMetadata struct {
	FilePath     string
	CommitCount  int
	LastModified string
	AuthorCount  int
	LinesOfCode  int
	NumFunctions int
	NumImports   int
}

// Trigger distinguishes what produced a Snapshot.
type Trigger string

const (
	TriggerIndex  Trigger = "index"
	TriggerUpdate Trigger = "update"
)

// Snapshot is one append-only MetricsStore row.
type Snapshot struct {
	ID             int64
	RepositoryPath string
	Timestamp      time.Time
	Trigger        Trigger
	Stats          stats.DetailedStats
}

// Store persists Snapshots and CodeMetadata to a SQLite database file.
type Store struct {
	db *sql.DB
}

// Open creates (if needed) and opens the metrics database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("metricsstore: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("metricsstore: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	repository_path TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	trigger TEXT NOT NULL,
	stats_json TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS code_metadata (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	snapshot_id INTEGER NOT NULL REFERENCES snapshots(id),
	file_path TEXT NOT NULL,
	commit_count INTEGER NOT NULL,
	last_modified TEXT NOT NULL,
	author_count INTEGER NOT NULL,
	lines_of_code INTEGER NOT NULL,
	num_functions INTEGER NOT NULL,
	num_imports INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_repo ON snapshots(repository_path, timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_code_metadata_snapshot ON code_metadata(snapshot_id);
`

// RecordSnapshot appends a new snapshot row and returns its id.
func (s *Store) RecordSnapshot(repoPath string, trigger Trigger, st stats.DetailedStats) (int64, error) {
	payload, err := json.Marshal(st)
	if err != nil {
		return 0, fmt.Errorf("metricsstore: marshal stats: %w", err)
	}

	res, err := s.db.Exec(
		`INSERT INTO snapshots (repository_path, timestamp, trigger, stats_json) VALUES (?, ?, ?, ?)`,
		repoPath, time.Now().UTC().Format(time.RFC3339), string(trigger), string(payload),
	)
	if err != nil {
		return 0, fmt.Errorf("metricsstore: insert snapshot: %w", err)
	}
	return res.LastInsertId()
}

// AppendCodeMetadata attaches per-file metadata rows to an existing
// snapshot.
func (s *Store) AppendCodeMetadata(snapshotID int64, entries []CodeMetadata) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("metricsstore: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO code_metadata
			(snapshot_id, file_path, commit_count, last_modified, author_count, lines_of_code, num_functions, num_imports)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("metricsstore: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(snapshotID, e.FilePath, e.CommitCount, e.LastModified, e.AuthorCount, e.LinesOfCode, e.NumFunctions, e.NumImports); err != nil {
			return fmt.Errorf("metricsstore: insert code metadata for %s: %w", e.FilePath, err)
		}
	}
	return tx.Commit()
}

// GetLatestSnapshot returns the newest snapshot for repoPath, or nil if
// none exists.
func (s *Store) GetLatestSnapshot(repoPath string) (*Snapshot, error) {
	snaps, err := s.GetSnapshots(repoPath, 1)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	return &snaps[0], nil
}

// GetSnapshots returns up to limit snapshots for repoPath (or every
// repository when repoPath is empty), newest-first. limit <= 0 means
// unbounded.
func (s *Store) GetSnapshots(repoPath string, limit int) ([]Snapshot, error) {
	query := `SELECT id, repository_path, timestamp, trigger, stats_json FROM snapshots`
	var args []any
	if repoPath != "" {
		query += ` WHERE repository_path = ?`
		args = append(args, repoPath)
	}
	query += ` ORDER BY timestamp DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("metricsstore: query snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		var ts, trig, statsJSON string
		if err := rows.Scan(&snap.ID, &snap.RepositoryPath, &ts, &trig, &statsJSON); err != nil {
			return nil, fmt.Errorf("metricsstore: scan snapshot: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("metricsstore: parse snapshot timestamp: %w", err)
		}
		snap.Timestamp = parsed
		snap.Trigger = Trigger(trig)
		if err := json.Unmarshal([]byte(statsJSON), &snap.Stats); err != nil {
			return nil, fmt.Errorf("metricsstore: unmarshal snapshot stats: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// GetCodeMetadata returns up to limit CodeMetadata rows for a snapshot.
// limit <= 0 means unbounded.
func (s *Store) GetCodeMetadata(snapshotID int64, limit int) ([]CodeMetadata, error) {
	query := `
		SELECT file_path, commit_count, last_modified, author_count, lines_of_code, num_functions, num_imports
		FROM code_metadata WHERE snapshot_id = ? ORDER BY id ASC
	`
	args := []any{snapshotID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("metricsstore: query code metadata: %w", err)
	}
	defer rows.Close()

	var out []CodeMetadata
	for rows.Next() {
		var cm CodeMetadata
		if err := rows.Scan(&cm.FilePath, &cm.CommitCount, &cm.LastModified, &cm.AuthorCount, &cm.LinesOfCode, &cm.NumFunctions, &cm.NumImports); err != nil {
			return nil, fmt.Errorf("metricsstore: scan code metadata: %w", err)
		}
		out = append(out, cm)
	}
	return out, rows.Err()
}

// Close idempotently closes the underlying database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

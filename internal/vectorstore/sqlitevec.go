package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/lytics/dev-agent/internal/embedder"
)

// initVectorExtensionOnce registers the sqlite-vec extension with the
// process's sqlite3 driver exactly once, mirroring the teacher's
// InitVectorExtension (storage/vector_index.go), which the teacher also
// calls a single time at process start.
var initVectorExtensionOnce sync.Once

func initVectorExtension() {
	initVectorExtensionOnce.Do(sqlite_vec.Auto)
}

// SQLiteVecStore stores document text/metadata in an ordinary table and
// vectors in a sqlite-vec vec0 virtual table keyed by document id, ported
// from the teacher's CreateVectorIndex/UpdateVectorIndex delete-then-insert
// upsert pattern (storage/vector_index.go).
type SQLiteVecStore struct {
	dbPath   string
	db       *sql.DB
	embedder embedder.Embedder
}

// NewSQLiteVecStore builds a store backed by the sqlite database at
// dbPath, using emb to compute vectors for documents that don't already
// carry one.
func NewSQLiteVecStore(dbPath string, emb embedder.Embedder) *SQLiteVecStore {
	return &SQLiteVecStore{dbPath: dbPath, embedder: emb}
}

func (s *SQLiteVecStore) Initialize(ctx context.Context) error {
	initVectorExtension()

	db, err := sql.Open("sqlite3", s.dbPath)
	if err != nil {
		return fmt.Errorf("vectorstore: open %s: %w", s.dbPath, err)
	}
	s.db = db

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			metadata TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("vectorstore: create documents table: %w", err)
	}

	createVecSQL := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS vectors USING vec0(
			doc_id TEXT PRIMARY KEY,
			embedding float[%d]
		)
	`, s.embedder.Dimensions())
	if _, err := db.ExecContext(ctx, createVecSQL); err != nil {
		return fmt.Errorf("vectorstore: create vec0 table: %w", err)
	}

	return nil
}

func (s *SQLiteVecStore) AddDocuments(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	var toEmbed []string
	var toEmbedIdx []int
	for i, d := range docs {
		if d.Vector == nil {
			toEmbed = append(toEmbed, d.Text)
			toEmbedIdx = append(toEmbedIdx, i)
		}
	}
	if len(toEmbed) > 0 {
		vectors, err := s.embedder.Embed(ctx, toEmbed, embedder.ModePassage)
		if err != nil {
			return fmt.Errorf("vectorstore: embed batch: %w", err)
		}
		for i, idx := range toEmbedIdx {
			docs[idx].Vector = vectors[i]
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("vectorstore: begin tx: %w", err)
	}
	defer tx.Rollback()

	upsertDoc, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO documents (id, text, metadata) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("vectorstore: prepare upsert: %w", err)
	}
	defer upsertDoc.Close()

	deleteVec, err := tx.PrepareContext(ctx, `DELETE FROM vectors WHERE doc_id = ?`)
	if err != nil {
		return fmt.Errorf("vectorstore: prepare vector delete: %w", err)
	}
	defer deleteVec.Close()

	insertVec, err := tx.PrepareContext(ctx, `INSERT INTO vectors (doc_id, embedding) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("vectorstore: prepare vector insert: %w", err)
	}
	defer insertVec.Close()

	for _, d := range docs {
		metaJSON, err := json.Marshal(d.Metadata)
		if err != nil {
			return fmt.Errorf("vectorstore: marshal metadata for %s: %w", d.ID, err)
		}
		if _, err := upsertDoc.ExecContext(ctx, d.ID, d.Text, string(metaJSON)); err != nil {
			return fmt.Errorf("vectorstore: upsert document %s: %w", d.ID, err)
		}

		if _, err := deleteVec.ExecContext(ctx, d.ID); err != nil {
			return fmt.Errorf("vectorstore: delete stale vector %s: %w", d.ID, err)
		}
		embBytes, err := sqlite_vec.SerializeFloat32(d.Vector)
		if err != nil {
			return fmt.Errorf("vectorstore: serialize vector %s: %w", d.ID, err)
		}
		if _, err := insertVec.ExecContext(ctx, d.ID, embBytes); err != nil {
			return fmt.Errorf("vectorstore: insert vector %s: %w", d.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteVecStore) DeleteDocuments(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("vectorstore: begin tx: %w", err)
	}
	defer tx.Rollback()

	deleteDoc, err := tx.PrepareContext(ctx, `DELETE FROM documents WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("vectorstore: prepare document delete: %w", err)
	}
	defer deleteDoc.Close()

	deleteVec, err := tx.PrepareContext(ctx, `DELETE FROM vectors WHERE doc_id = ?`)
	if err != nil {
		return fmt.Errorf("vectorstore: prepare vector delete: %w", err)
	}
	defer deleteVec.Close()

	for _, id := range ids {
		if _, err := deleteDoc.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("vectorstore: delete document %s: %w", id, err)
		}
		if _, err := deleteVec.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("vectorstore: delete vector %s: %w", id, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteVecStore) Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error) {
	vectors, err := s.embedder.Embed(ctx, []string{query}, embedder.ModeQuery)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: embed query: %w", err)
	}
	queryBytes, err := sqlite_vec.SerializeFloat32(vectors[0])
	if err != nil {
		return nil, fmt.Errorf("vectorstore: serialize query vector: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	// Over-fetch when a metadata filter is set so post-filtering still has
	// enough candidates to fill the requested limit.
	fetchLimit := limit
	if len(opts.Filter) > 0 {
		fetchLimit = limit * 5
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_id, vec_distance_cosine(embedding, ?) AS distance
		FROM vectors
		ORDER BY distance
		LIMIT ?
	`, queryBytes, fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: query vectors: %w", err)
	}
	defer rows.Close()

	type hit struct {
		id       string
		distance float64
	}
	var hits []hit
	for rows.Next() {
		var h hit
		if err := rows.Scan(&h.id, &h.distance); err != nil {
			return nil, fmt.Errorf("vectorstore: scan vector row: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vectorstore: iterate vector rows: %w", err)
	}

	var results []SearchResult
	for _, h := range hits {
		if len(results) >= limit {
			break
		}

		var text, metaJSON string
		err := s.db.QueryRowContext(ctx, `SELECT text, metadata FROM documents WHERE id = ?`, h.id).Scan(&text, &metaJSON)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("vectorstore: fetch document %s: %w", h.id, err)
		}

		var metadata map[string]any
		if metaJSON != "" {
			if err := json.Unmarshal([]byte(metaJSON), &metadata); err != nil {
				return nil, fmt.Errorf("vectorstore: unmarshal metadata for %s: %w", h.id, err)
			}
		}

		if !matchesFilter(metadata, opts.Filter) {
			continue
		}

		score := float32(1 - h.distance)
		if score < opts.ScoreThreshold {
			continue
		}

		results = append(results, SearchResult{ID: h.id, Score: score, Text: text, Metadata: metadata})
	}

	return results, nil
}

func matchesFilter(metadata map[string]any, filter map[string]any) bool {
	for k, want := range filter {
		if got, ok := metadata[k]; !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func (s *SQLiteVecStore) GetStats(ctx context.Context) (Stats, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count); err != nil {
		return Stats{}, fmt.Errorf("vectorstore: count documents: %w", err)
	}
	return Stats{TotalDocuments: count}, nil
}

func (s *SQLiteVecStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Package sqlite is the persistent, directory-backed vector index.
//
// Each collection is a named row set in a single SQLite database file
// under the configured data directory. The exact on-disk format is an
// implementation detail; callers only rely on the logical operations.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite" // SQLite driver

	"docchat/internal/domain"
	"docchat/internal/errs"
	"docchat/internal/vectorstore"
)

// Store is a collection-scoped vector index backed by SQLite.
// Searches are exact brute-force scans ranked by cosine distance.
type Store struct {
	db      *sql.DB
	name    string
	path    string
	deleted bool
}

const schema = `
CREATE TABLE IF NOT EXISTS collections (
	name      TEXT PRIMARY KEY,
	next_id   INTEGER NOT NULL DEFAULT 0,
	dimension INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS records (
	collection TEXT NOT NULL REFERENCES collections(name) ON DELETE CASCADE,
	id         TEXT NOT NULL,
	seq        INTEGER NOT NULL,
	vector     BLOB NOT NULL,
	text       TEXT NOT NULL,
	metadata   TEXT NOT NULL,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_records_collection_seq ON records(collection, seq);
`

// Open opens (or creates) the database under dataDir and gets or
// creates the named collection.
func Open(dataDir, collection string) (*Store, error) {
	if collection == "" {
		return nil, errs.Configurationf("collection name must not be empty")
	}
	if dataDir == "" {
		dataDir = filepath.Join("data", "docchat")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "docchat.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	res, err := db.Exec("INSERT OR IGNORE INTO collections (name) VALUES (?)", collection)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating collection %s: %w", collection, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Printf("vectorstore: created collection %s", collection)
	} else {
		log.Printf("vectorstore: loaded collection %s", collection)
	}

	return &Store{db: db, name: collection, path: dbPath}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// Insert appends the embedded chunks, assigning each a fresh id scoped
// to this collection. Ids are allocated inside the insert transaction,
// so concurrent writers cannot observe duplicate assignments. An empty
// batch is a logged no-op, not an error.
func (s *Store) Insert(ctx context.Context, chunks []domain.EmbeddedChunk) error {
	if s.deleted {
		return vectorstore.ErrCollectionDeleted
	}
	if len(chunks) == 0 {
		log.Printf("vectorstore: nothing to insert into %s", s.name)
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Servicef("vectorstore", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var nextID int64
	var dimension int
	err = tx.QueryRowContext(ctx,
		"SELECT next_id, dimension FROM collections WHERE name = ?", s.name).
		Scan(&nextID, &dimension)
	if err == sql.ErrNoRows {
		return vectorstore.ErrCollectionDeleted
	}
	if err != nil {
		return errs.Servicef("vectorstore", err)
	}

	if dimension == 0 {
		dimension = len(chunks[0].Vector)
	}
	for _, c := range chunks {
		if len(c.Vector) != dimension {
			return errs.Configurationf("vector dimension %d does not match collection dimension %d", len(c.Vector), dimension)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (collection, id, seq, vector, text, metadata)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errs.Servicef("vectorstore", err)
	}
	defer stmt.Close()

	for i, c := range chunks {
		seq := nextID + int64(i)
		metadataJSON, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, s.name, vectorstore.RecordID(seq), seq,
			vectorToBytes(c.Vector), c.Text, string(metadataJSON)); err != nil {
			return errs.Servicef("vectorstore", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE collections SET next_id = ?, dimension = ? WHERE name = ?",
		nextID+int64(len(chunks)), dimension, s.name); err != nil {
		return errs.Servicef("vectorstore", err)
	}
	if err := tx.Commit(); err != nil {
		return errs.Servicef("vectorstore", err)
	}
	return nil
}

// Search scans the collection and returns up to k records ordered by
// ascending cosine distance. Ties rank by insertion order, keeping the
// ranking deterministic for a fixed collection state.
func (s *Store) Search(ctx context.Context, vector []float64, k int) ([]domain.RetrievalResult, error) {
	if s.deleted {
		return nil, vectorstore.ErrCollectionDeleted
	}
	if k <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, vector, text, metadata
		FROM records WHERE collection = ?
		ORDER BY seq
	`, s.name)
	if err != nil {
		return nil, errs.Servicef("vectorstore", err)
	}
	defer rows.Close()

	type scored struct {
		result domain.RetrievalResult
		seq    int64
	}
	var all []scored
	for rows.Next() {
		var (
			id           string
			seq          int64
			blob         []byte
			text         string
			metadataJSON string
		)
		if err := rows.Scan(&id, &seq, &blob, &text, &metadataJSON); err != nil {
			return nil, errs.Servicef("vectorstore", err)
		}
		var meta domain.Metadata
		if err := json.Unmarshal([]byte(metadataJSON), &meta); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata for %s: %w", id, err)
		}
		all = append(all, scored{
			result: domain.RetrievalResult{
				ID:       id,
				Text:     text,
				Metadata: meta,
				Distance: vectorstore.CosineDistance(bytesToVector(blob), vector),
			},
			seq: seq,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Servicef("vectorstore", err)
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].result.Distance != all[j].result.Distance {
			return all[i].result.Distance < all[j].result.Distance
		}
		return all[i].seq < all[j].seq
	})
	if k > len(all) {
		k = len(all)
	}
	results := make([]domain.RetrievalResult, 0, k)
	for _, sc := range all[:k] {
		results = append(results, sc.result)
	}
	return results, nil
}

// Stats reports the collection name and record count.
func (s *Store) Stats(ctx context.Context) (domain.CollectionStats, error) {
	if s.deleted {
		return domain.CollectionStats{}, vectorstore.ErrCollectionDeleted
	}
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM records WHERE collection = ?", s.name).Scan(&count)
	if err != nil {
		return domain.CollectionStats{}, errs.Servicef("vectorstore", err)
	}
	return domain.CollectionStats{Name: s.name, Count: count}, nil
}

// DeleteCollection irreversibly drops all records and the collection
// row, resetting the id counter. The store refuses further operations.
func (s *Store) DeleteCollection(ctx context.Context) error {
	if s.deleted {
		return vectorstore.ErrCollectionDeleted
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Servicef("vectorstore", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE collection = ?", s.name); err != nil {
		return errs.Servicef("vectorstore", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", s.name); err != nil {
		return errs.Servicef("vectorstore", err)
	}
	if err := tx.Commit(); err != nil {
		return errs.Servicef("vectorstore", err)
	}
	s.deleted = true
	log.Printf("vectorstore: deleted collection %s", s.name)
	return nil
}

// vectorToBytes packs a vector into a little-endian float64 blob.
func vectorToBytes(vector []float64) []byte {
	buf := make([]byte, len(vector)*8)
	for i, f := range vector {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func bytesToVector(data []byte) []float64 {
	vector := make([]float64, len(data)/8)
	for i := range vector {
		vector[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return vector
}

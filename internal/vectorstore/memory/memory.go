// Package memory is a process-local vector index, mostly useful for
// tests and throwaway sessions. It honours the same collection
// contract as the sqlite backend but persists nothing.
package memory

import (
	"context"
	"log"
	"sort"
	"sync"

	"docchat/internal/domain"
	"docchat/internal/errs"
	"docchat/internal/vectorstore"
)

type record struct {
	id   string
	seq  int64
	vec  []float64
	text string
	meta domain.Metadata
}

// Store is an in-memory vector index using brute-force cosine distance.
type Store struct {
	mu        sync.RWMutex
	name      string
	nextID    int64
	dimension int
	records   []record
	deleted   bool
}

// New creates an empty collection with the given name.
func New(name string) *Store {
	return &Store{name: name}
}

// Insert appends records, assigning fresh monotonically increasing ids.
// An empty batch is a logged no-op.
func (s *Store) Insert(ctx context.Context, chunks []domain.EmbeddedChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleted {
		return vectorstore.ErrCollectionDeleted
	}
	if len(chunks) == 0 {
		log.Printf("vectorstore: nothing to insert into %s", s.name)
		return nil
	}
	if s.dimension == 0 {
		s.dimension = len(chunks[0].Vector)
	}
	for _, c := range chunks {
		if len(c.Vector) != s.dimension {
			return errs.Configurationf("vector dimension %d does not match collection dimension %d", len(c.Vector), s.dimension)
		}
	}
	for _, c := range chunks {
		s.records = append(s.records, record{
			id:   vectorstore.RecordID(s.nextID),
			seq:  s.nextID,
			vec:  c.Vector,
			text: c.Text,
			meta: c.Metadata,
		})
		s.nextID++
	}
	return nil
}

// Search returns up to k records by ascending cosine distance, ties
// broken by insertion order.
func (s *Store) Search(ctx context.Context, vector []float64, k int) ([]domain.RetrievalResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.deleted {
		return nil, vectorstore.ErrCollectionDeleted
	}
	if k <= 0 || len(s.records) == 0 {
		return nil, nil
	}

	type scored struct {
		r        record
		distance float64
	}
	all := make([]scored, len(s.records))
	for i, r := range s.records {
		all[i] = scored{r: r, distance: vectorstore.CosineDistance(r.vec, vector)}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].distance != all[j].distance {
			return all[i].distance < all[j].distance
		}
		return all[i].r.seq < all[j].r.seq
	})
	if k > len(all) {
		k = len(all)
	}
	results := make([]domain.RetrievalResult, 0, k)
	for _, sc := range all[:k] {
		results = append(results, domain.RetrievalResult{
			ID:       sc.r.id,
			Text:     sc.r.text,
			Metadata: sc.r.meta,
			Distance: sc.distance,
		})
	}
	return results, nil
}

// Stats reports the collection name and record count.
func (s *Store) Stats(ctx context.Context) (domain.CollectionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.deleted {
		return domain.CollectionStats{}, vectorstore.ErrCollectionDeleted
	}
	return domain.CollectionStats{Name: s.name, Count: len(s.records)}, nil
}

// DeleteCollection drops all records and refuses further operations.
func (s *Store) DeleteCollection(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleted {
		return vectorstore.ErrCollectionDeleted
	}
	s.records = nil
	s.nextID = 0
	s.dimension = 0
	s.deleted = true
	return nil
}

// Close is a no-op for the in-memory backend.
func (s *Store) Close() error { return nil }

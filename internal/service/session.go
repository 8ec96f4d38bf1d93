// Package service wires the pipeline together behind an explicit
// session object owned by the caller.
package service

import (
	"context"
	"log"

	"docchat/internal/domain"
	"docchat/internal/loader"
)

// Answering is the answer-producing subset of the pipeline.
type Answering interface {
	Answer(ctx context.Context, query string, k int) (string, []domain.RetrievalResult, error)
}

// Loading reads documents from paths, reporting per-file skips.
type Loading interface {
	LoadAll(paths []string) ([]domain.Document, []loader.Skipped)
}

// Session holds the references that make up one retrieval session:
// loader, chunker, embedder, vector index and answerer. Lifecycle is
// explicit: the collection is created on first use and reset only by
// Reset. The session itself carries no chat history.
type Session struct {
	loader   Loading
	chunker  domain.Chunker
	embedder domain.Embedder
	index    domain.VectorIndex
	answerer Answering
	topK     int
}

func NewSession(l Loading, c domain.Chunker, e domain.Embedder, idx domain.VectorIndex, a Answering, topK int) *Session {
	if topK <= 0 {
		topK = 5
	}
	return &Session{loader: l, chunker: c, embedder: e, index: idx, answerer: a, topK: topK}
}

// ChunkStats summarizes the chunks produced by one ingestion batch.
type ChunkStats struct {
	Count      int
	TotalChars int
	AvgSize    int
	MinSize    int
	MaxSize    int
}

// IngestReport describes what one Ingest call accomplished.
type IngestReport struct {
	Loaded  int
	Skipped []loader.Skipped
	Chunks  ChunkStats
}

// Ingest loads the given files, chunks and embeds them, and persists
// the embedded chunks. Unreadable or unsupported files are skipped and
// reported; a remote or store failure aborts the remaining documents
// but keeps the progress already persisted.
func (s *Session) Ingest(ctx context.Context, paths []string) (*IngestReport, error) {
	docs, skipped := s.loader.LoadAll(paths)
	report := &IngestReport{Skipped: skipped}
	for _, sk := range skipped {
		log.Printf("ingest: skipping %s: %v", sk.Path, sk.Err)
	}

	// One document at a time, so a mid-batch failure keeps what was
	// already persisted.
	var sizes []int
	for _, doc := range docs {
		chunks := s.chunker.Chunk(doc.Content, doc.Metadata)
		if len(chunks) == 0 {
			report.Loaded++
			continue
		}
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}
		vectors, err := s.embedder.Embed(ctx, texts)
		if err != nil {
			return report, err
		}
		embedded := make([]domain.EmbeddedChunk, len(chunks))
		for i := range chunks {
			embedded[i] = domain.EmbeddedChunk{Chunk: chunks[i], Vector: vectors[i]}
		}
		if err := s.index.Insert(ctx, embedded); err != nil {
			return report, err
		}
		report.Loaded++
		for _, t := range texts {
			sizes = append(sizes, len([]rune(t)))
		}
	}

	report.Chunks = chunkStats(sizes)
	return report, nil
}

// Ask answers a question from the indexed documents, returning the
// answer text and the sources it drew on.
func (s *Session) Ask(ctx context.Context, query string) (string, []domain.RetrievalResult, error) {
	return s.answerer.Answer(ctx, query, s.topK)
}

// Stats reports the collection name and record count.
func (s *Session) Stats(ctx context.Context) (domain.CollectionStats, error) {
	return s.index.Stats(ctx)
}

// Reset irreversibly drops the collection. The session must be rebuilt
// before further ingestion.
func (s *Session) Reset(ctx context.Context) error {
	return s.index.DeleteCollection(ctx)
}

// Close releases the underlying store.
func (s *Session) Close() error {
	return s.index.Close()
}

func chunkStats(sizes []int) ChunkStats {
	if len(sizes) == 0 {
		return ChunkStats{}
	}
	st := ChunkStats{Count: len(sizes), MinSize: sizes[0], MaxSize: sizes[0]}
	for _, n := range sizes {
		st.TotalChars += n
		if n < st.MinSize {
			st.MinSize = n
		}
		if n > st.MaxSize {
			st.MaxSize = n
		}
	}
	st.AvgSize = st.TotalChars / len(sizes)
	return st
}

package domain

// Document is a single loaded source of text, produced by a loader.
// Metadata carries provenance (source path, format, page/row counts)
// and is immutable once produced.
type Document struct {
	Content  string
	Metadata Metadata
}

// Chunk is a bounded text segment derived from a document, the unit of
// indexing and retrieval. Its metadata is the document metadata merged
// with chunk_index, chunk_size and chunk_count.
type Chunk struct {
	Text     string
	Metadata Metadata
}

// EmbeddedChunk pairs a chunk with its embedding vector. All vectors
// produced in one session share the embedding model's output dimension.
type EmbeddedChunk struct {
	Chunk
	Vector []float64
}

// RetrievalResult is a matching indexed record. Distance is the index's
// dissimilarity metric: lower means more similar.
type RetrievalResult struct {
	ID       string
	Text     string
	Metadata Metadata
	Distance float64
}

// CollectionStats describes a collection's current size.
type CollectionStats struct {
	Name  string
	Count int
}

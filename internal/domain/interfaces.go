package domain

import "context"

// Chunker splits raw text into retrievable segments. Splitting is pure
// and deterministic; sizing constraints are validated at construction.
type Chunker interface {
	Chunk(text string, meta Metadata) []Chunk
	ChunkDocuments(docs []Document) []Chunk
}

// Embedder converts texts into fixed-length dense vectors via a remote
// model. Output vector i corresponds to input text i. Calls block until
// the service responds; cancellation is the caller's ctx.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	EmbedText(ctx context.Context, text string) ([]float64, error)
	Model() string
}

// VectorIndex persists embedded chunks in a named collection and serves
// k-nearest-neighbour queries over them.
type VectorIndex interface {
	// Insert appends records, assigning each a fresh id scoped to the
	// collection. An empty batch is a logged no-op.
	Insert(ctx context.Context, chunks []EmbeddedChunk) error

	// Search returns up to k results ordered by ascending distance.
	Search(ctx context.Context, vector []float64, k int) ([]RetrievalResult, error)

	Stats(ctx context.Context) (CollectionStats, error)

	// DeleteCollection irreversibly drops all records. The index must
	// not be used afterward without re-creation.
	DeleteCollection(ctx context.Context) error

	Close() error
}

// Retriever turns a query string into a ranked set of context chunks.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]RetrievalResult, error)
}

// Message is a role-tagged chat message for the generation boundary.
type Message struct {
	Role    string
	Content string
}

// GenerateOptions are the sampling parameters of a generation request.
type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
}

// Generator produces a single text completion from an ordered list of
// role-tagged messages.
type Generator interface {
	Generate(ctx context.Context, messages []Message, opts GenerateOptions) (string, error)
}

// Loader produces a Document from a file path.
type Loader interface {
	Load(path string) (Document, error)
}

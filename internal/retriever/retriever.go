// Package retriever turns a query string into ranked context chunks.
package retriever

import (
	"context"

	"docchat/internal/domain"
)

// Retriever composes an Embedder and a VectorIndex. It holds no state
// beyond the two references; every result set is transient.
type Retriever struct {
	embedder domain.Embedder
	index    domain.VectorIndex
}

func New(embedder domain.Embedder, index domain.VectorIndex) *Retriever {
	return &Retriever{embedder: embedder, index: index}
}

// Retrieve embeds the query and searches the index with the same k.
// An empty collection yields an empty result, not an error. No
// similarity threshold is applied here: deciding relevance is left to
// the answerer's prompt contract.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievalResult, error) {
	vector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.index.Search(ctx, vector, k)
}

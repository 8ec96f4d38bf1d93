package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/domain"
	"docchat/internal/errs"
	"docchat/internal/vectorstore"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), "test_collection")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func embedded(text string, vector []float64, meta domain.Metadata) domain.EmbeddedChunk {
	return domain.EmbeddedChunk{
		Chunk:  domain.Chunk{Text: text, Metadata: meta},
		Vector: vector,
	}
}

func TestInsertAssignsMonotonicIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, []domain.EmbeddedChunk{
		embedded("a", []float64{1, 0}, nil),
		embedded("b", []float64{0, 1}, nil),
	}))
	require.NoError(t, s.Insert(ctx, []domain.EmbeddedChunk{
		embedded("c", []float64{1, 1}, nil),
	}))

	results, err := s.Search(ctx, []float64{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	ids := make(map[string]bool)
	for _, r := range results {
		ids[r.ID] = true
	}
	assert.Equal(t, map[string]bool{"chunk_0": true, "chunk_1": true, "chunk_2": true}, ids)
}

func TestInsertEmptyBatchIsNoOp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, nil))
	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Count)
}

func TestInsertRejectsMismatchedDimension(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, []domain.EmbeddedChunk{embedded("a", []float64{1, 0, 0}, nil)}))
	err := s.Insert(ctx, []domain.EmbeddedChunk{embedded("b", []float64{1, 0}, nil)})
	require.Error(t, err)
	assert.True(t, errs.IsConfiguration(err))
}

func TestSearchRanksByAscendingDistance(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, []domain.EmbeddedChunk{
		embedded("python", []float64{0.1, 0.2, 0.3}, domain.Metadata{"topic": domain.String("python")}),
		embedded("javascript", []float64{0.2, 0.3, 0.4}, domain.Metadata{"topic": domain.String("javascript")}),
		embedded("ml", []float64{0.9, 0.8, 0.7}, domain.Metadata{"topic": domain.String("ml")}),
	}))

	results, err := s.Search(ctx, []float64{0.21, 0.31, 0.41}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "javascript", results[0].Text)
	assert.LessOrEqual(t, results[0].Distance, results[1].Distance)
	assert.Equal(t, "javascript", results[0].Metadata["topic"].String())
}

func TestSearchBounds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Empty collection yields an empty result, not an error.
	results, err := s.Search(ctx, []float64{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	require.NoError(t, s.Insert(ctx, []domain.EmbeddedChunk{
		embedded("a", []float64{1, 0}, nil),
		embedded("b", []float64{0, 1}, nil),
	}))

	results, err = s.Search(ctx, []float64{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = s.Search(ctx, []float64{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Text)
}

func TestSearchDeterministicForFixedState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, []domain.EmbeddedChunk{
		embedded("a", []float64{1, 0}, nil),
		embedded("b", []float64{1, 0}, nil), // identical vector: tie
		embedded("c", []float64{0, 1}, nil),
	}))

	first, err := s.Search(ctx, []float64{1, 0}, 3)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := s.Search(ctx, []float64{1, 0}, 3)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	// Ties rank by insertion order.
	assert.Equal(t, "chunk_0", first[0].ID)
	assert.Equal(t, "chunk_1", first[1].ID)
}

func TestMetadataSurvivesRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	meta := domain.Metadata{
		"source":      domain.String("doc.pdf"),
		"chunk_index": domain.Int(2),
		"parsed":      domain.Bool(true),
	}
	require.NoError(t, s.Insert(ctx, []domain.EmbeddedChunk{embedded("text", []float64{1}, meta)}))

	results, err := s.Search(ctx, []float64{1}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, meta, results[0].Metadata)
	assert.Equal(t, domain.KindNumber, results[0].Metadata["chunk_index"].Kind())
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir, "persist")
	require.NoError(t, err)
	require.NoError(t, s.Insert(ctx, []domain.EmbeddedChunk{embedded("kept", []float64{1, 0}, nil)}))
	require.NoError(t, s.Close())

	s2, err := Open(dir, "persist")
	require.NoError(t, err)
	defer s2.Close()

	stats, err := s2.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Count)

	// Counter continues instead of reusing ids.
	require.NoError(t, s2.Insert(ctx, []domain.EmbeddedChunk{embedded("next", []float64{0, 1}, nil)}))
	results, err := s2.Search(ctx, []float64{0, 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, "chunk_1", results[0].ID)
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "test_collection", stats.Name)
	assert.Equal(t, 0, stats.Count)

	require.NoError(t, s.Insert(ctx, []domain.EmbeddedChunk{embedded("a", []float64{1}, nil)}))
	stats, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Count)
}

func TestDeleteCollectionRefusesFurtherUse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, []domain.EmbeddedChunk{embedded("a", []float64{1}, nil)}))
	require.NoError(t, s.DeleteCollection(ctx))

	err := s.Insert(ctx, []domain.EmbeddedChunk{embedded("b", []float64{1}, nil)})
	assert.ErrorIs(t, err, vectorstore.ErrCollectionDeleted)

	_, err = s.Search(ctx, []float64{1}, 1)
	assert.ErrorIs(t, err, vectorstore.ErrCollectionDeleted)

	_, err = s.Stats(ctx)
	assert.ErrorIs(t, err, vectorstore.ErrCollectionDeleted)
}

func TestDeleteCollectionResetsCounter(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir, "reset")
	require.NoError(t, err)
	require.NoError(t, s.Insert(ctx, []domain.EmbeddedChunk{
		embedded("a", []float64{1}, nil),
		embedded("b", []float64{1}, nil),
	}))
	require.NoError(t, s.DeleteCollection(ctx))
	require.NoError(t, s.Close())

	// Re-creating the collection starts the counter over.
	s2, err := Open(dir, "reset")
	require.NoError(t, err)
	defer s2.Close()
	require.NoError(t, s2.Insert(ctx, []domain.EmbeddedChunk{embedded("fresh", []float64{1}, nil)}))
	results, err := s2.Search(ctx, []float64{1}, 1)
	require.NoError(t, err)
	assert.Equal(t, "chunk_0", results[0].ID)
}

package answerer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/domain"
)

type fakeRetriever struct {
	results []domain.RetrievalResult
	err     error
	lastK   int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievalResult, error) {
	f.lastK = k
	return f.results, f.err
}

type fakeGenerator struct {
	response string
	err      error
	called   int
	messages []domain.Message
	opts     domain.GenerateOptions
}

func (f *fakeGenerator) Generate(ctx context.Context, messages []domain.Message, opts domain.GenerateOptions) (string, error) {
	f.called++
	f.messages = messages
	f.opts = opts
	return f.response, f.err
}

func TestAnswerRefusesOnEmptyRetrieval(t *testing.T) {
	gen := &fakeGenerator{response: "should never be used"}
	a := New(&fakeRetriever{}, gen, domain.GenerateOptions{})

	// The refusal is fixed and the generator is never reached,
	// regardless of query content.
	for _, q := range []string{"what is in the docs?", "tell me about the weather"} {
		text, sources, err := a.Answer(context.Background(), q, 5)
		require.NoError(t, err)
		assert.Equal(t, RefusalMessage, text)
		assert.Empty(t, sources)
	}
	assert.Zero(t, gen.called)
}

func TestAnswerGroundsGenerationInContext(t *testing.T) {
	sources := []domain.RetrievalResult{
		{ID: "chunk_0", Text: "Soup needs salt.", Distance: 0.1},
		{ID: "chunk_1", Text: "Bread needs flour.", Distance: 0.2},
	}
	gen := &fakeGenerator{response: "Salt, per the recipe."}
	a := New(&fakeRetriever{results: sources}, gen, domain.GenerateOptions{Temperature: 0.3, MaxTokens: 500})

	text, got, err := a.Answer(context.Background(), "What does soup need?", 2)
	require.NoError(t, err)
	assert.Equal(t, "Salt, per the recipe.", text)
	assert.Equal(t, sources, got)

	require.Equal(t, 1, gen.called)
	require.Len(t, gen.messages, 2)
	assert.Equal(t, "system", gen.messages[0].Role)
	assert.Equal(t, "user", gen.messages[1].Role)

	prompt := gen.messages[1].Content
	// Context chunks appear in ranking order, separated by a blank line.
	assert.Contains(t, prompt, "Soup needs salt.\n\nBread needs flour.")
	assert.Contains(t, prompt, "What does soup need?")
	assert.Less(t, strings.Index(prompt, "Soup needs salt."), strings.Index(prompt, "Bread needs flour."))

	assert.Equal(t, 0.3, gen.opts.Temperature)
	assert.Equal(t, 500, gen.opts.MaxTokens)
}

func TestAnswerDefaultsTopK(t *testing.T) {
	r := &fakeRetriever{}
	a := New(r, &fakeGenerator{}, domain.GenerateOptions{})

	_, _, err := a.Answer(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTopK, r.lastK)
}

func TestAnswerPropagatesRetrieverError(t *testing.T) {
	wantErr := errors.New("retrieval failed")
	gen := &fakeGenerator{}
	a := New(&fakeRetriever{err: wantErr}, gen, domain.GenerateOptions{})

	_, _, err := a.Answer(context.Background(), "q", 5)
	assert.ErrorIs(t, err, wantErr)
	assert.Zero(t, gen.called)
}

func TestAnswerPropagatesGeneratorError(t *testing.T) {
	wantErr := errors.New("generation failed")
	a := New(
		&fakeRetriever{results: []domain.RetrievalResult{{Text: "context"}}},
		&fakeGenerator{err: wantErr},
		domain.GenerateOptions{})

	_, _, err := a.Answer(context.Background(), "q", 5)
	assert.ErrorIs(t, err, wantErr)
}

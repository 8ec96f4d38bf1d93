// Package answerer generates answers constrained to retrieved context.
package answerer

import (
	"context"
	"fmt"
	"strings"

	"docchat/internal/domain"
)

// DefaultTopK is how many context chunks an answer draws on by default.
const DefaultTopK = 5

// RefusalMessage is returned verbatim when retrieval comes back empty.
// No generation call is made in that case: an empty context must never
// reach the generator.
const RefusalMessage = "Sorry, I couldn't find anything related to that question in the documents you loaded. " +
	"I can only answer using the contents of your ingested documents. " +
	"Please ask about the documents you have provided."

// systemContract pins the generator to the supplied context. It is a
// fixed contract with three mutually exclusive response modes: answer
// from context, admit the context lacks the answer, or decline
// off-topic questions. It is not user-configurable.
const systemContract = "You are a document-grounded reading assistant. " +
	"Use ONLY the information in the context supplied with each question. " +
	"Never introduce information from outside the context."

const promptTemplate = `Answer the question using only the context below.

IMPORTANT RULES:
1. If the context does not contain the answer, reply exactly: "That information is not in the loaded documents. I can only answer using the documents you have provided."
2. NEVER use information from outside the context.
3. If the question is unrelated to the documents (for example the weather, recipes, or general trivia), reply exactly: "That question is not related to the loaded documents. I can only answer using the contents of the documents you have provided."

Context:
%s

Question: %s

Answer:`

// Answerer composes a Retriever with a Generator under the grounding
// contract. It keeps no document state and no memory of prior turns;
// multi-turn context is the caller's responsibility to fold into query.
type Answerer struct {
	retriever domain.Retriever
	generator domain.Generator
	opts      domain.GenerateOptions
}

func New(retriever domain.Retriever, generator domain.Generator, opts domain.GenerateOptions) *Answerer {
	return &Answerer{retriever: retriever, generator: generator, opts: opts}
}

// Answer retrieves up to k context chunks for the query and conditions
// a single generation call on them. Empty retrieval short-circuits to
// the fixed refusal without touching the generator. The generated text
// is returned unmodified together with the exact sources used.
func (a *Answerer) Answer(ctx context.Context, query string, k int) (string, []domain.RetrievalResult, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	sources, err := a.retriever.Retrieve(ctx, query, k)
	if err != nil {
		return "", nil, err
	}
	if len(sources) == 0 {
		return RefusalMessage, nil, nil
	}

	texts := make([]string, len(sources))
	for i, s := range sources {
		texts[i] = s.Text
	}
	contextBlock := strings.Join(texts, "\n\n")

	messages := []domain.Message{
		{Role: "system", Content: systemContract},
		{Role: "user", Content: fmt.Sprintf(promptTemplate, contextBlock, query)},
	}
	text, err := a.generator.Generate(ctx, messages, a.opts)
	if err != nil {
		return "", nil, err
	}
	return text, sources, nil
}

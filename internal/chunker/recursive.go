package chunker

import (
	"strings"
	"unicode/utf8"

	"docchat/internal/domain"
	"docchat/internal/errs"
)

// DefaultChunkSize is the default chunk size in characters.
const DefaultChunkSize = 500

// DefaultOverlap is the default overlap between chunks in characters.
const DefaultOverlap = 50

// defaultSeparators are tried coarsest first: paragraph break, line
// break, sentence-ending punctuation, comma, space, then raw character
// boundary, which guarantees termination for un-splittable text.
var defaultSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", ", ", " ", ""}

// Recursive splits text along a separator hierarchy and greedily packs
// the resulting segments into chunks of at most chunkSize characters,
// carrying an overlap of trailing segments across chunk boundaries.
type Recursive struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewRecursive validates the sizing parameters and returns a chunker.
// Requires 0 <= overlap < chunkSize.
func NewRecursive(chunkSize, overlap int) (*Recursive, error) {
	if chunkSize <= 0 {
		return nil, errs.Configurationf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, errs.Configurationf("overlap must satisfy 0 <= overlap < chunk size, got overlap=%d chunk_size=%d", overlap, chunkSize)
	}
	return &Recursive{chunkSize: chunkSize, overlap: overlap, separators: defaultSeparators}, nil
}

// Chunk splits text into chunks carrying meta merged with per-chunk
// bookkeeping. Empty or whitespace-only input yields no chunks. The
// output is fully determined by the input and configuration.
func (c *Recursive) Chunk(text string, meta domain.Metadata) []domain.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	pieces := c.split(text, c.separators)
	texts := c.pack(pieces)
	chunks := make([]domain.Chunk, 0, len(texts))
	for i, t := range texts {
		chunks = append(chunks, domain.Chunk{
			Text: t,
			Metadata: meta.Merge(domain.Metadata{
				"chunk_index": domain.Int(i),
				"chunk_size":  domain.Int(utf8.RuneCountInString(t)),
				"chunk_count": domain.Int(len(texts)),
			}),
		})
	}
	return chunks
}

// ChunkDocuments chunks each document and concatenates the results,
// preserving per-document metadata.
func (c *Recursive) ChunkDocuments(docs []domain.Document) []domain.Chunk {
	var all []domain.Chunk
	for _, d := range docs {
		all = append(all, c.Chunk(d.Content, d.Metadata)...)
	}
	return all
}

// split recursively cuts text into pieces no longer than chunkSize.
// Each piece keeps its trailing separator so the document order and
// content are preserved through packing.
func (c *Recursive) split(text string, separators []string) []string {
	sep := separators[len(separators)-1]
	var rest []string
	for i, s := range separators {
		if s == "" || strings.Contains(text, s) {
			sep = s
			rest = separators[i+1:]
			break
		}
	}

	var out []string
	for _, piece := range splitAfter(text, sep) {
		if utf8.RuneCountInString(piece) <= c.chunkSize {
			out = append(out, piece)
			continue
		}
		if len(rest) == 0 {
			// No finer separator left; keep the oversized piece.
			out = append(out, piece)
			continue
		}
		out = append(out, c.split(piece, rest)...)
	}
	return out
}

// pack greedily merges pieces into chunks of at most chunkSize
// characters. When a chunk is emitted, trailing pieces totalling at
// most overlap characters are retained as the prefix of the next chunk.
func (c *Recursive) pack(pieces []string) []string {
	var chunks []string
	var current []string
	total := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		text := strings.TrimSpace(strings.Join(current, ""))
		if text != "" {
			chunks = append(chunks, text)
		}
	}

	for _, p := range pieces {
		n := utf8.RuneCountInString(p)
		if total+n > c.chunkSize && total > 0 {
			flush()
			// Retain a suffix of the emitted pieces as overlap.
			for total > c.overlap || (total+n > c.chunkSize && total > 0) {
				total -= utf8.RuneCountInString(current[0])
				current = current[1:]
			}
		}
		current = append(current, p)
		total += n
	}
	flush()
	return chunks
}

// splitAfter splits text on sep keeping the separator attached to the
// preceding piece. An empty separator splits into single characters.
func splitAfter(text, sep string) []string {
	if sep == "" {
		runes := []rune(text)
		out := make([]string, len(runes))
		for i, r := range runes {
			out[i] = string(r)
		}
		return out
	}
	pieces := strings.SplitAfter(text, sep)
	// SplitAfter yields a trailing empty piece when text ends with sep.
	if len(pieces) > 0 && pieces[len(pieces)-1] == "" {
		pieces = pieces[:len(pieces)-1]
	}
	return pieces
}

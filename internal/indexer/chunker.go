package indexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/badi-al-zaman/ragchat/internal/corpus"
)

// Chunker splits documents into overlapping fixed-size text windows.
// Sizes are measured in runes (not bytes) for consistency with embedding
// token estimation.
type Chunker struct {
	maxSize int // Max runes per chunk
	overlap int // Runes repeated from the previous chunk at each cut
}

// NewChunker creates a chunker with the given window size and overlap.
func NewChunker(maxSize, overlap int) (*Chunker, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("max chunk size must be positive, got %d", maxSize)
	}
	if overlap < 0 || overlap >= maxSize {
		return nil, fmt.Errorf("overlap must be in [0, %d), got %d", maxSize, overlap)
	}
	return &Chunker{maxSize: maxSize, overlap: overlap}, nil
}

// Chunk splits a document into ordered chunks. It is pure and
// deterministic. An empty document yields zero chunks; a document shorter
// than the window yields exactly one. Each chunk after the first begins
// with the trailing overlap runes of the previous one, so concatenating
// the chunks with the overlap prefix stripped reconstructs the content.
func (c *Chunker) Chunk(doc corpus.Document) []Chunk {
	runes := []rune(doc.Content)
	if len(runes) == 0 {
		return nil
	}

	var chunks []Chunk
	start := 0
	index := 0

	for start < len(runes) {
		end := start + c.maxSize

		if end >= len(runes) {
			chunks = append(chunks, c.newChunk(doc, index, string(runes[start:])))
			break
		}

		split := start + c.splitPoint(runes[start:end])
		chunks = append(chunks, c.newChunk(doc, index, string(runes[start:split])))
		index++

		next := split - c.overlap
		if next <= start {
			// Degenerate window (chunk no longer than the overlap):
			// drop the overlap to guarantee forward progress.
			next = split
		}
		start = next
	}

	return chunks
}

// splitPoint returns the rune offset to cut a full window at, preferring
// the largest structural boundary available: paragraph break, then line
// break, then sentence end, then word gap. A window with no boundary at
// all is cut hard at the window size.
func (c *Chunker) splitPoint(window []rune) int {
	s := string(window)

	boundaries := []string{"\n\n", "\n", ". ", " "}
	for _, sep := range boundaries {
		if i := strings.LastIndex(s, sep); i > 0 {
			// Cut after the separator so it stays with the leading chunk.
			return utf8.RuneCountInString(s[:i+len(sep)])
		}
	}

	return len(window)
}

func (c *Chunker) newChunk(doc corpus.Document, index int, text string) Chunk {
	return Chunk{
		ID:    fmt.Sprintf("%s#%d", doc.ID, index),
		Index: index,
		Title: doc.Title,
		Text:  text,
		Meta:  doc.Metadata,
	}
}

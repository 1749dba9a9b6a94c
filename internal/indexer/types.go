package indexer

import "github.com/badi-al-zaman/ragchat/internal/corpus"

// Chunk is a bounded text segment derived from a document.
// ID is deterministic: "<document id>#<index>". Re-chunking the same
// document always produces identical IDs and text.
type Chunk struct {
	ID    string          // "<doc id>#<index>"
	Index int             // Chunk index within document (starts at 0)
	Title string          // Inherited from the parent document
	Text  string          // Chunk text content
	Meta  corpus.Metadata // Parent document source metadata
}

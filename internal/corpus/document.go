package corpus

import "context"

// Metadata carries the source identity of a document.
// Hash is a sha256 hex digest of the content, used for change detection.
type Metadata struct {
	FileName string `json:"file_name"`
	FilePath string `json:"file_path"`
	Hash     string `json:"hash"`
}

// Document is an immutable raw text input to the indexing pipeline.
// ID is stable across loads (the file path relative to the corpus root).
type Document struct {
	ID       string
	Title    string
	Content  string
	Metadata Metadata
}

// Source enumerates raw documents. Implementations decide how documents
// are discovered; consumers only see the Document shape.
type Source interface {
	Load(ctx context.Context) ([]Document, error)
}

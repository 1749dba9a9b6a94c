package rag

// AskRequest is a one-shot retrieval-augmented question.
type AskRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

// SourceRef identifies a chunk that contributed to an answer.
type SourceRef struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
}

// AskResponse is the generated answer plus the sources it drew from.
type AskResponse struct {
	Answer  string      `json:"answer"`
	Sources []SourceRef `json:"sources"`
}

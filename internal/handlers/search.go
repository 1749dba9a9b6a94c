package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/badi-al-zaman/ragchat/internal/contextutil"
	"github.com/badi-al-zaman/ragchat/internal/retriever"
)

// SearchHandler exposes raw semantic search over the indexed corpus.
type SearchHandler struct {
	retriever retriever.Retriever
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(r retriever.Retriever) *SearchHandler {
	return &SearchHandler{retriever: r}
}

// SearchRequest represents the HTTP request payload for semantic search.
type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// SearchResultResponse represents a single search hit.
type SearchResultResponse struct {
	ID         string         `json:"id"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata"`
	Similarity float64        `json:"similarity"`
}

// SearchResponse represents the HTTP response payload for semantic search.
type SearchResponse struct {
	Results []SearchResultResponse `json:"results"`
}

// ServeHTTP handles POST /api/rag/search.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	results, err := h.retriever.Retrieve(ctx, req.Query, req.TopK)
	if err != nil {
		logger.ErrorContext(ctx, "search failed", "error", err)
		writeError(w, http.StatusInternalServerError, unavailableMessage)
		return
	}

	resp := SearchResponse{Results: make([]SearchResultResponse, 0, len(results))}
	for _, result := range results {
		resp.Results = append(resp.Results, SearchResultResponse{
			ID:         result.ID,
			Content:    result.Content,
			Metadata:   result.Metadata,
			Similarity: result.Similarity,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

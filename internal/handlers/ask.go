package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/badi-al-zaman/ragchat/internal/contextutil"
	"github.com/badi-al-zaman/ragchat/internal/rag"
)

// AskHandler handles one-shot RAG queries without session state.
type AskHandler struct {
	ragEngine rag.Engine
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(ragEngine rag.Engine) *AskHandler {
	return &AskHandler{ragEngine: ragEngine}
}

// AskRequest represents the HTTP request payload for RAG queries.
// This mirrors the rag.AskRequest but is defined here for HTTP layer separation.
type AskRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

// AskResponse represents the HTTP response payload for RAG queries.
type AskResponse struct {
	Answer  string           `json:"answer"`
	Sources []SourceResponse `json:"sources"`
}

// SourceResponse identifies a chunk that contributed to the answer.
type SourceResponse struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
}

// ServeHTTP handles POST /api/rag/ask.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	result, err := h.ragEngine.Ask(ctx, rag.AskRequest{
		Question: req.Question,
		TopK:     req.TopK,
	})
	if err != nil {
		logger.ErrorContext(ctx, "RAG query failed", "error", err)
		writeError(w, http.StatusInternalServerError, unavailableMessage)
		return
	}

	resp := AskResponse{
		Answer:  result.Answer,
		Sources: make([]SourceResponse, 0, len(result.Sources)),
	}
	for _, src := range result.Sources {
		resp.Sources = append(resp.Sources, SourceResponse{
			ID:         src.ID,
			Title:      src.Title,
			Similarity: src.Similarity,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

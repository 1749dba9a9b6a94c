package handlers

import (
	"context"
	"net/http"

	"github.com/badi-al-zaman/ragchat/internal/contextutil"
	"github.com/badi-al-zaman/ragchat/internal/indexer"
)

// IndexHandler handles HTTP requests for triggering re-indexing.
type IndexHandler struct {
	pipeline *indexer.Pipeline
}

// NewIndexHandler creates a new IndexHandler.
func NewIndexHandler(pipeline *indexer.Pipeline) *IndexHandler {
	return &IndexHandler{pipeline: pipeline}
}

// IndexResponse represents the response from the index endpoint.
type IndexResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ServeHTTP handles POST /api/rag/index. Indexing runs in the background;
// the force query parameter re-embeds documents whose content hash is
// unchanged.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	force := r.URL.Query().Get("force") == "true"
	logger.InfoContext(ctx, "indexing triggered via API", "force", force)

	// Background context so indexing survives the HTTP request.
	go func() {
		indexCtx := contextutil.WithLogger(context.Background(), logger)
		if err := h.pipeline.IndexAll(indexCtx, force); err != nil {
			logger.ErrorContext(indexCtx, "indexing completed with errors", "error", err)
			return
		}
		logger.InfoContext(indexCtx, "indexing completed successfully")
	}()

	message := "Indexing started. Check server logs for progress."
	if force {
		message = "Force re-indexing started. Check server logs for progress."
	}
	writeJSON(w, http.StatusAccepted, IndexResponse{
		Message: message,
		Status:  "accepted",
	})
}

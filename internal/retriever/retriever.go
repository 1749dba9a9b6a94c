package retriever

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/badi-al-zaman/ragchat/internal/contextutil"
	"github.com/badi-al-zaman/ragchat/internal/vectorstore"
)

//go:generate go run go.uber.org/mock/mockgen@latest -source=retriever.go -destination=mocks/mock_retriever.go -package=mocks

// SearchResult is a single retrieved chunk with its similarity score.
type SearchResult struct {
	ID         string
	Content    string
	Metadata   map[string]any
	Similarity float64
}

// Retriever finds the chunks most semantically similar to a query.
type Retriever interface {
	// Retrieve embeds the query and returns up to topK results ordered by
	// descending similarity. topK <= 0 uses the retriever's default.
	Retrieve(ctx context.Context, query string, topK int) ([]SearchResult, error)
}

// Embedder generates vectors for query texts. It must be the same embedding
// function used at index time.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// IndexBuilder populates the vector store from the corpus.
type IndexBuilder interface {
	IndexAll(ctx context.Context, force bool) error
}

type vectorRetriever struct {
	embedder    Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	builder     IndexBuilder
	defaultTopK int

	buildMu sync.Mutex
	built   bool
}

// New creates a retriever over the given vector store collection.
// builder may be nil to disable lazy index construction.
func New(
	embedder Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
	builder IndexBuilder,
	defaultTopK int,
) Retriever {
	if defaultTopK <= 0 {
		defaultTopK = 3
	}
	return &vectorRetriever{
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		builder:     builder,
		defaultTopK: defaultTopK,
	}
}

// Retrieve embeds the query and searches the vector store.
// An empty or whitespace-only query returns no results without calling the
// embedding service.
func (r *vectorRetriever) Retrieve(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return nil, nil
	}

	if topK <= 0 {
		topK = r.defaultTopK
	}

	if err := r.ensureIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to build index: %w", err)
	}

	embeddings, err := r.embedder.EmbedTexts(ctx, []string{normalized})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}

	results, err := r.vectorStore.Search(ctx, r.collection, embeddings[0], topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search vector store: %w", err)
	}

	searchResults := make([]SearchResult, 0, len(results))
	for _, result := range results {
		id, _ := result.Meta["id"].(string)
		if id == "" {
			id = result.PointID
		}
		content, _ := result.Meta["content"].(string)
		searchResults = append(searchResults, SearchResult{
			ID:         id,
			Content:    content,
			Metadata:   result.Meta,
			Similarity: float64(result.Score),
		})
	}

	logger.DebugContext(ctx, "retrieval completed", "query_length", len(normalized), "results", len(searchResults), "top_k", topK)
	return searchResults, nil
}

// ensureIndex builds the index once if the vector store is empty.
// The build runs with force set so documents already recorded in SQLite are
// re-embedded after the store itself was wiped.
func (r *vectorRetriever) ensureIndex(ctx context.Context) error {
	if r.builder == nil {
		return nil
	}

	r.buildMu.Lock()
	defer r.buildMu.Unlock()

	if r.built {
		return nil
	}

	count, err := r.vectorStore.Count(ctx, r.collection)
	if err != nil {
		return fmt.Errorf("failed to count vectors: %w", err)
	}

	if count == 0 {
		logger := contextutil.LoggerFromContext(ctx)
		logger.InfoContext(ctx, "vector store empty, building index")
		if err := r.builder.IndexAll(ctx, true); err != nil {
			return err
		}
	}

	r.built = true
	return nil
}

package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks github.com/badi-al-zaman/ragchat/internal/vectorstore VectorStore

import "context"

// Point represents a vector point with its payload.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a single hit from a similarity search.
// Score is the similarity reported by the store; for the cosine metric
// this equals 1 - cosine_distance. Callers must not assume that
// relationship for other metrics.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// Upsert inserts or updates points in the collection. Re-upserting
	// the same point ID overwrites, never duplicates.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns at most k results ordered by descending similarity.
	// An empty collection yields an empty slice, not an error.
	Search(ctx context.Context, collection string, query []float32, k int) ([]SearchResult, error)

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error

	// Count returns the number of points stored in the collection.
	Count(ctx context.Context, collection string) (uint64, error)
}

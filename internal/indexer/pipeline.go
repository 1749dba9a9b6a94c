package indexer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/badi-al-zaman/ragchat/internal/contextutil"
	"github.com/badi-al-zaman/ragchat/internal/corpus"
	"github.com/badi-al-zaman/ragchat/internal/storage"
	"github.com/badi-al-zaman/ragchat/internal/vectorstore"
)

// Embedder generates fixed-length vectors for texts. It must be the same
// embedding function at index time and query time.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Pipeline orchestrates indexing of corpus documents into SQLite bookkeeping
// and the vector store.
type Pipeline struct {
	source      corpus.Source
	docRepo     storage.DocumentStore
	embedder    Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	chunker     *Chunker
	logger      *slog.Logger
}

// NewPipeline creates a new indexing pipeline.
func NewPipeline(
	source corpus.Source,
	docRepo storage.DocumentStore,
	embedder Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
	chunker *Chunker,
) *Pipeline {
	return &Pipeline{
		source:      source,
		docRepo:     docRepo,
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		chunker:     chunker,
		logger:      slog.Default(),
	}
}

// PointID returns the vector store point ID for a chunk. Qdrant point IDs
// must be UUIDs, so the deterministic chunk ID is mapped through UUIDv5;
// re-indexing the same chunk always writes the same point.
func PointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunkID)).String()
}

// IndexDocument indexes a single document: chunk, embed, upsert.
// When force is false, a document whose stored hash matches the current
// content hash is skipped without recomputation.
func (p *Pipeline) IndexDocument(ctx context.Context, doc corpus.Document, force bool) error {
	logger := p.getLogger(ctx)

	if doc.Content == "" {
		logger.WarnContext(ctx, "skipping empty document", "doc_id", doc.ID)
		return nil
	}

	existing, err := p.docRepo.GetByID(ctx, doc.ID)
	if err != nil && err != storage.ErrNotFound {
		return fmt.Errorf("failed to check existing document: %w", err)
	}

	if !force && existing != nil && existing.Hash == doc.Metadata.Hash {
		logger.DebugContext(ctx, "skipping unchanged document", "doc_id", doc.ID, "hash", doc.Metadata.Hash)
		return nil
	}

	chunks := p.chunker.Chunk(doc)
	if len(chunks) == 0 {
		logger.WarnContext(ctx, "no chunks generated", "doc_id", doc.ID)
		return nil
	}

	// Chunk IDs are deterministic, so stale points from a previous, longer
	// version of the document can be deleted by ordinal.
	if existing != nil && existing.ChunkCount > len(chunks) {
		staleIDs := make([]string, 0, existing.ChunkCount-len(chunks))
		for i := len(chunks); i < existing.ChunkCount; i++ {
			staleIDs = append(staleIDs, PointID(fmt.Sprintf("%s#%d", doc.ID, i)))
		}
		if err := p.vectorStore.Delete(ctx, p.collection, staleIDs); err != nil {
			logger.WarnContext(ctx, "failed to delete stale chunks", "doc_id", doc.ID, "count", len(staleIDs), "error", err)
			// Continue anyway - remaining points are overwritten below
		}
	}

	chunkTexts := make([]string, len(chunks))
	for i, chunk := range chunks {
		chunkTexts[i] = chunk.Text
	}

	embeddings, err := p.embedder.EmbedTexts(ctx, chunkTexts)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))
	}

	points := make([]vectorstore.Point, len(chunks))
	for i, chunk := range chunks {
		points[i] = vectorstore.Point{
			ID:  PointID(chunk.ID),
			Vec: embeddings[i],
			Meta: map[string]any{
				"id":          chunk.ID,
				"doc_id":      doc.ID,
				"chunk_index": chunk.Index,
				"title":       chunk.Title,
				"content":     chunk.Text,
				"file_name":   chunk.Meta.FileName,
				"file_path":   chunk.Meta.FilePath,
				"hash":        chunk.Meta.Hash,
			},
		}
	}

	if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
		return fmt.Errorf("failed to upsert vectors: %w", err)
	}

	record := &storage.DocumentRecord{
		ID:         doc.ID,
		Title:      doc.Title,
		FilePath:   doc.Metadata.FilePath,
		Hash:       doc.Metadata.Hash,
		ChunkCount: len(chunks),
	}
	if err := p.docRepo.Upsert(ctx, record); err != nil {
		return fmt.Errorf("failed to upsert document record: %w", err)
	}

	logger.InfoContext(ctx, "indexed document", "doc_id", doc.ID, "chunks", len(chunks), "title", doc.Title)
	return nil
}

// IndexAll loads every document from the source and indexes it.
// Errors for individual documents are logged but don't stop the run.
func (p *Pipeline) IndexAll(ctx context.Context, force bool) error {
	logger := p.getLogger(ctx)

	docs, err := p.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}

	logger.InfoContext(ctx, "starting indexing", "total_documents", len(docs), "force", force)

	var successCount, errorCount int

	for _, doc := range docs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := p.IndexDocument(ctx, doc, force); err != nil {
			errorCount++
			logger.ErrorContext(ctx, "failed to index document", "doc_id", doc.ID, "error", err)
			continue
		}

		successCount++
	}

	logger.InfoContext(ctx, "indexing completed", "total_documents", len(docs), "success", successCount, "errors", errorCount)

	if errorCount > 0 {
		return fmt.Errorf("indexing completed with %d errors", errorCount)
	}

	return nil
}

// getLogger extracts logger from context or returns the pipeline's logger.
func (p *Pipeline) getLogger(ctx context.Context) *slog.Logger {
	if l := contextutil.LoggerFromContext(ctx); l != nil {
		return l
	}
	return p.logger
}

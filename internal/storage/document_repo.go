package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks github.com/badi-al-zaman/ragchat/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DocumentStore defines the interface for indexed-document bookkeeping.
type DocumentStore interface {
	// GetByID gets a document record by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*DocumentRecord, error)
	// Upsert inserts a new document record or replaces an existing one.
	Upsert(ctx context.Context, doc *DocumentRecord) error
}

// DocumentRepo provides methods for document record operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// GetByID gets a document record by its ID. Returns ErrNotFound if not found.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*DocumentRecord, error) {
	var doc DocumentRecord
	var indexedAt string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, title, file_path, hash, chunk_count, indexed_at FROM documents WHERE id = ?",
		id,
	).Scan(&doc.ID, &doc.Title, &doc.FilePath, &doc.Hash, &doc.ChunkCount, &indexedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	if doc.IndexedAt, err = time.Parse(timeFormat, indexedAt); err != nil {
		return nil, fmt.Errorf("failed to parse indexed_at timestamp: %w", err)
	}

	return &doc, nil
}

// Upsert inserts a new document record or replaces an existing one.
func (r *DocumentRepo) Upsert(ctx context.Context, doc *DocumentRecord) error {
	doc.IndexedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, title, file_path, hash, chunk_count, indexed_at) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title=excluded.title, file_path=excluded.file_path, hash=excluded.hash, chunk_count=excluded.chunk_count, indexed_at=excluded.indexed_at`,
		doc.ID, doc.Title, doc.FilePath, doc.Hash, doc.ChunkCount, doc.IndexedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

package driven

import (
	"context"

	"github.com/custodia-labs/sibyl-cli/internal/core/domain"
)

// DocumentStore is the durable record of documents and their index
// entries. It is the persisted index layout: the in-memory vector
// index is rebuilt from it at startup.
type DocumentStore interface {
	// SaveDocument stores or replaces a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound when absent.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all stored documents.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document and its entries. Idempotent.
	DeleteDocument(ctx context.Context, id string) error

	// SaveEntries stores the full entry batch for a document in a
	// single transaction, replacing any prior batch.
	SaveEntries(ctx context.Context, documentID string, entries []domain.IndexEntry) error

	// ListEntries returns every stored entry. Used to rebuild the
	// vector index at startup.
	ListEntries(ctx context.Context) ([]domain.IndexEntry, error)

	// Close releases resources.
	Close() error
}

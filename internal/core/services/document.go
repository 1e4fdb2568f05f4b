package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sibyl-cli/internal/core/domain"
	"github.com/custodia-labs/sibyl-cli/internal/core/ports/driven"
	"github.com/custodia-labs/sibyl-cli/internal/core/ports/driving"
	"github.com/custodia-labs/sibyl-cli/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService inspects and removes indexed documents.
type DocumentService struct {
	docStore    driven.DocumentStore
	vectorIndex driven.VectorIndex
}

// NewDocumentService creates a new document service.
func NewDocumentService(docStore driven.DocumentStore, vectorIndex driven.VectorIndex) *DocumentService {
	return &DocumentService{
		docStore:    docStore,
		vectorIndex: vectorIndex,
	}
}

// List returns all indexed documents.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Get retrieves one document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := s.docStore.GetDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	return doc, nil
}

// Delete removes a document from the store and the vector index.
// The live index is cleared first so a store failure cannot leave
// orphaned entries serving queries.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if err := s.vectorIndex.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("remove index entries for %s: %w", id, err)
	}
	if err := s.docStore.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	logger.Info("Deleted document %s", id)
	return nil
}

// Package memory provides in-memory implementations of driven ports,
// primarily for tests and ephemeral corpora.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/sibyl-cli/internal/core/domain"
	"github.com/custodia-labs/sibyl-cli/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	entries   map[string][]domain.IndexEntry
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		entries:   make(map[string][]domain.IndexEntry),
	}
}

// SaveDocument stores or updates a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns all stored documents ordered by source path.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.documents))
	for id := range s.documents {
		docs = append(docs, s.documents[id])
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].SourcePath < docs[j].SourcePath
	})
	return docs, nil
}

// DeleteDocument removes a document and its entries.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	delete(s.entries, id)
	return nil
}

// SaveEntries stores the entry batch for a document, replacing any
// prior batch.
func (s *DocumentStore) SaveEntries(_ context.Context, documentID string, entries []domain.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := make([]domain.IndexEntry, len(entries))
	copy(batch, entries)
	s.entries[documentID] = batch
	return nil
}

// ListEntries returns every stored entry ordered by document and position.
func (s *DocumentStore) ListEntries(_ context.Context) ([]domain.IndexEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []domain.IndexEntry
	for _, batch := range s.entries {
		all = append(all, batch...)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].DocumentID != all[j].DocumentID {
			return all[i].DocumentID < all[j].DocumentID
		}
		return all[i].Position < all[j].Position
	})
	return all, nil
}

// Close releases resources.
func (s *DocumentStore) Close() error {
	return nil
}

// Package memory provides an in-memory vector index using brute-force
// cosine similarity. The index is rebuilt from the document store at
// startup; durability lives in the store, not here.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/sibyl-cli/internal/core/domain"
	"github.com/custodia-labs/sibyl-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index stores index entries keyed by chunk ID.
//
// Normalisation convention: vectors are L2-normalised once at upsert
// time and query vectors are normalised at query time, so a dot
// product is exact cosine similarity. Mixing conventions would corrupt
// rankings, which is why the index owns this step rather than callers.
type Index struct {
	dimensions int

	mu      sync.RWMutex
	entries map[string]domain.IndexEntry
	byDoc   map[string]map[string]struct{}

	// Per-document write locks so unrelated documents never serialise
	// against each other. lockMu only guards the lock table itself.
	lockMu   sync.Mutex
	docLocks map[string]*sync.Mutex
}

// NewIndex creates an empty index with fixed dimensionality.
func NewIndex(dimensions int) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: index dimensionality must be positive, got %d",
			domain.ErrInvalidConfiguration, dimensions)
	}
	return &Index{
		dimensions: dimensions,
		entries:    make(map[string]domain.IndexEntry),
		byDoc:      make(map[string]map[string]struct{}),
		docLocks:   make(map[string]*sync.Mutex),
	}, nil
}

// Dimensions returns the fixed dimensionality of the index.
func (x *Index) Dimensions() int {
	return x.dimensions
}

// Len returns the number of stored entries.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Upsert inserts or replaces entries as one atomic batch. The whole
// batch is validated before anything is written, so a dimension
// mismatch leaves the index untouched.
func (x *Index) Upsert(ctx context.Context, entries []domain.IndexEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	for _, e := range entries {
		if len(e.Vector) != x.dimensions {
			return fmt.Errorf("%w: entry %s has %d dimensions, index expects %d",
				domain.ErrDimensionMismatch, e.ChunkID, len(e.Vector), x.dimensions)
		}
	}

	// Normalise copies so caller slices stay untouched.
	normalised := make([]domain.IndexEntry, len(entries))
	for i, e := range entries {
		e.Vector = normalise(e.Vector)
		normalised[i] = e
	}

	for _, docID := range documentIDs(normalised) {
		lock := x.docLock(docID)
		lock.Lock()
		defer lock.Unlock()
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	for _, e := range normalised {
		if prev, ok := x.entries[e.ChunkID]; ok {
			delete(x.byDoc[prev.DocumentID], e.ChunkID)
		}
		x.entries[e.ChunkID] = e
		if x.byDoc[e.DocumentID] == nil {
			x.byDoc[e.DocumentID] = make(map[string]struct{})
		}
		x.byDoc[e.DocumentID][e.ChunkID] = struct{}{}
	}
	return nil
}

// DeleteDocument removes every entry belonging to the document.
// Deleting an absent document is a no-op.
func (x *Index) DeleteDocument(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := x.docLock(documentID)
	lock.Lock()
	defer lock.Unlock()

	x.mu.Lock()
	defer x.mu.Unlock()
	for chunkID := range x.byDoc[documentID] {
		delete(x.entries, chunkID)
	}
	delete(x.byDoc, documentID)
	return nil
}

// Query returns up to topK entries by descending cosine similarity,
// restricted to entries matching every filter predicate. Equal scores
// order by ascending (documentID, position) for determinism. An empty
// index yields an empty result.
func (x *Index) Query(
	ctx context.Context, vector []float32, topK int, filters map[string]string,
) ([]driven.VectorHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(vector) != x.dimensions {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, index expects %d",
			domain.ErrDimensionMismatch, len(vector), x.dimensions)
	}
	if topK <= 0 {
		return []driven.VectorHit{}, nil
	}

	query := normalise(vector)

	x.mu.RLock()
	hits := make([]driven.VectorHit, 0, len(x.entries))
	for _, e := range x.entries {
		if !matches(e, filters) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			Entry:      e,
			Similarity: dot(e.Vector, query),
		})
	}
	x.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		if hits[i].Entry.DocumentID != hits[j].Entry.DocumentID {
			return hits[i].Entry.DocumentID < hits[j].Entry.DocumentID
		}
		return hits[i].Entry.Position < hits[j].Entry.Position
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Close releases resources.
func (x *Index) Close() error {
	return nil
}

// docLock returns the write lock for a document, creating it on first use.
func (x *Index) docLock(documentID string) *sync.Mutex {
	x.lockMu.Lock()
	defer x.lockMu.Unlock()
	lock, ok := x.docLocks[documentID]
	if !ok {
		lock = &sync.Mutex{}
		x.docLocks[documentID] = lock
	}
	return lock
}

// documentIDs returns the distinct document IDs in a batch, sorted so
// multi-document upserts always acquire locks in the same order.
func documentIDs(entries []domain.IndexEntry) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, e := range entries {
		if _, ok := seen[e.DocumentID]; !ok {
			seen[e.DocumentID] = struct{}{}
			ids = append(ids, e.DocumentID)
		}
	}
	sort.Strings(ids)
	return ids
}

// matches reports whether every filter predicate holds for the entry.
// The document_id and position-independent metadata keys are checked
// against the entry's metadata; document_id also matches the entry field.
func matches(e domain.IndexEntry, filters map[string]string) bool {
	for k, v := range filters {
		if k == "document_id" {
			if e.DocumentID != v {
				return false
			}
			continue
		}
		if e.Metadata[k] != v {
			return false
		}
	}
	return true
}

// normalise returns an L2-normalised copy of v. A zero vector is
// returned as a zero-length-preserving copy so it simply scores zero
// against everything.
func normalise(v []float32) []float32 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		copy(out, v)
		return out
	}
	norm := math.Sqrt(sum)
	for i, f := range v {
		out[i] = float32(float64(f) / norm)
	}
	return out
}

// dot computes the inner product of two equal-length vectors.
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

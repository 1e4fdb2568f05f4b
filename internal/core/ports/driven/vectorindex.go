package driven

import (
	"context"

	"github.com/custodia-labs/sibyl-cli/internal/core/domain"
)

// VectorIndex is a mutable store of index entries keyed by chunk ID,
// supporting nearest-neighbour queries by cosine similarity.
//
// Vectors are L2-normalised by the index at upsert time and queries
// are normalised at query time, so reported scores are true cosine
// similarity regardless of caller convention. This is the one fixed
// normalisation convention for the whole system.
type VectorIndex interface {
	// Upsert inserts or replaces entries as a single atomic batch.
	// The whole batch is rejected with domain.ErrDimensionMismatch if
	// any entry's vector length differs from the index dimensionality.
	Upsert(ctx context.Context, entries []domain.IndexEntry) error

	// DeleteDocument removes all entries belonging to the document.
	// Idempotent: deleting an absent document is a no-op.
	DeleteDocument(ctx context.Context, documentID string) error

	// Query returns up to topK entries maximising cosine similarity to
	// vector, restricted to entries matching every filter predicate.
	// Equal scores are ordered by ascending (documentID, position).
	// An empty index yields an empty result, not an error.
	Query(ctx context.Context, vector []float32, topK int, filters map[string]string) ([]VectorHit, error)

	// Dimensions returns the fixed dimensionality of the index.
	Dimensions() int

	// Close releases resources.
	Close() error
}

// VectorHit is a similarity search result.
type VectorHit struct {
	// Entry is the matched index entry.
	Entry domain.IndexEntry

	// Similarity is the cosine similarity score.
	Similarity float64
}

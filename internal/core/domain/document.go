package domain

import (
	"fmt"
	"time"
)

// Document represents an ingested document after text extraction.
// Documents are immutable: re-ingesting the same source path replaces
// the document rather than mutating it.
type Document struct {
	// ID is the unique identifier for the document. It is derived
	// deterministically from the source path so re-ingestion of the
	// same file yields the same identity.
	ID string

	// SourcePath is the original file location.
	SourcePath string

	// Content is the full extracted text before chunking.
	Content string

	// Metadata contains arbitrary key-value pairs carried through to
	// the index entries of every chunk.
	Metadata map[string]string

	// ExtractedAt is when the text was extracted from the source.
	ExtractedAt time.Time
}

// Chunk represents a retrievable span of a document's text.
// Chunks from one document are ordered by Position; their byte ranges
// may overlap by the configured overlap window but Start offsets are
// strictly increasing.
type Chunk struct {
	// ID is the unique identifier for the chunk. Derived as
	// "<documentID>:<position>" so identical content re-ingested
	// produces identical chunk IDs.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// SourcePath is the owning document's original file location,
	// carried through index metadata so retrieval hits can name their
	// source without a store lookup.
	SourcePath string

	// Position is the ordinal position within the document.
	Position int

	// Start and End are byte offsets of the span into the source text.
	Start int
	End   int

	// Content is the text of this span.
	Content string
}

// ChunkID builds the canonical chunk identifier for a document position.
func ChunkID(documentID string, position int) string {
	return fmt.Sprintf("%s:%d", documentID, position)
}

// IndexEntry is a chunk together with its embedding vector and the
// metadata needed for filtering. Entries are owned exclusively by the
// vector index: created during ingestion, never mutated, removed only
// by document-level deletion.
type IndexEntry struct {
	// ChunkID is the entry key.
	ChunkID string

	// DocumentID identifies the owning document.
	DocumentID string

	// Position is the chunk's ordinal position within the document.
	Position int

	// Vector is the embedding. Its length must match the index's
	// configured dimensionality.
	Vector []float32

	// Content is the chunk text, stored alongside the vector so
	// retrieval needs no second lookup.
	Content string

	// Metadata holds equality-filterable key-value pairs
	// (always includes "source_path").
	Metadata map[string]string
}

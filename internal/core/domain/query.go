package domain

// Query is a retrieval request against the vector index.
type Query struct {
	// Text is the natural-language question.
	Text string

	// TopK is the requested result count.
	TopK int

	// Filters are metadata equality predicates restricting the
	// candidate set (e.g. {"document_id": "..."}).
	Filters map[string]string
}

// ScoredChunk pairs a chunk with its similarity score.
type ScoredChunk struct {
	// Chunk is the retrieved chunk.
	Chunk Chunk

	// Score is the cosine similarity to the query vector, possibly
	// adjusted by a lexical re-rank boost.
	Score float64
}

// RetrievalResult is an ordered sequence of scored chunks,
// descending by score, at most TopK long.
type RetrievalResult struct {
	// Chunks are the ranked hits.
	Chunks []ScoredChunk
}

// Empty reports whether retrieval produced no hits.
func (r RetrievalResult) Empty() bool {
	return len(r.Chunks) == 0
}

// Citation references a chunk that was actually included in the
// prompt that produced an answer.
type Citation struct {
	// ChunkID is the cited chunk.
	ChunkID string

	// DocumentID is the chunk's owning document.
	DocumentID string

	// SourcePath is the document's original location.
	SourcePath string

	// Position is the chunk's ordinal position within the document.
	Position int
}

// Answer is the result of a grounded question.
type Answer struct {
	// Text is the generated answer.
	Text string

	// Citations lists the chunks embedded in the prompt, in the
	// order they appeared. Empty when no relevant context was found.
	Citations []Citation
}

package driving

import (
	"context"

	"github.com/custodia-labs/sibyl-cli/internal/core/domain"
)

// Pipeline sequences the ingestion and query flows and owns the
// vector index lifecycle.
type Pipeline interface {
	// Ingest extracts, chunks, embeds and indexes a single file.
	// Re-ingesting the same path replaces its prior entries.
	Ingest(ctx context.Context, path string) (*domain.Document, error)

	// IngestAll ingests several files, in parallel up to the worker
	// limit. One file's failure does not abort the others; the
	// returned error joins all per-file failures.
	IngestAll(ctx context.Context, paths []string) ([]domain.Document, error)

	// Answer retrieves relevant chunks for the question, assembles a
	// bounded prompt and invokes the generation gateway. An empty
	// index produces an answer with no citations, not an error.
	Answer(ctx context.Context, question string, opts AnswerOptions) (*domain.Answer, error)

	// Answerable reports whether the generation gateway is configured.
	Answerable() bool
}

// AnswerOptions tunes a single question. Zero values select the
// pipeline's configured defaults.
type AnswerOptions struct {
	// TopK overrides the retrieval result count.
	TopK int

	// ContextBudget overrides the prompt context budget in characters.
	ContextBudget int

	// Conversational frames generation with the chat system preamble.
	// Set by interactive sessions; one-shot questions leave it unset.
	Conversational bool
}

// DocumentService inspects and removes indexed documents.
type DocumentService interface {
	// List returns all indexed documents.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves one document by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// Delete removes a document from the store and the vector index.
	// Idempotent.
	Delete(ctx context.Context, id string) error
}

package driven

import "context"

// EmbeddingService converts text into fixed-dimension vectors.
//
// Note: this is separate from VectorIndex, which stores and searches
// vectors. EmbeddingService generates vectors; VectorIndex stores them.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-ada-002)
//   - Ollama (nomic-embed-text, all-minilm)
//
// Failures are reported as *domain.GatewayError so callers can
// distinguish transient from permanent conditions.
type EmbeddingService interface {
	// EmbedBatch generates one vector per input text, in the same order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 768, 1536).
	// This must match the vector index's configured dimensionality.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}

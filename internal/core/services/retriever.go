package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/sibyl-cli/internal/core/domain"
	"github.com/custodia-labs/sibyl-cli/internal/core/ports/driven"
	"github.com/custodia-labs/sibyl-cli/internal/logger"
)

// Retrieval defaults.
const (
	// DefaultTopK is the result count when a query does not specify one.
	DefaultTopK = 6

	// lexicalBoost is the maximum additive score bonus for query terms
	// appearing verbatim in a chunk.
	lexicalBoost = 0.1
)

// Retriever ranks indexed chunks against a natural-language question.
// It embeds the question, over-fetches candidates from the vector
// index and re-ranks them with a small lexical bonus before cutting
// to the requested size.
type Retriever struct {
	vectorIndex      driven.VectorIndex
	embeddingService driven.EmbeddingService
}

// NewRetriever creates a new retriever.
func NewRetriever(vectorIndex driven.VectorIndex, embeddingService driven.EmbeddingService) *Retriever {
	return &Retriever{
		vectorIndex:      vectorIndex,
		embeddingService: embeddingService,
	}
}

// Retrieve returns the top chunks for the query, descending by score.
// An empty index yields an empty result. An embedding or index failure
// is reported as domain.ErrRetrievalUnavailable with the cause wrapped.
func (r *Retriever) Retrieve(ctx context.Context, query domain.Query) (domain.RetrievalResult, error) {
	logger.Section("Retrieval")

	text := strings.TrimSpace(query.Text)
	if text == "" {
		return domain.RetrievalResult{}, nil
	}

	topK := query.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	vectors, err := withRetry(ctx, "embed query", func() ([][]float32, error) {
		return r.embeddingService.EmbedBatch(ctx, []string{text})
	})
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return domain.RetrievalResult{}, fmt.Errorf("%w: embed query: %w",
			domain.ErrRetrievalUnavailable, err)
	}
	if len(vectors) != 1 {
		return domain.RetrievalResult{}, fmt.Errorf("%w: expected 1 query vector, got %d",
			domain.ErrRetrievalUnavailable, len(vectors))
	}

	// Over-fetch so the lexical re-rank has candidates to promote.
	fetchK := topK * 2
	hits, err := r.vectorIndex.Query(ctx, vectors[0], fetchK, query.Filters)
	if err != nil {
		if errors.Is(err, domain.ErrDimensionMismatch) {
			return domain.RetrievalResult{}, err
		}
		logger.Warn("Vector query failed: %v", err)
		return domain.RetrievalResult{}, fmt.Errorf("%w: vector query: %w",
			domain.ErrRetrievalUnavailable, err)
	}

	logger.Debug("Fetched %d candidates for topK=%d", len(hits), topK)

	if len(hits) == 0 {
		return domain.RetrievalResult{}, nil
	}

	terms := queryTerms(text)
	scored := make([]domain.ScoredChunk, 0, len(hits))
	for _, hit := range hits {
		entry := hit.Entry
		score := hit.Similarity + lexicalBonus(entry.Content, terms)
		scored = append(scored, domain.ScoredChunk{
			Chunk: domain.Chunk{
				ID:         entry.ChunkID,
				DocumentID: entry.DocumentID,
				SourcePath: entry.Metadata["source_path"],
				Position:   entry.Position,
				Content:    entry.Content,
			},
			Score: score,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Chunk.DocumentID != scored[j].Chunk.DocumentID {
			return scored[i].Chunk.DocumentID < scored[j].Chunk.DocumentID
		}
		return scored[i].Chunk.Position < scored[j].Chunk.Position
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}

	logger.Info("Retrieved %d chunks", len(scored))
	return domain.RetrievalResult{Chunks: scored}, nil
}

// queryTerms lower-cases and splits the question into distinct terms.
func queryTerms(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	terms := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?\"'()[]")
		if len(f) > 2 {
			terms[f] = struct{}{}
		}
	}
	return terms
}

// lexicalBonus scales lexicalBoost by the fraction of query terms
// present verbatim in the chunk content.
func lexicalBonus(content string, terms map[string]struct{}) float64 {
	if len(terms) == 0 {
		return 0
	}
	contentLower := strings.ToLower(content)
	matched := 0
	for term := range terms {
		if strings.Contains(contentLower, term) {
			matched++
		}
	}
	return lexicalBoost * float64(matched) / float64(len(terms))
}

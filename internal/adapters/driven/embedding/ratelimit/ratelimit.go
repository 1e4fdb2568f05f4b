// Package ratelimit decorates an embedding service with a token
// bucket, keeping parallel ingestion inside the gateway's rate limits.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/sibyl-cli/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultRate is the default batch calls per second.
const DefaultRate = 2.0

// EmbeddingService wraps another embedding service, blocking each
// batch call until the limiter grants a token.
type EmbeddingService struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter
}

// Wrap decorates inner with a limiter of callsPerSecond batch calls.
// Burst of one: batches are already the unit of throughput.
func Wrap(inner driven.EmbeddingService, callsPerSecond float64) *EmbeddingService {
	if callsPerSecond <= 0 {
		callsPerSecond = DefaultRate
	}
	return &EmbeddingService{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(callsPerSecond), 1),
	}
}

// EmbedBatch waits for the limiter, then delegates.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the inner service's dimensionality.
func (s *EmbeddingService) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the inner service's model name.
func (s *EmbeddingService) ModelName() string {
	return s.inner.ModelName()
}

// Close closes the inner service.
func (s *EmbeddingService) Close() error {
	return s.inner.Close()
}

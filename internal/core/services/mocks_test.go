package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/sibyl-cli/internal/core/domain"
	"github.com/custodia-labs/sibyl-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// It returns a fixed vector per text, optionally failing the first
// failUntil calls with failErr.
type mockEmbeddingService struct {
	mu        sync.Mutex
	vector    []float32
	dims      int
	calls     int
	failUntil int
	failErr   error

	// enterCh, when set, receives one value as each EmbedBatch call
	// starts; waitCh, when set, blocks the call until it is closed.
	enterCh chan struct{}
	waitCh  chan struct{}
}

func newMockEmbedding(dims int) *mockEmbeddingService {
	vec := make([]float32, dims)
	vec[0] = 1
	return &mockEmbeddingService{vector: vec, dims: dims}
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.enterCh != nil {
		m.enterCh <- struct{}{}
	}
	if m.waitCh != nil {
		<-m.waitCh
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failErr != nil && m.calls <= m.failUntil {
		return nil, m.failErr
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, len(m.vector))
		copy(v, m.vector)
		result[i] = v
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int { return m.dims }

func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }

func (m *mockEmbeddingService) Close() error { return nil }

var _ driven.EmbeddingService = (*mockEmbeddingService)(nil)

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	mu         sync.Mutex
	response   string
	err        error
	lastPrompt string
	lastOpts   driven.GenerateOptions
	calls      int
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastPrompt = prompt
	m.lastOpts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }

func (m *mockLLMService) Close() error { return nil }

var _ driven.LLMService = (*mockLLMService)(nil)

// mockVectorIndex implements driven.VectorIndex with injectable
// failures. Service tests that need real similarity behaviour use the
// memory adapter instead.
type mockVectorIndex struct {
	hits      []driven.VectorHit
	queryErr  error
	upsertErr error
	deleteErr error
	dims      int
	deleted   []string
	upserted  [][]domain.IndexEntry
}

func (m *mockVectorIndex) Upsert(_ context.Context, entries []domain.IndexEntry) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, entries)
	return nil
}

func (m *mockVectorIndex) DeleteDocument(_ context.Context, documentID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, documentID)
	return nil
}

func (m *mockVectorIndex) Query(_ context.Context, _ []float32, topK int, _ map[string]string) ([]driven.VectorHit, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if topK > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:topK], nil
}

func (m *mockVectorIndex) Dimensions() int { return m.dims }

func (m *mockVectorIndex) Close() error { return nil }

var _ driven.VectorIndex = (*mockVectorIndex)(nil)

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.prompts[name], nil
}

func (m *mockPromptStore) Reload() {}

var _ driven.PromptStore = (*mockPromptStore)(nil)

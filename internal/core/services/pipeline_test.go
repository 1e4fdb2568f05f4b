package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storemem "github.com/custodia-labs/sibyl-cli/internal/adapters/driven/storage/memory"
	indexmem "github.com/custodia-labs/sibyl-cli/internal/adapters/driven/vectorindex/memory"
	"github.com/custodia-labs/sibyl-cli/internal/core/domain"
	"github.com/custodia-labs/sibyl-cli/internal/core/ports/driven"
	"github.com/custodia-labs/sibyl-cli/internal/core/ports/driving"
	"github.com/custodia-labs/sibyl-cli/internal/extractors"
	"github.com/custodia-labs/sibyl-cli/internal/extractors/plaintext"
)

// newTestPipeline wires a pipeline over in-memory adapters and the
// plaintext extractor.
func newTestPipeline(t *testing.T, llm *mockLLMService) (*PipelineService, *indexmem.Index, *storemem.DocumentStore, *mockEmbeddingService) {
	t.Helper()

	index, err := indexmem.NewIndex(3)
	require.NoError(t, err)
	store := storemem.NewDocumentStore()
	embed := newMockEmbedding(3)
	registry := extractors.NewRegistry(plaintext.New())

	cfg := PipelineConfig{ChunkSize: 50, ChunkOverlap: 10}

	// Avoid wrapping a typed nil in the interface.
	var p *PipelineService
	if llm != nil {
		p, err = NewPipelineService(registry, embed, llm, index, store, cfg)
	} else {
		p, err = NewPipelineService(registry, embed, nil, index, store, cfg)
	}
	require.NoError(t, err)
	return p, index, store, embed
}

// writeCorpusFile creates a .txt file with the given content.
func writeCorpusFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestPipeline_IngestIndexesAndPersists(t *testing.T) {
	p, index, store, _ := newTestPipeline(t, nil)
	ctx := context.Background()

	path := writeCorpusFile(t, t.TempDir(), "notes.txt",
		strings.Repeat("Consumers may return faulty goods. ", 10))

	doc, err := p.Ingest(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, DocumentID(path), doc.ID)
	assert.NotEmpty(t, doc.Content)

	// Persisted entries and live index agree.
	entries, err := store.ListEntries(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	hits, err := index.Query(ctx, []float32{1, 0, 0}, len(entries)+5, nil)
	require.NoError(t, err)
	assert.Len(t, hits, len(entries))

	for i, e := range entries {
		assert.Equal(t, domain.ChunkID(doc.ID, i), e.ChunkID)
		assert.Equal(t, path, e.Metadata["source_path"])
	}
}

func TestPipeline_IngestIsDeterministicAndReplaces(t *testing.T) {
	p, index, store, _ := newTestPipeline(t, nil)
	ctx := context.Background()

	path := writeCorpusFile(t, t.TempDir(), "notes.txt",
		strings.Repeat("Stable content keeps stable identity. ", 8))

	first, err := p.Ingest(ctx, path)
	require.NoError(t, err)
	second, err := p.Ingest(ctx, path)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	entries, err := store.ListEntries(ctx)
	require.NoError(t, err)
	hits, err := index.Query(ctx, []float32{1, 0, 0}, len(entries)*2+5, nil)
	require.NoError(t, err)
	assert.Len(t, hits, len(entries))
}

func TestPipeline_IngestUnsupportedType(t *testing.T) {
	p, _, _, _ := newTestPipeline(t, nil)

	path := writeCorpusFile(t, t.TempDir(), "image.png", "not text")

	_, err := p.Ingest(context.Background(), path)
	var xerr *domain.ExtractionError
	require.ErrorAs(t, err, &xerr)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestPipeline_IngestEmbeddingFailureLeavesNothingBehind(t *testing.T) {
	p, index, store, embed := newTestPipeline(t, nil)
	ctx := context.Background()

	embed.failErr = &domain.GatewayError{Op: "embed", Transient: false, Err: assert.AnError}
	embed.failUntil = 100

	path := writeCorpusFile(t, t.TempDir(), "notes.txt", "some text to ingest")

	_, err := p.Ingest(ctx, path)
	require.Error(t, err)

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)

	hits, err := index.Query(ctx, []float32{1, 0, 0}, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestPipeline_IngestAllIsolatesFailures(t *testing.T) {
	p, _, store, _ := newTestPipeline(t, nil)
	ctx := context.Background()
	dir := t.TempDir()

	good1 := writeCorpusFile(t, dir, "a.txt", "first document content")
	bad := writeCorpusFile(t, dir, "b.bin", "unsupported")
	good2 := writeCorpusFile(t, dir, "c.txt", "second document content")

	docs, err := p.IngestAll(ctx, []string{good1, bad, good2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b.bin")
	require.Len(t, docs, 2)

	// Path-order preserved for successes.
	assert.Equal(t, good1, docs[0].SourcePath)
	assert.Equal(t, good2, docs[1].SourcePath)

	stored, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestPipeline_IngestAllEmpty(t *testing.T) {
	p, _, _, _ := newTestPipeline(t, nil)

	docs, err := p.IngestAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestPipeline_ConcurrentSamePathIngestRejected(t *testing.T) {
	p, _, store, embed := newTestPipeline(t, nil)
	ctx := context.Background()

	dir := t.TempDir()
	path := writeCorpusFile(t, dir, "doc.txt",
		"consumer rights apply to every purchase made in the store.")

	embed.enterCh = make(chan struct{}, 1)
	embed.waitCh = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := p.Ingest(ctx, path)
		done <- err
	}()

	// Wait until the first ingest is inside the embedding call.
	<-embed.enterCh

	_, err := p.Ingest(ctx, path)
	assert.ErrorIs(t, err, domain.ErrIngestInProgress)

	close(embed.waitCh)
	require.NoError(t, <-done)

	// The slot is released once the first ingest finishes.
	embed.enterCh, embed.waitCh = nil, nil
	_, err = p.Ingest(ctx, path)
	require.NoError(t, err)

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestPipeline_AnswerWithoutLLM(t *testing.T) {
	p, _, _, _ := newTestPipeline(t, nil)

	assert.False(t, p.Answerable())
	_, err := p.Answer(context.Background(), "anything?", driving.AnswerOptions{})
	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
}

func TestPipeline_AnswerEmptyIndex(t *testing.T) {
	llm := &mockLLMService{response: "The corpus does not cover this."}
	p, _, _, _ := newTestPipeline(t, llm)

	answer, err := p.Answer(context.Background(), "what about returns?", driving.AnswerOptions{})
	require.NoError(t, err)
	assert.Empty(t, answer.Citations)
	assert.Equal(t, "The corpus does not cover this.", answer.Text)
	assert.Contains(t, llm.lastPrompt, "No relevant context")
}

func TestPipeline_AnswerCitesIngestedChunks(t *testing.T) {
	llm := &mockLLMService{response: "Faulty goods may be returned."}
	p, _, _, _ := newTestPipeline(t, llm)
	ctx := context.Background()

	path := writeCorpusFile(t, t.TempDir(), "law.txt",
		"Consumers may return faulty goods within thirty days of purchase.")
	doc, err := p.Ingest(ctx, path)
	require.NoError(t, err)

	answer, err := p.Answer(ctx, "can I return faulty goods?", driving.AnswerOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Faulty goods may be returned.", answer.Text)

	require.NotEmpty(t, answer.Citations)
	for _, c := range answer.Citations {
		assert.Equal(t, doc.ID, c.DocumentID)
		assert.Equal(t, path, c.SourcePath)
	}
	assert.Contains(t, llm.lastPrompt, "[context 1]")
	assert.Contains(t, llm.lastPrompt, "faulty goods")
}

func TestPipeline_ConversationalAnswerSetsSystemPreamble(t *testing.T) {
	llm := &mockLLMService{response: "an answer"}
	p, _, _, _ := newTestPipeline(t, llm)
	ctx := context.Background()

	_, err := p.Answer(ctx, "what is covered?", driving.AnswerOptions{Conversational: true})
	require.NoError(t, err)
	assert.Contains(t, llm.lastOpts.System, "Sibyl")

	// One-shot questions carry no preamble.
	_, err = p.Answer(ctx, "what is covered?", driving.AnswerOptions{})
	require.NoError(t, err)
	assert.Empty(t, llm.lastOpts.System)

	// A prompt store override replaces the built-in preamble.
	p.SetPromptStore(&mockPromptStore{prompts: map[string]string{
		driven.PromptChatSystem: "answer tersely",
	}})
	_, err = p.Answer(ctx, "what is covered?", driving.AnswerOptions{Conversational: true})
	require.NoError(t, err)
	assert.Equal(t, "answer tersely", llm.lastOpts.System)
}

func TestPipeline_AnswerEmptyQuestion(t *testing.T) {
	llm := &mockLLMService{response: "unused"}
	p, _, _, _ := newTestPipeline(t, llm)

	_, err := p.Answer(context.Background(), "   ", driving.AnswerOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPipeline_RebuildRestoresIndex(t *testing.T) {
	p, _, store, _ := newTestPipeline(t, nil)
	ctx := context.Background()

	path := writeCorpusFile(t, t.TempDir(), "notes.txt", "content that will be rebuilt")
	doc, err := p.Ingest(ctx, path)
	require.NoError(t, err)

	// A fresh pipeline over the same store but an empty index.
	freshIndex, err := indexmem.NewIndex(3)
	require.NoError(t, err)
	embed := newMockEmbedding(3)
	registry := extractors.NewRegistry(plaintext.New())
	fresh, err := NewPipelineService(registry, embed, nil, freshIndex, store, PipelineConfig{})
	require.NoError(t, err)

	require.NoError(t, fresh.Rebuild(ctx))

	hits, err := freshIndex.Query(ctx, []float32{1, 0, 0}, 10, nil)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, doc.ID, hits[0].Entry.DocumentID)
}

func TestPipeline_InvalidChunkConfig(t *testing.T) {
	registry := extractors.NewRegistry(plaintext.New())
	index, err := indexmem.NewIndex(3)
	require.NoError(t, err)

	_, err = NewPipelineService(registry, newMockEmbedding(3), nil, index,
		storemem.NewDocumentStore(), PipelineConfig{ChunkSize: 100, ChunkOverlap: 100})
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestDocumentID_Deterministic(t *testing.T) {
	a := DocumentID("/corpus/a.txt")
	b := DocumentID("/corpus/a.txt")
	c := DocumentID("/corpus/b.txt")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

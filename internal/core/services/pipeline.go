package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sibyl-cli/internal/chunker"
	"github.com/custodia-labs/sibyl-cli/internal/core/domain"
	"github.com/custodia-labs/sibyl-cli/internal/core/ports/driven"
	"github.com/custodia-labs/sibyl-cli/internal/core/ports/driving"
	"github.com/custodia-labs/sibyl-cli/internal/extractors"
	"github.com/custodia-labs/sibyl-cli/internal/logger"
)

// Ensure PipelineService implements the interface.
var _ driving.Pipeline = (*PipelineService)(nil)

// Pipeline defaults.
const (
	// DefaultIngestWorkers bounds concurrent document ingestion.
	DefaultIngestWorkers = 2

	// embedBatchSize bounds how many chunk texts go to the embedding
	// gateway per call.
	embedBatchSize = 16
)

// PipelineConfig holds tunables for the ingestion and question flows.
// Zero values select the documented defaults.
type PipelineConfig struct {
	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the character overlap between adjacent chunks.
	ChunkOverlap int

	// TopK is the retrieval result count.
	TopK int

	// ContextBudget bounds the assembled prompt context in characters.
	ContextBudget int

	// IngestWorkers bounds concurrent ingestion in IngestAll.
	IngestWorkers int
}

// PipelineService sequences extraction, chunking, embedding, indexing
// and the retrieval-augmented question flow. It owns rebuilding the
// vector index from the document store at startup.
type PipelineService struct {
	extractors       *extractors.Registry
	splitter         *chunker.Splitter
	embeddingService driven.EmbeddingService
	llmService       driven.LLMService
	vectorIndex      driven.VectorIndex
	docStore         driven.DocumentStore
	retriever        *Retriever
	assembler        *Assembler

	topK    int
	workers int

	// ingestMu guards ingesting, the set of document IDs with an
	// ingest in flight.
	ingestMu  sync.Mutex
	ingesting map[string]struct{}
}

// NewPipelineService wires the pipeline from its dependencies.
// The llmService is optional; without it Answer reports
// domain.ErrGenerationUnavailable but ingestion and retrieval work.
func NewPipelineService(
	registry *extractors.Registry,
	embeddingService driven.EmbeddingService,
	llmService driven.LLMService,
	vectorIndex driven.VectorIndex,
	docStore driven.DocumentStore,
	cfg PipelineConfig,
) (*PipelineService, error) {
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = chunker.DefaultChunkSize
	}
	overlap := cfg.ChunkOverlap
	if overlap < 0 {
		overlap = chunker.DefaultOverlap
	} else if overlap == 0 && cfg.ChunkSize == 0 {
		overlap = chunker.DefaultOverlap
	}

	splitter, err := chunker.New(chunkSize, overlap)
	if err != nil {
		return nil, fmt.Errorf("configure chunker: %w", err)
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	workers := cfg.IngestWorkers
	if workers <= 0 {
		workers = DefaultIngestWorkers
	}

	return &PipelineService{
		extractors:       registry,
		splitter:         splitter,
		embeddingService: embeddingService,
		llmService:       llmService,
		vectorIndex:      vectorIndex,
		docStore:         docStore,
		retriever:        NewRetriever(vectorIndex, embeddingService),
		assembler:        NewAssembler(cfg.ContextBudget),
		topK:             topK,
		workers:          workers,
		ingesting:        make(map[string]struct{}),
	}, nil
}

// SetPromptStore forwards a prompt store to the assembler.
func (p *PipelineService) SetPromptStore(store driven.PromptStore) {
	p.assembler.SetPromptStore(store)
}

// Rebuild loads all persisted index entries into the vector index.
// Called once at startup; the in-memory index is otherwise empty.
func (p *PipelineService) Rebuild(ctx context.Context) error {
	logger.Section("Index Rebuild")

	entries, err := p.docStore.ListEntries(ctx)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}
	if len(entries) == 0 {
		logger.Debug("No persisted entries")
		return nil
	}

	// Upsert per document so each batch stays atomic.
	byDoc := make(map[string][]domain.IndexEntry)
	for _, e := range entries {
		byDoc[e.DocumentID] = append(byDoc[e.DocumentID], e)
	}
	for docID, batch := range byDoc {
		if err := p.vectorIndex.Upsert(ctx, batch); err != nil {
			return fmt.Errorf("rebuild document %s: %w", docID, err)
		}
	}

	logger.Info("Rebuilt index with %d entries from %d documents", len(entries), len(byDoc))
	return nil
}

// DocumentID derives the deterministic document identity for a source
// path. Re-ingesting the same file always yields the same ID.
func DocumentID(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+abs)).String()
}

// Ingest extracts, chunks, embeds and indexes a single file.
// Re-ingesting the same path replaces its prior entries. On failure or
// cancellation after the prior entries were removed, the document's
// entries are rolled back out of the live index so no partial batch
// is ever visible. An ingest for a document that already has one in
// flight is rejected with domain.ErrIngestInProgress rather than
// interleaving delete and upsert steps for the same entries.
func (p *PipelineService) Ingest(ctx context.Context, path string) (*domain.Document, error) {
	logger.Section("Ingestion")
	logger.Debug("Source: %s", path)

	docID := DocumentID(path)
	if !p.beginIngest(docID) {
		return nil, fmt.Errorf("%w: %s", domain.ErrIngestInProgress, path)
	}
	defer p.endIngest(docID)

	content, err := p.extractors.Extract(ctx, path)
	if err != nil {
		return nil, err
	}

	abs, absErr := filepath.Abs(path)
	if absErr != nil {
		abs = filepath.Clean(path)
	}

	doc := &domain.Document{
		ID:         docID,
		SourcePath: abs,
		Content:    content,
		Metadata: map[string]string{
			"source_path": abs,
			"extension":   strings.ToLower(filepath.Ext(abs)),
		},
		ExtractedAt: time.Now().UTC(),
	}

	spans := p.splitter.Split(content)
	if len(spans) == 0 {
		return nil, fmt.Errorf("%w: %s produced no text", domain.ErrInvalidInput, path)
	}
	logger.Debug("Split into %d chunks", len(spans))

	entries, err := p.embedSpans(ctx, doc, spans)
	if err != nil {
		return nil, err
	}

	// Persist first, then swap the live index. The full entry batch is
	// built before anything becomes visible.
	if err := p.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	if err := p.docStore.SaveEntries(ctx, doc.ID, entries); err != nil {
		return nil, fmt.Errorf("save entries: %w", err)
	}

	if err := p.vectorIndex.DeleteDocument(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("remove prior entries: %w", err)
	}
	if err := p.vectorIndex.Upsert(ctx, entries); err != nil {
		// Roll back so the document is absent rather than half-indexed.
		if delErr := p.vectorIndex.DeleteDocument(context.WithoutCancel(ctx), doc.ID); delErr != nil {
			logger.Warn("Rollback of %s failed: %v", doc.ID, delErr)
		}
		return nil, fmt.Errorf("index entries: %w", err)
	}

	logger.Info("Ingested %s (%d chunks)", abs, len(entries))
	return doc, nil
}

// beginIngest claims the ingest slot for a document. It reports false
// when another ingest for the same document is already in flight.
func (p *PipelineService) beginIngest(docID string) bool {
	p.ingestMu.Lock()
	defer p.ingestMu.Unlock()
	if _, busy := p.ingesting[docID]; busy {
		return false
	}
	p.ingesting[docID] = struct{}{}
	return true
}

func (p *PipelineService) endIngest(docID string) {
	p.ingestMu.Lock()
	delete(p.ingesting, docID)
	p.ingestMu.Unlock()
}

// embedSpans converts chunk spans into index entries, batching calls
// to the embedding gateway.
func (p *PipelineService) embedSpans(
	ctx context.Context, doc *domain.Document, spans []chunker.Span,
) ([]domain.IndexEntry, error) {
	entries := make([]domain.IndexEntry, 0, len(spans))

	for offset := 0; offset < len(spans); offset += embedBatchSize {
		end := offset + embedBatchSize
		if end > len(spans) {
			end = len(spans)
		}
		batch := spans[offset:end]

		texts := make([]string, len(batch))
		for i, span := range batch {
			texts[i] = span.Text
		}

		vectors, err := withRetry(ctx, "embed batch", func() ([][]float32, error) {
			return p.embeddingService.EmbedBatch(ctx, texts)
		})
		if err != nil {
			return nil, fmt.Errorf("embed chunks %d-%d: %w", offset, end-1, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embedding gateway returned %d vectors for %d texts",
				len(vectors), len(batch))
		}

		for i, span := range batch {
			position := offset + i
			entries = append(entries, domain.IndexEntry{
				ChunkID:    domain.ChunkID(doc.ID, position),
				DocumentID: doc.ID,
				Position:   position,
				Vector:     vectors[i],
				Content:    span.Text,
				Metadata:   doc.Metadata,
			})
		}
	}

	return entries, nil
}

// IngestAll ingests several files, in parallel up to the worker limit.
// One file's failure does not abort the others; the returned error
// joins all per-file failures. Successfully ingested documents are
// returned in path order.
func (p *PipelineService) IngestAll(ctx context.Context, paths []string) ([]domain.Document, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	logger.Info("Ingesting %d files with %d workers", len(paths), p.workers)

	type outcome struct {
		idx int
		doc *domain.Document
		err error
	}

	jobs := make(chan int)
	results := make(chan outcome)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				doc, err := p.Ingest(ctx, paths[idx])
				if err != nil {
					err = fmt.Errorf("%s: %w", paths[idx], err)
				}
				results <- outcome{idx: idx, doc: doc, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range paths {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	docs := make([]*domain.Document, len(paths))
	var errs []error
	for res := range results {
		if res.err != nil {
			errs = append(errs, res.err)
			continue
		}
		docs[res.idx] = res.doc
	}

	var ingested []domain.Document
	for _, doc := range docs {
		if doc != nil {
			ingested = append(ingested, *doc)
		}
	}

	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return ingested, errors.Join(errs...)
}

// Answer retrieves relevant chunks for the question, assembles a
// bounded prompt and invokes the generation gateway. An empty index
// produces an answer with no citations, not an error.
func (p *PipelineService) Answer(ctx context.Context, question string, opts driving.AnswerOptions) (*domain.Answer, error) {
	if p.llmService == nil {
		return nil, domain.ErrGenerationUnavailable
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = p.topK
	}

	result, err := p.retriever.Retrieve(ctx, domain.Query{Text: question, TopK: topK})
	if err != nil {
		return nil, err
	}

	prompt, citations, err := p.assembler.Assemble(question, result, opts.ContextBudget)
	if err != nil {
		return nil, err
	}

	genOpts := driven.GenerateOptions{}
	if opts.Conversational {
		genOpts.System = p.assembler.loadPrompt(driven.PromptChatSystem, builtinChatSystemPrompt)
	}

	text, err := withRetry(ctx, "generate", func() (string, error) {
		return p.llmService.Generate(ctx, prompt, genOpts)
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	p.hydrateCitations(ctx, citations)

	return &domain.Answer{
		Text:      strings.TrimSpace(text),
		Citations: citations,
	}, nil
}

// hydrateCitations fills in source paths from the document store.
// A missing document leaves the path empty rather than failing the
// whole answer.
func (p *PipelineService) hydrateCitations(ctx context.Context, citations []domain.Citation) {
	cache := make(map[string]string)
	for i := range citations {
		docID := citations[i].DocumentID
		path, ok := cache[docID]
		if !ok {
			doc, err := p.docStore.GetDocument(ctx, docID)
			if err != nil {
				logger.Debug("Citation document %s unavailable: %v", docID, err)
				cache[docID] = ""
				continue
			}
			path = doc.SourcePath
			cache[docID] = path
		}
		citations[i].SourcePath = path
	}
}

// Answerable reports whether the generation gateway is configured.
func (p *PipelineService) Answerable() bool {
	return p.llmService != nil
}

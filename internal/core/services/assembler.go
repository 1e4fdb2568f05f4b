package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/sibyl-cli/internal/core/domain"
	"github.com/custodia-labs/sibyl-cli/internal/core/ports/driven"
	"github.com/custodia-labs/sibyl-cli/internal/logger"
)

// DefaultContextBudget is the prompt context budget in characters.
// Characters stand in for tokens: both gateways accept prompts well
// above this size, so a simple bound is enough to keep prompts and
// costs predictable.
const DefaultContextBudget = 6000

// Built-in prompt templates, used when no prompt store is configured.
var (
	builtinAnswerPrompt = `Answer the question using only the context below. Cite the context sections you relied on. If the context does not contain the answer, say you don't know rather than guessing.

Context:
%s

Question: %s

Answer:`

	builtinAnswerEmptyPrompt = `No relevant context was found in the indexed documents for this question. Say that the indexed corpus does not cover the question, then answer from general knowledge only if you can do so reliably, clearly marking it as outside the corpus.

Question: %s

Answer:`

	builtinChatSystemPrompt = `You are Sibyl, an assistant that answers questions from a local document corpus. Ground every answer in the retrieved context and cite the sections you used. When the corpus does not cover a question, say so plainly.`
)

// Ensure Assembler implements PromptStoreAware.
var _ driven.PromptStoreAware = (*Assembler)(nil)

// Assembler builds the generation prompt from retrieved chunks.
// Chunks are taken greedily in rank order until the context budget is
// exhausted; a chunk that does not fit whole is skipped along with all
// lower-ranked chunks, so the included set is always a rank prefix.
type Assembler struct {
	budget      int
	promptStore driven.PromptStore
}

// NewAssembler creates an assembler with the given character budget.
// A non-positive budget falls back to DefaultContextBudget.
func NewAssembler(budget int) *Assembler {
	if budget <= 0 {
		budget = DefaultContextBudget
	}
	return &Assembler{budget: budget}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (a *Assembler) SetPromptStore(store driven.PromptStore) {
	a.promptStore = store
}

// Assemble renders the prompt for a question and its retrieval result.
// The returned citations list exactly the chunks included in the
// prompt, in inclusion order. An empty result produces the no-context
// prompt and no citations. A positive budget overrides the configured
// one for this call.
func (a *Assembler) Assemble(question string, result domain.RetrievalResult, budget int) (string, []domain.Citation, error) {
	if budget <= 0 {
		budget = a.budget
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	if result.Empty() {
		logger.Debug("No context retrieved, using empty-context prompt")
		tmpl := a.loadPrompt(driven.PromptAnswerEmpty, builtinAnswerEmptyPrompt)
		return fmt.Sprintf(tmpl, question), nil, nil
	}

	var sections []string
	var citations []domain.Citation
	used := 0

	for i, sc := range result.Chunks {
		source := sc.Chunk.SourcePath
		if source == "" {
			source = sc.Chunk.DocumentID
		}
		section := fmt.Sprintf("[context %d] %s (chunk %d)\n%s",
			i+1, source, sc.Chunk.Position, sc.Chunk.Content)
		if used+len(section) > budget {
			logger.Debug("Budget exhausted after %d of %d chunks", i, len(result.Chunks))
			break
		}
		used += len(section)
		sections = append(sections, section)
		citations = append(citations, domain.Citation{
			ChunkID:    sc.Chunk.ID,
			DocumentID: sc.Chunk.DocumentID,
			Position:   sc.Chunk.Position,
		})
	}

	if len(sections) == 0 {
		// Even the top chunk exceeds the budget.
		tmpl := a.loadPrompt(driven.PromptAnswerEmpty, builtinAnswerEmptyPrompt)
		return fmt.Sprintf(tmpl, question), nil, nil
	}

	logger.Info("Assembled prompt with %d context sections (%d chars)", len(sections), used)

	tmpl := a.loadPrompt(driven.PromptAnswer, builtinAnswerPrompt)
	prompt := fmt.Sprintf(tmpl, strings.Join(sections, "\n\n"), question)
	return prompt, citations, nil
}

// loadPrompt fetches a template from the prompt store, falling back
// to the built-in default.
func (a *Assembler) loadPrompt(name, fallback string) string {
	if a.promptStore == nil {
		return fallback
	}
	tmpl, err := a.promptStore.Load(name)
	if err != nil || tmpl == "" {
		logger.Warn("Prompt %q unavailable, using built-in default: %v", name, err)
		return fallback
	}
	return tmpl
}

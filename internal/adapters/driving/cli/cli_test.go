package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/sibyl-cli/internal/core/domain"
	"github.com/custodia-labs/sibyl-cli/internal/core/ports/driving"
)

// --- Mock implementations ---

// mockPipeline implements driving.Pipeline for testing.
type mockPipeline struct {
	answer     *domain.Answer
	answerErr  error
	docs       []domain.Document
	ingestErr  error
	answerable bool
	lastOpts   driving.AnswerOptions
}

func (m *mockPipeline) Ingest(_ context.Context, path string) (*domain.Document, error) {
	if m.ingestErr != nil {
		return nil, m.ingestErr
	}
	return &domain.Document{ID: "doc-1", SourcePath: path}, nil
}

func (m *mockPipeline) IngestAll(_ context.Context, paths []string) ([]domain.Document, error) {
	if m.ingestErr != nil {
		return nil, m.ingestErr
	}
	docs := make([]domain.Document, len(paths))
	for i, p := range paths {
		docs[i] = domain.Document{ID: p, SourcePath: p}
	}
	return docs, nil
}

func (m *mockPipeline) Answer(_ context.Context, _ string, opts driving.AnswerOptions) (*domain.Answer, error) {
	m.lastOpts = opts
	if m.answerErr != nil {
		return nil, m.answerErr
	}
	return m.answer, nil
}

func (m *mockPipeline) Answerable() bool { return m.answerable }

var _ driving.Pipeline = (*mockPipeline)(nil)

// mockDocumentService implements driving.DocumentService for testing.
type mockDocumentService struct {
	docs    []domain.Document
	listErr error
	deleted []string
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.docs, m.listErr
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

var _ driving.DocumentService = (*mockDocumentService)(nil)

// execute runs the root command with the given services and args,
// returning captured output.
func execute(t *testing.T, p driving.Pipeline, docs driving.DocumentService, args ...string) (string, error) {
	t.Helper()

	oldPipeline, oldDocs := pipeline, documentService
	pipeline, documentService = p, docs
	t.Cleanup(func() {
		pipeline, documentService = oldPipeline, oldDocs
		rootCmd.SetArgs(nil)
		// Flag values persist across Execute calls.
		askTopK, askBudget, askJSON = 0, 0, false
		flagWatch = false
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return buf.String(), err
}

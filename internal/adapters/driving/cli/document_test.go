package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sibyl-cli/internal/core/domain"
)

func TestDocumentListCmd_Empty(t *testing.T) {
	out, err := execute(t, nil, &mockDocumentService{}, "document", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No documents indexed.")
}

func TestDocumentListCmd_ShowsDocuments(t *testing.T) {
	docs := &mockDocumentService{docs: []domain.Document{
		{ID: "doc-1", SourcePath: "/corpus/a.txt"},
		{ID: "doc-2", SourcePath: "/corpus/b.md"},
	}}

	out, err := execute(t, nil, docs, "document", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Documents (2):")
	assert.Contains(t, out, "/corpus/a.txt")
	assert.Contains(t, out, "/corpus/b.md")
}

func TestDocumentGetCmd(t *testing.T) {
	docs := &mockDocumentService{docs: []domain.Document{
		{ID: "doc-1", SourcePath: "/corpus/a.txt", Content: "hello",
			Metadata: map[string]string{"extension": ".txt"}},
	}}

	out, err := execute(t, nil, docs, "document", "get", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "doc-1")
	assert.Contains(t, out, "/corpus/a.txt")
	assert.Contains(t, out, "Characters:  5")

	_, err = execute(t, nil, docs, "document", "get", "missing")
	assert.Error(t, err)
}

func TestDocumentDeleteCmd(t *testing.T) {
	docs := &mockDocumentService{}

	out, err := execute(t, nil, docs, "document", "delete", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted document: doc-1")
	assert.Equal(t, []string{"doc-1"}, docs.deleted)
}

func TestDocumentCmds_NotConfigured(t *testing.T) {
	_, err := execute(t, nil, nil, "document", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

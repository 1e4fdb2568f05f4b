package pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
}

func (m *mockRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return m.output, m.err
}

func writeTempPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 stub"), 0o600))
	return path
}

func TestExtensions(t *testing.T) {
	e := New()
	assert.Equal(t, []string{".pdf"}, e.Extensions())
}

func TestExtract(t *testing.T) {
	path := writeTempPDF(t)
	e := New(WithRunner(&mockRunner{output: []byte("page one\ftrailing page")}))

	text, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "page one\n\ntrailing page", text)
}

func TestExtract_MissingFile(t *testing.T) {
	e := New(WithRunner(&mockRunner{output: []byte("never reached")}))

	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "absent.pdf"))
	assert.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestExtract_RunnerFailure(t *testing.T) {
	path := writeTempPDF(t)
	e := New(WithRunner(&mockRunner{err: errors.New("boom")}))

	_, err := e.Extract(context.Background(), path)
	assert.ErrorContains(t, err, "pdftotext")
}

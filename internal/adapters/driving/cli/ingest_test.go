package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCollectSources_Files(t *testing.T) {
	dir := t.TempDir()
	a := writeTestFile(t, dir, "a.txt", "alpha")
	b := writeTestFile(t, dir, "b.md", "beta")

	files, dirs, err := collectSources([]string{a, b})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, files)
	assert.Empty(t, dirs)
}

func TestCollectSources_WalksDirectories(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "alpha")
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0755))
	writeTestFile(t, sub, "b.txt", "beta")

	files, dirs, err := collectSources([]string{dir})
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Equal(t, []string{dir}, dirs)
}

func TestCollectSources_FiltersUnsupported(t *testing.T) {
	oldSupported := supportedSource
	supportedSource = func(path string) bool { return filepath.Ext(path) == ".txt" }
	defer func() { supportedSource = oldSupported }()

	dir := t.TempDir()
	keep := writeTestFile(t, dir, "keep.txt", "kept")
	writeTestFile(t, dir, "skip.bin", "skipped")

	files, _, err := collectSources([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{keep}, files)
}

func TestCollectSources_MissingPath(t *testing.T) {
	_, _, err := collectSources([]string{"/does/not/exist"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stat")
}

func TestIngestCmd_IngestsFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeTestFile(t, dir, "a.txt", "alpha")

	p := &mockPipeline{}
	out, err := execute(t, p, nil, "ingest", a)
	require.NoError(t, err)
	assert.Contains(t, out, "ingested "+a)
	assert.Contains(t, out, "1 of 1 files ingested")
}

func TestIngestCmd_NoSupportedFiles(t *testing.T) {
	oldSupported := supportedSource
	supportedSource = func(string) bool { return false }
	defer func() { supportedSource = oldSupported }()

	dir := t.TempDir()
	writeTestFile(t, dir, "skip.bin", "nope")

	_, err := execute(t, &mockPipeline{}, nil, "ingest", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no supported files")
}

func TestIngestCmd_NotConfigured(t *testing.T) {
	dir := t.TempDir()
	a := writeTestFile(t, dir, "a.txt", "alpha")

	_, err := execute(t, nil, nil, "ingest", a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline not configured")
}

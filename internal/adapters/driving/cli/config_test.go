package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockConfigStore implements driven.ConfigStore backed by a map.
type mockConfigStore struct {
	values map[string]any
	setErr error
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	if v, ok := m.values[key].(string); ok {
		return v
	}
	return ""
}

func (m *mockConfigStore) GetInt(key string) int {
	if v, ok := m.values[key].(int64); ok {
		return int(v)
	}
	return 0
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	if v, ok := m.values[key].(float64); ok {
		return v
	}
	return 0
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error { return nil }

// withConfigStore swaps the package config store for the test.
func withConfigStore(t *testing.T, store *mockConfigStore) {
	t.Helper()
	old := configStore
	configStore = store
	t.Cleanup(func() { configStore = old })
}

func TestConfigShowCmd(t *testing.T) {
	store := newMockConfigStore()
	store.values["provider"] = "ollama"
	withConfigStore(t, store)

	out, err := execute(t, nil, nil, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "provider")
	assert.Contains(t, out, "ollama")
	assert.Contains(t, out, "(default)")
}

func TestConfigGetCmd(t *testing.T) {
	store := newMockConfigStore()
	store.values["chunking.size"] = int64(800)
	withConfigStore(t, store)

	out, err := execute(t, nil, nil, "config", "get", "chunking.size")
	require.NoError(t, err)
	assert.Contains(t, out, "800")
}

func TestConfigGetCmd_Unset(t *testing.T) {
	withConfigStore(t, newMockConfigStore())

	_, err := execute(t, nil, nil, "config", "get", "retrieval.top_k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not set")
}

func TestConfigSetCmd_CoercesNumbers(t *testing.T) {
	store := newMockConfigStore()
	withConfigStore(t, store)

	out, err := execute(t, nil, nil, "config", "set", "retrieval.top_k", "8")
	require.NoError(t, err)
	assert.Contains(t, out, "retrieval.top_k = 8")
	assert.Equal(t, int64(8), store.values["retrieval.top_k"])

	_, err = execute(t, nil, nil, "config", "set", "embedding.rate", "2.5")
	require.NoError(t, err)
	assert.Equal(t, 2.5, store.values["embedding.rate"])

	_, err = execute(t, nil, nil, "config", "set", "provider", "openai")
	require.NoError(t, err)
	assert.Equal(t, "openai", store.values["provider"])
}

func TestConfigCmds_NotConfigured(t *testing.T) {
	old := configStore
	configStore = nil
	t.Cleanup(func() { configStore = old })

	_, err := execute(t, nil, nil, "config", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config store not configured")
}

// Command sibyl answers questions over a local document corpus. It
// ingests files into a persistent index and grounds every answer in
// the indexed text.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/sibyl-cli/internal/adapters/driven/config/file"
	ollamaembed "github.com/custodia-labs/sibyl-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/sibyl-cli/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/sibyl-cli/internal/adapters/driven/embedding/ratelimit"
	ollamallm "github.com/custodia-labs/sibyl-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/sibyl-cli/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/sibyl-cli/internal/adapters/driven/storage/sqlite"
	vectormem "github.com/custodia-labs/sibyl-cli/internal/adapters/driven/vectorindex/memory"
	"github.com/custodia-labs/sibyl-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/sibyl-cli/internal/core/ports/driven"
	"github.com/custodia-labs/sibyl-cli/internal/core/services"
	"github.com/custodia-labs/sibyl-cli/internal/extractors"
	"github.com/custodia-labs/sibyl-cli/internal/extractors/markdown"
	"github.com/custodia-labs/sibyl-cli/internal/extractors/pdf"
	"github.com/custodia-labs/sibyl-cli/internal/extractors/plaintext"
	"github.com/custodia-labs/sibyl-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetWiring(buildServices)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildServices constructs the full service graph from configuration.
// Runs once, after persistent flags are parsed, before the first
// command that needs services.
func buildServices() error {
	configDir := cli.ConfigDir()

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	promptDir := ""
	dataDir := ""
	if configDir != "" {
		promptDir = filepath.Join(configDir, "prompts")
		dataDir = filepath.Join(configDir, "data")
	}

	promptStore, err := file.NewPromptStore(promptDir)
	if err != nil {
		return fmt.Errorf("open prompt store: %w", err)
	}

	docStore, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}

	embeddingService, llmService, err := buildProvider(configStore)
	if err != nil {
		return err
	}

	rate := configStore.GetFloat("embedding.rate")
	limited := ratelimit.Wrap(embeddingService, rate)

	vectorIndex, err := vectormem.NewIndex(limited.Dimensions())
	if err != nil {
		return fmt.Errorf("create vector index: %w", err)
	}

	registry := extractors.NewRegistry(
		plaintext.New(),
		markdown.New(),
		pdf.New(),
	)

	pipeline, err := services.NewPipelineService(
		registry,
		limited,
		llmService,
		vectorIndex,
		docStore,
		services.PipelineConfig{
			ChunkSize:     configStore.GetInt("chunking.size"),
			ChunkOverlap:  configStore.GetInt("chunking.overlap"),
			TopK:          configStore.GetInt("retrieval.top_k"),
			ContextBudget: configStore.GetInt("retrieval.context_budget"),
			IngestWorkers: configStore.GetInt("ingest.workers"),
		},
	)
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}
	pipeline.SetPromptStore(promptStore)

	if err := pipeline.Rebuild(context.Background()); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	documentService := services.NewDocumentService(docStore, vectorIndex)

	cli.SetServices(pipeline, documentService, configStore)
	cli.SetSupportedSource(registry.Supported)
	return nil
}

// buildProvider selects the embedding and generation backends from
// the provider config key. The LLM service may be nil: ingestion and
// retrieval work without a generation model.
func buildProvider(cfg driven.ConfigStore) (driven.EmbeddingService, driven.LLMService, error) {
	provider := cfg.GetString("provider")
	if provider == "" {
		provider = "ollama"
	}

	// Credentials and endpoints can come from the environment so a
	// config file never has to hold secrets.
	embedBase := os.Getenv("SIBYL_EMBEDDING_BASE_URL")

	switch provider {
	case "ollama":
		baseURL := cfg.GetString("ollama.base_url")
		if embedBase != "" {
			baseURL = embedBase
		}
		embedding := ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    baseURL,
			Model:      cfg.GetString("ollama.embedding_model"),
			Dimensions: cfg.GetInt("embedding.dimensions"),
		})
		llm, err := ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: cfg.GetString("ollama.base_url"),
			Model:   cfg.GetString("ollama.llm_model"),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("ollama: %w", err)
		}
		return embedding, llm, nil

	case "openai":
		apiKey := cfg.GetString("openai.api_key")
		if envKey := os.Getenv("OPENAI_API_KEY"); envKey != "" {
			apiKey = envKey
		}

		baseURL := cfg.GetString("openai.base_url")
		if embedBase != "" {
			baseURL = embedBase
		}
		embedding, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     apiKey,
			BaseURL:    baseURL,
			Model:      cfg.GetString("openai.embedding_model"),
			Dimensions: cfg.GetInt("embedding.dimensions"),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("openai: %w", err)
		}

		llm, err := openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  apiKey,
			BaseURL: cfg.GetString("openai.base_url"),
			Model:   cfg.GetString("openai.llm_model"),
		})
		if err != nil {
			// Embedding works without generation; degrade rather
			// than fail so ingest and document commands still run.
			logger.Warn("Generation disabled: %v", err)
			return embedding, nil, nil
		}
		return embedding, llm, nil

	default:
		return nil, nil, fmt.Errorf("unknown provider %q (expected ollama or openai)", provider)
	}
}

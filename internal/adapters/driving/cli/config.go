package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// Configuration keys recognised by the pipeline wiring.
var knownConfigKeys = []string{
	"provider",
	"openai.api_key",
	"openai.base_url",
	"openai.embedding_model",
	"openai.llm_model",
	"ollama.base_url",
	"ollama.embedding_model",
	"ollama.llm_model",
	"embedding.rate",
	"embedding.dimensions",
	"chunking.size",
	"chunking.overlap",
	"retrieval.top_k",
	"retrieval.context_budget",
	"ingest.workers",
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change settings such as the model provider, chunking
parameters and retrieval tuning. Values persist to the config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Println("Configuration:")
	for _, key := range knownConfigKeys {
		val, ok := configStore.Get(key)
		if !ok {
			cmd.Printf("  %-26s (default)\n", key)
			continue
		}
		cmd.Printf("  %-26s %v\n", key, val)
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	val, ok := configStore.Get(args[0])
	if !ok {
		return fmt.Errorf("key %q is not set", args[0])
	}
	cmd.Printf("%v\n", val)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]

	// Store numbers as numbers so typed getters work.
	var value any = raw
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		value = n
	} else if f, err := strconv.ParseFloat(raw, 64); err == nil {
		value = f
	}

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	cmd.Printf("%s = %v\n", key, value)
	return nil
}

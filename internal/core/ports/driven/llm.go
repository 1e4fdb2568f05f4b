package driven

import "context"

// LLMService produces the final answer text from an assembled prompt.
//
// Implementations may include:
//   - OpenAI (gpt-4o-mini, gpt-3.5-turbo)
//   - Ollama (local models)
//
// Failures are reported as *domain.GatewayError.
type LLMService interface {
	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// System is an optional system preamble framing the model's role.
	System string

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}

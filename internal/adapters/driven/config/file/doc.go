// Package file provides file-based configuration adapters.
//
// ConfigStore persists key-value settings as TOML at ~/.sibyl/config.toml,
// flattening nested tables into dot-notation keys. PromptStore exposes
// user-editable LLM prompt templates under ~/.sibyl/prompts/ with embedded
// defaults.
package file

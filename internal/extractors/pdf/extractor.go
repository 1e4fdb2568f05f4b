// Package pdf extracts text from PDF files by shelling out to the
// Poppler pdftotext tool.
//
// This is the one deterministic extractor for PDFs: a single tool, a
// fixed flag set, the same text for the same input every run. No
// library fallback chain.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/custodia-labs/sibyl-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// CommandRunner runs an external command and returns its stdout.
// Seam for testing without a pdftotext binary.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner is the production CommandRunner.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Extractor handles PDF documents via pdftotext.
type Extractor struct {
	runner CommandRunner
}

// Option configures the extractor.
type Option func(*Extractor)

// WithRunner overrides the command runner (used by tests).
func WithRunner(r CommandRunner) Option {
	return func(e *Extractor) {
		if r != nil {
			e.runner = r
		}
	}
}

// New creates a new PDF extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{runner: execRunner{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// Extract runs pdftotext with layout-free output to stdout.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", err
	}

	out, err := e.runner.Run(ctx, "pdftotext", "-q", "-enc", "UTF-8", path, "-")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("pdftotext: %s: %w", strings.TrimSpace(string(exitErr.Stderr)), err)
		}
		return "", fmt.Errorf("pdftotext: %w", err)
	}

	text := strings.ReplaceAll(string(out), "\r\n", "\n")
	// Strip the form-feed page separators pdftotext emits.
	text = strings.ReplaceAll(text, "\f", "\n\n")
	return text, nil
}

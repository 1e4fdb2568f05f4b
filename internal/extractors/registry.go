// Package extractors converts source files into plain text.
//
// Extraction is a closed set of concrete extractors selected by file
// extension. PDF extraction deliberately uses a single deterministic
// tool (pdftotext) rather than a library fallback chain, so the same
// input always yields the same text and the same chunk boundaries.
package extractors

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/sibyl-cli/internal/core/domain"
	"github.com/custodia-labs/sibyl-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps file extensions to extractors.
type Registry struct {
	byExtension map[string]driven.Extractor
}

// NewRegistry creates a registry over the given extractors. A later
// extractor claiming an extension overrides an earlier one.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	r := &Registry{byExtension: make(map[string]driven.Extractor)}
	for _, e := range extractors {
		for _, ext := range e.Extensions() {
			r.byExtension[strings.ToLower(ext)] = e
		}
	}
	return r
}

// Supported reports whether any extractor handles the path.
func (r *Registry) Supported(path string) bool {
	_, ok := r.byExtension[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extract selects the extractor for path's extension and runs it.
// Every failure comes back as a *domain.ExtractionError so batch
// ingestion can isolate it to the one document.
func (r *Registry) Extract(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	e, ok := r.byExtension[ext]
	if !ok {
		return "", &domain.ExtractionError{
			SourcePath: path,
			Err:        fmt.Errorf("%w: %q", domain.ErrUnsupportedType, ext),
		}
	}

	text, err := e.Extract(ctx, path)
	if err != nil {
		var xerr *domain.ExtractionError
		if errors.As(err, &xerr) {
			return "", err
		}
		return "", &domain.ExtractionError{SourcePath: path, Err: err}
	}
	return text, nil
}

package driven

import "context"

// Extractor converts a binary source file into plain text.
// Extractors form a closed set selected by file extension; failures
// are reported as *domain.ExtractionError.
type Extractor interface {
	// Extensions returns the lower-case file extensions this
	// extractor handles, including the leading dot.
	Extensions() []string

	// Extract reads the file at path and returns its text content.
	Extract(ctx context.Context, path string) (string, error)
}

// ExtractorRegistry selects the extractor for a source path.
type ExtractorRegistry interface {
	// Extract picks the extractor for path's extension and runs it.
	// Returns domain.ErrUnsupportedType (wrapped in an
	// ExtractionError) when no extractor matches.
	Extract(ctx context.Context, path string) (string, error)

	// Supported reports whether any extractor handles the path.
	Supported(path string) bool
}

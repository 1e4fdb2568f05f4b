package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfiguration indicates an invalid pipeline configuration,
	// such as a chunk overlap greater than or equal to the chunk size.
	// Fatal: surfaced immediately, never retried.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrDimensionMismatch indicates an embedding vector whose length does
	// not match the vector index's configured dimensionality. Treated as a
	// fatal configuration error.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrRetrievalUnavailable indicates the embedding gateway stayed
	// unreachable after the retry policy was exhausted. Surfaced to the
	// caller of answer; no partial answer is fabricated.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrGenerationUnavailable indicates the generation gateway stayed
	// unreachable after the retry policy was exhausted.
	ErrGenerationUnavailable = errors.New("generation unavailable")

	// ErrUnsupportedType indicates no extractor handles the file type.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIngestInProgress indicates an ingestion for the same source
	// is already running.
	ErrIngestInProgress = errors.New("ingest in progress")
)

// ExtractionError indicates a single document could not be read or parsed.
// It aborts ingestion of that document only; sibling documents in a batch
// are unaffected.
type ExtractionError struct {
	// SourcePath is the file that failed.
	SourcePath string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.SourcePath, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// GatewayError indicates a failure calling an external gateway
// (embedding or generation). Transient failures are retried with
// exponential backoff; permanent ones are surfaced immediately.
type GatewayError struct {
	// Op names the failed operation ("embed", "generate").
	Op string

	// Transient reports whether the failure is worth retrying
	// (timeouts, connection resets, 429, 5xx).
	Transient bool

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *GatewayError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("%s: %s gateway error: %v", e.Op, kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a transient gateway error.
func IsTransient(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge) && ge.Transient
}

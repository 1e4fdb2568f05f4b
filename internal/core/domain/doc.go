// Package domain defines the core business entities for Sibyl.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested document with extracted text
//   - Chunk: A retrievable span of a document
//   - IndexEntry: A chunk plus its embedding vector, owned by the vector index
//   - RetrievalResult: Ranked chunks for a query
//   - Answer: Generated text with citations back to chunks
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

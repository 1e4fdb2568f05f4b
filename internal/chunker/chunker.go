// Package chunker splits extracted document text into overlapping
// spans suitable for embedding and retrieval.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sibyl-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of bytes per chunk.
const DefaultChunkSize = 1000

// DefaultOverlap is the default number of overlapping bytes between
// consecutive chunks.
const DefaultOverlap = 200

// sentenceEnders are boundary markers preferred over a hard cut,
// strongest first. A paragraph break is checked before any of these.
var sentenceEnders = []string{". ", "! ", "? ", "\n"}

// Span is a bounded slice of the source text. Start and End are byte
// offsets; Text equals the source text between them.
type Span struct {
	Start int
	End   int
	Text  string
}

// Splitter produces deterministic overlapping spans covering a text
// with no gaps. Splitting prefers paragraph and sentence boundaries
// near the maximum size, falling back to a hard cut only when no
// natural boundary exists within the tolerance window.
type Splitter struct {
	maxSize   int
	overlap   int
	tolerance int
}

// New creates a Splitter. It fails with domain.ErrInvalidConfiguration
// when maxSize is not positive, overlap is negative, or overlap is not
// strictly smaller than maxSize.
func New(maxSize, overlap int) (*Splitter, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d",
			domain.ErrInvalidConfiguration, maxSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d",
			domain.ErrInvalidConfiguration, overlap)
	}
	if overlap >= maxSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d",
			domain.ErrInvalidConfiguration, overlap, maxSize)
	}

	tolerance := maxSize / 4
	if tolerance < 1 {
		tolerance = 1
	}

	return &Splitter{
		maxSize:   maxSize,
		overlap:   overlap,
		tolerance: tolerance,
	}, nil
}

// MaxSize returns the configured maximum span size.
func (s *Splitter) MaxSize() int { return s.maxSize }

// Overlap returns the configured overlap window.
func (s *Splitter) Overlap() int { return s.overlap }

// Split returns the spans covering text. Pure: identical input always
// yields identical spans, so a caller may restart iteration simply by
// calling Split again. Whitespace-only text yields no spans.
func (s *Splitter) Split(text string) []Span {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	length := len(text)
	estimated := length/(s.maxSize-s.overlap) + 1
	spans := make([]Span, 0, estimated)

	start := 0
	for start < length {
		end := s.cut(text, start)

		spans = append(spans, Span{
			Start: start,
			End:   end,
			Text:  text[start:end],
		})

		if end == length {
			break
		}
		// Advance to the next rune start so the overlap window never
		// begins mid-rune.
		prev := start
		start = end - s.overlap
		for start < length && !utf8.RuneStart(text[start]) {
			start++
		}
		// A rune-aligned hard cut can land within 3 bytes of the
		// previous start when overlap is close to maxSize; force
		// progress by at least one rune.
		if start <= prev {
			_, n := utf8.DecodeRuneInString(text[prev:])
			start = prev + n
		}
	}

	return spans
}

// cut picks the end offset for a span beginning at start. A natural
// boundary is only taken if it keeps the span longer than the overlap,
// otherwise the next iteration would not advance.
func (s *Splitter) cut(text string, start int) int {
	end := start + s.maxSize
	if end >= len(text) {
		return len(text)
	}

	windowStart := end - s.tolerance
	if min := start + s.overlap + 1; windowStart < min {
		windowStart = min
	}
	if windowStart < end {
		window := text[windowStart:end]

		// Paragraph break wins over any sentence boundary.
		if i := strings.LastIndex(window, "\n\n"); i >= 0 {
			return windowStart + i + 2
		}
		for _, marker := range sentenceEnders {
			if i := strings.LastIndex(window, marker); i >= 0 {
				return windowStart + i + len(marker)
			}
		}
	}

	// No natural boundary within tolerance: hard cut, backed off to
	// the nearest rune start so a multi-byte rune is never severed.
	for end > start && !utf8.RuneStart(text[end]) {
		end--
	}
	if end == start {
		// The span is smaller than one rune; take it whole.
		_, n := utf8.DecodeRuneInString(text[start:])
		end = start + n
	}
	return end
}

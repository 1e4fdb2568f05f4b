// Package markdown extracts Markdown files, simplifying formatting so
// chunk boundaries fall on prose rather than markup.
package markdown

import (
	"context"
	"os"
	"regexp"
	"strings"

	"github.com/custodia-labs/sibyl-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles Markdown documents.
type Extractor struct{}

// New creates a new Markdown extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".md", ".markdown"}
}

// Extract reads the file and strips common markdown formatting.
func (e *Extractor) Extract(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	return stripMarkdown(content), nil
}

var (
	codeBlockRe  = regexp.MustCompile("(?s)```[^`]*```")
	inlineCodeRe = regexp.MustCompile("`([^`]+)`")
	imageRe      = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	linkRe       = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headingRe    = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	emphasisRe   = regexp.MustCompile(`(\*{1,3}|_{1,3})([^*_]+)(\*{1,3}|_{1,3})`)
)

// stripMarkdown removes common markdown formatting for plain text
// content. Simplified: handles the common cases, not a full parser.
func stripMarkdown(content string) string {
	content = codeBlockRe.ReplaceAllString(content, "")
	content = inlineCodeRe.ReplaceAllString(content, "$1")
	content = imageRe.ReplaceAllString(content, "")
	content = linkRe.ReplaceAllString(content, "$1")
	content = headingRe.ReplaceAllString(content, "")
	content = emphasisRe.ReplaceAllString(content, "$2")
	return strings.TrimSpace(content)
}

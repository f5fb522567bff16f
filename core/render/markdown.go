// Package render provides output renderers for scrape.
// This file implements the Markdown renderer, which joins page Markdown
// with horizontal rules.
package render

import (
	"strings"

	"github.com/gaurav-prasanna/scrape/core"
)

const pageRule = "\n\n---\n\n"

// MarkdownRenderer writes Markdown pages as-is.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render joins the pages, separated by a horizontal rule.
func (r *MarkdownRenderer) Render(pages []core.Page) ([]byte, error) {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		if body := strings.TrimSpace(p.Body); body != "" {
			parts = append(parts, body)
		}
	}
	if len(parts) == 0 {
		return nil, nil
	}
	return []byte(strings.Join(parts, pageRule) + "\n"), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

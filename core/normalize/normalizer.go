// Package normalize converts cleaned HTML into Markdown, the intermediate
// format used by the PDF and Markdown renderers.
package normalize

import (
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// MarkdownNormalizer converts HTML to Markdown using html-to-markdown.
type MarkdownNormalizer struct {
	domain string
}

// New creates a MarkdownNormalizer. Relative links are resolved against
// domain when it is not empty.
func New(domain string) *MarkdownNormalizer {
	return &MarkdownNormalizer{domain: domain}
}

// Normalize converts a cleaned HTML fragment into Markdown with at most one
// blank line between blocks.
func (n *MarkdownNormalizer) Normalize(html string) (string, error) {
	var opts []converter.ConvertOptionFunc
	if n.domain != "" {
		opts = append(opts, converter.WithDomain(n.domain))
	}
	markdown, err := htmltomarkdown.ConvertString(html, opts...)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	markdown = blankRuns.ReplaceAllString(markdown, "\n\n")
	return strings.TrimSpace(markdown), nil
}

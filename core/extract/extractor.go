// Package extract pulls readable content out of HTML pages.
//
// HTMLExtractor isolates the main content fragment for Markdown and PDF
// output. Parser produces filtered lines of text for text and print output.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noiseSelectors are HTML elements removed before extraction.
var noiseSelectors = []string{
	"script", "style", "noscript", "template",
	"nav", "footer", "header", "aside",
	"iframe", "video", "audio", "object", "embed",
	"svg", "canvas",
	"form", "button", "input", "select", "textarea",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement", ".cookie-banner",
}

// imageSelectors are removed too unless images are kept.
var imageSelectors = []string{"img", "picture", "figure", "figcaption"}

// containers are tried in order when looking for the main content.
var containers = []string{"main", "article", "[role=main]", "body"}

// HTMLExtractor strips noise from HTML and returns the main content fragment.
type HTMLExtractor struct {
	// KeepImages leaves <img> and <figure> elements in the fragment.
	KeepImages bool
}

// New creates an HTMLExtractor.
func New() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Extract returns the outer HTML of the best content container with noise
// elements removed. Documents without any container are returned whole.
func (e *HTMLExtractor) Extract(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	content := e.mainContent(doc)
	if content == nil {
		return doc.Html()
	}
	result, err := goquery.OuterHtml(content)
	if err != nil {
		return "", fmt.Errorf("serializing content: %w", err)
	}
	return result, nil
}

// Title returns the document <title>, or the first <h1> when there is none.
func Title(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	if title := collapse(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return collapse(doc.Find("h1").First().Text())
}

func (e *HTMLExtractor) mainContent(doc *goquery.Document) *goquery.Selection {
	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}
	if !e.KeepImages {
		for _, sel := range imageSelectors {
			doc.Find(sel).Remove()
		}
	}
	for _, sel := range containers {
		if found := doc.Find(sel); found.Length() > 0 {
			return found.First()
		}
	}
	return nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

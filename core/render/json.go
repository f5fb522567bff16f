package render

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/scrape/core"
)

// Document is the JSON output for one output unit.
type Document struct {
	Pages []PageDocument `json:"pages"`
}

// PageDocument describes one input page.
type PageDocument struct {
	Source    string        `json:"source"`
	Title     string        `json:"title,omitempty"`
	Content   PageContent   `json:"content"`
	Structure PageStructure `json:"structure"`
}

// PageContent holds the text and structured content of a page.
type PageContent struct {
	Text     string    `json:"text"`
	Markdown string    `json:"markdown"`
	Sections []Section `json:"sections"`
}

// PageStructure holds structural metadata parsed from the content.
type PageStructure struct {
	Headings   []Heading `json:"headings"`
	Links      []Link    `json:"links"`
	CodeBlocks int       `json:"code_blocks"`
	Tables     int       `json:"tables"`
	Lists      int       `json:"lists"`
}

// Section is a heading-delimited part of a page.
type Section struct {
	Heading string `json:"heading"`
	Level   int    `json:"level"`
	Text    string `json:"text"`
}

// Heading is a single heading found in the content.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Link is a hyperlink found in the content.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// JSONRenderer describes Markdown pages as structured JSON.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Render builds one PageDocument per page. Page bodies are read as Markdown.
func (r *JSONRenderer) Render(pages []core.Page) ([]byte, error) {
	doc := Document{Pages: make([]PageDocument, 0, len(pages))}
	for _, p := range pages {
		doc.Pages = append(doc.Pages, describe(p))
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}

func describe(p core.Page) PageDocument {
	md := strings.TrimSpace(p.Body)
	headings := extractHeadings(md)
	return PageDocument{
		Source: p.Source,
		Title:  p.Title,
		Content: PageContent{
			Text:     stripMarkdown(md),
			Markdown: md,
			Sections: buildSections(md, headings),
		},
		Structure: PageStructure{
			Headings:   headings,
			Links:      extractLinks(md),
			CodeBlocks: strings.Count(md, "```") / 2,
			Tables:     len(tableRowRegex.FindAllString(md, -1)),
			Lists:      len(listItemRegex.FindAllString(md, -1)),
		},
	}
}

var (
	headingRegex = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
	// linkRegex matches Markdown links [text](url).
	linkRegex     = regexp.MustCompile(`\[([^\]]*)\]\(([^)]+)\)`)
	tableRowRegex = regexp.MustCompile(`(?m)^\|[-:| ]+\|$`)
	listItemRegex = regexp.MustCompile(`(?m)^[\s]*[-*]\s|^[\s]*\d+\.\s`)
	emphasisRegex = regexp.MustCompile(`\*{1,3}([^*]+)\*{1,3}`)
	codeRegex     = regexp.MustCompile("`([^`]+)`")
	blankRuns     = regexp.MustCompile(`\n{3,}`)
)

func extractHeadings(md string) []Heading {
	matches := headingRegex.FindAllStringSubmatch(md, -1)
	headings := make([]Heading, 0, len(matches))
	for _, m := range matches {
		headings = append(headings, Heading{
			Level: len(m[1]),
			Text:  strings.TrimSpace(m[2]),
		})
	}
	return headings
}

func extractLinks(md string) []Link {
	matches := linkRegex.FindAllStringSubmatch(md, -1)
	links := make([]Link, 0, len(matches))
	for _, m := range matches {
		links = append(links, Link{Text: m[1], Href: m[2]})
	}
	return links
}

// buildSections splits md at its headings. Text before the first heading
// belongs to no section.
func buildSections(md string, headings []Heading) []Section {
	if len(headings) == 0 {
		return nil
	}

	sections := make([]Section, 0, len(headings))
	var current *Section
	var body []string
	flush := func() {
		if current != nil {
			current.Text = strings.TrimSpace(strings.Join(body, "\n"))
			sections = append(sections, *current)
		}
	}

	next := 0
	for _, line := range strings.Split(md, "\n") {
		if headingRegex.MatchString(line) && next < len(headings) {
			flush()
			current = &Section{Heading: headings[next].Text, Level: headings[next].Level}
			body = nil
			next++
			continue
		}
		if current != nil {
			body = append(body, line)
		}
	}
	flush()
	return sections
}

// stripMarkdown removes common Markdown formatting to produce plain text.
func stripMarkdown(md string) string {
	text := headingRegex.ReplaceAllString(md, "$2")
	text = emphasisRegex.ReplaceAllString(text, "$1")
	text = linkRegex.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, "```", "")
	text = codeRegex.ReplaceAllString(text, "$1")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

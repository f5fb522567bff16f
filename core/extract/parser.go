package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	"github.com/gaurav-prasanna/scrape/core"
)

// textAttribute selects element text instead of an attribute value.
const textAttribute = "text"

var attributeName = regexp.MustCompile(`^[A-Za-z_][-A-Za-z0-9_]*$`)

// skipped elements never contribute text.
var skipped = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true, "head": true,
}

// blocks end a line of text.
var blocks = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "td": true, "th": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"pre": true, "blockquote": true, "section": true, "article": true, "main": true,
	"header": true, "footer": true, "ul": true, "ol": true, "table": true, "dd": true, "dt": true,
}

// Parser turns an HTML page into lines of text, honoring an optional XPath
// selection, attribute list and line patterns.
type Parser struct {
	xpath      *xpath.Expr
	attributes []string
	patterns   []*regexp.Regexp
	extractor  *HTMLExtractor
}

// NewParser compiles the filters in cfg.
func NewParser(cfg core.FilterConfig) (*Parser, error) {
	p := &Parser{extractor: New()}
	if cfg.XPath != "" {
		expr, err := xpath.Compile(cfg.XPath)
		if err != nil {
			return nil, fmt.Errorf("compiling xpath %q: %w", cfg.XPath, err)
		}
		p.xpath = expr
	}
	for _, attr := range cfg.Attributes {
		if !attributeName.MatchString(attr) {
			return nil, fmt.Errorf("invalid attribute name %q", attr)
		}
		p.attributes = append(p.attributes, attr)
	}
	for _, pat := range cfg.Patterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("compiling filter %q: %w", pat, err)
		}
		p.patterns = append(p.patterns, re)
	}
	return p, nil
}

// Parse returns the filtered, non-empty lines of text in document order.
func (p *Parser) Parse(page string) ([]string, error) {
	var lines []string
	switch {
	case p.xpath != nil:
		doc, err := htmlquery.Parse(strings.NewReader(page))
		if err != nil {
			return nil, fmt.Errorf("parsing HTML: %w", err)
		}
		for _, n := range htmlquery.QuerySelectorAll(doc, p.xpath) {
			if len(p.attributes) > 0 && n.Type == html.ElementNode {
				lines = append(lines, p.attributeLines(goquery.NewDocumentFromNode(n).Selection)...)
				continue
			}
			lines = append(lines, splitLines(nodeText(n))...)
		}
	case len(p.attributes) > 0:
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
		if err != nil {
			return nil, fmt.Errorf("parsing HTML: %w", err)
		}
		lines = p.attributeLines(doc.Selection)
	default:
		text, err := p.readableText(page)
		if err != nil {
			return nil, err
		}
		lines = splitLines(text)
	}
	return p.filter(lines), nil
}

// attributeLines collects attribute values (or element text for "text")
// from sel and its descendants, attribute by attribute.
func (p *Parser) attributeLines(sel *goquery.Selection) []string {
	var lines []string
	for _, attr := range p.attributes {
		if attr == textAttribute {
			for _, n := range sel.Nodes {
				lines = append(lines, splitLines(nodeText(n))...)
			}
			continue
		}
		sel.Find("[" + attr + "]").AddBackFiltered("[" + attr + "]").Each(func(_ int, s *goquery.Selection) {
			if v, ok := s.Attr(attr); ok {
				lines = append(lines, splitLines(v)...)
			}
		})
	}
	return lines
}

// readableText uses trafilatura for article text and falls back to the
// main content container when it finds nothing.
func (p *Parser) readableText(page string) (string, error) {
	result, err := trafilatura.Extract(strings.NewReader(page), trafilatura.Options{})
	if err == nil && result != nil && strings.TrimSpace(result.ContentText) != "" {
		return result.ContentText, nil
	}

	fragment, err := p.extractor.Extract(page)
	if err != nil {
		return "", err
	}
	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}
	return nodeText(root), nil
}

func (p *Parser) filter(lines []string) []string {
	if len(p.patterns) == 0 {
		return lines
	}
	kept := lines[:0]
	for _, line := range lines {
		for _, re := range p.patterns {
			if re.MatchString(line) {
				kept = append(kept, line)
				break
			}
		}
	}
	return kept
}

// nodeText renders the text under n, breaking lines at block elements.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if skipped[n.Data] {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blocks[n.Data] {
			b.WriteByte('\n')
		}
	}
	walk(n)
	return b.String()
}

// splitLines collapses whitespace within lines and drops empty ones.
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = collapse(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

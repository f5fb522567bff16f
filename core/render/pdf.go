package render

import (
	"bytes"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/gaurav-prasanna/scrape/core"
)

var (
	numberedItem = regexp.MustCompile(`^\d+\.\s`)
	italicMarks  = regexp.MustCompile(`(?:^|\s)\*([^*]+)\*(?:\s|$)`)
	codeMarks    = regexp.MustCompile("`([^`]+)`")
	linkMarks    = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]+\)`)
	localImage   = regexp.MustCompile(`!\[([^\]]*)\]\((file://[^)\s]+)\)`)
)

// gofpdf decodes these image types itself.
var embeddable = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true}

var headingSizes = map[int]float64{1: 18, 2: 15, 3: 13, 4: 12, 5: 11, 6: 10}

// PDFRenderer renders Markdown pages as a PDF document using gofpdf, one
// section per input page. Headings, paragraphs, code blocks and lists are
// styled; other Markdown is flattened to text. Images that point at a local
// file:// copy are embedded, any other image becomes its alt text.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render writes every page on a new sheet, headed by its title and source.
func (r *PDFRenderer) Render(pages []core.Page) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages to render")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, page := range pages {
		pdf.AddPage()
		renderHeader(pdf, tr, page)
		renderMarkdown(pdf, tr, page.Body)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

func renderHeader(pdf *gofpdf.Fpdf, tr func(string) string, page core.Page) {
	if page.Title != "" {
		pdf.SetFont("Helvetica", "B", 18)
		pdf.MultiCell(0, 8, tr(page.Title), "", "L", false)
		pdf.Ln(4)
	}
	if page.Source != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(100, 100, 100)
		pdf.MultiCell(0, 5, tr("Source: "+page.Source), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(6)
	}
}

// renderMarkdown writes Markdown line by line.
func renderMarkdown(pdf *gofpdf.Fpdf, tr func(string) string, markdown string) {
	inCodeBlock := false
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			inCodeBlock = !inCodeBlock
			pdf.Ln(2)
			continue
		}

		if inCodeBlock {
			pdf.SetFont("Courier", "", 9)
			pdf.SetFillColor(245, 245, 245)
			pdf.MultiCell(0, 4.5, tr(line), "", "L", true)
			continue
		}

		if refs := localImage.FindAllStringSubmatch(trimmed, -1); len(refs) > 0 {
			for _, ref := range refs {
				renderImage(pdf, tr, ref[1], ref[2])
			}
			line = localImage.ReplaceAllString(line, "")
			if trimmed = strings.TrimSpace(line); trimmed == "" {
				continue
			}
		}

		switch {
		case trimmed == "":
			pdf.Ln(3)
		case trimmed == "---" || trimmed == "***":
			pdf.Ln(2)
		case strings.HasPrefix(trimmed, "#"):
			level := len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
			renderHeading(pdf, tr(strings.TrimSpace(strings.TrimLeft(trimmed, "#"))), level)
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr("• "+cleanInlineMarkdown(trimmed[2:])), "", "L", false)
		case numberedItem.MatchString(trimmed):
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr(cleanInlineMarkdown(trimmed)), "", "L", false)
		default:
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr(cleanInlineMarkdown(line)), "", "L", false)
		}
	}
}

// renderImage embeds a local image scaled to the text width. Images gofpdf
// cannot read fall back to their alt text.
func renderImage(pdf *gofpdf.Fpdf, tr func(string) string, alt, ref string) {
	if pdf.Err() {
		return
	}
	u, err := url.Parse(ref)
	if err != nil || u.Path == "" || !embeddable[strings.ToLower(filepath.Ext(u.Path))] {
		renderAlt(pdf, tr, alt)
		return
	}
	path := filepath.FromSlash(u.Path)

	opts := gofpdf.ImageOptions{ReadDpi: true}
	info := pdf.RegisterImageOptions(path, opts)
	if pdf.Err() || info == nil {
		pdf.ClearError()
		renderAlt(pdf, tr, alt)
		return
	}

	left, _, right, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()
	maxW := pageW - left - right
	w, h := info.Width(), info.Height()
	if w > maxW {
		h = h * maxW / w
		w = maxW
	}
	pdf.ImageOptions(path, left, -1, w, h, true, opts, 0, "")
	pdf.Ln(2)
}

func renderAlt(pdf *gofpdf.Fpdf, tr func(string) string, alt string) {
	if alt = strings.TrimSpace(alt); alt == "" {
		return
	}
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, tr("["+alt+"]"), "", "L", false)
}

// renderHeading sets the font size based on heading level and writes text.
func renderHeading(pdf *gofpdf.Fpdf, text string, level int) {
	size, ok := headingSizes[level]
	if !ok {
		size = 10
	}
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", size)
	pdf.MultiCell(0, size*0.6, cleanInlineMarkdown(text), "", "L", false)
	pdf.Ln(2)
}

// cleanInlineMarkdown strips inline Markdown formatting for PDF rendering.
func cleanInlineMarkdown(text string) string {
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	text = italicMarks.ReplaceAllString(text, " $1 ")
	text = codeMarks.ReplaceAllString(text, "$1")
	text = linkMarks.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

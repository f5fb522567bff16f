package render

import (
	"bytes"
	"strings"

	"github.com/gaurav-prasanna/scrape/core"
)

// TextRenderer writes plain text, one blank line between pages.
type TextRenderer struct{}

// NewTextRenderer creates a TextRenderer.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

// Render concatenates page bodies. Pages without text are left out.
func (r *TextRenderer) Render(pages []core.Page) ([]byte, error) {
	var buf bytes.Buffer
	for _, p := range pages {
		body := strings.TrimSpace(p.Body)
		if body == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(body)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for text output.
func (r *TextRenderer) Extension() string {
	return ".txt"
}

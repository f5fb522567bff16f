// Package images saves the images a stored page references, so HTML output
// keeps working offline and PDF output can embed them.
package images

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/gaurav-prasanna/scrape/core"
	"github.com/gaurav-prasanna/scrape/core/parts"
)

const defaultMaxPerPage = 50

// extensions maps image content types to the file extension they are
// saved with. Other image types are skipped.
var extensions = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/jpg":     ".jpg",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// Fetcher downloads a single image.
type Fetcher interface {
	FetchImage(ctx context.Context, url string) (*core.FetchResult, error)
}

// Saver downloads page images next to the part file that references them.
type Saver struct {
	fetcher Fetcher
	// Absolute points pages at file:// URLs instead of names relative to
	// the part file. Markdown built from the page then still resolves the
	// images after the working directory changed.
	Absolute bool
	// MaxPerPage caps the images saved for one page.
	MaxPerPage int
}

// New creates a Saver downloading with f.
func New(f Fetcher, absolute bool) *Saver {
	return &Saver{fetcher: f, Absolute: absolute, MaxPerPage: defaultMaxPerPage}
}

// Localize downloads the <img> sources of the part file at part, resolved
// against pageURL, and rewrites the part to use the saved copies. Images
// that cannot be downloaded keep their original source.
func (s *Saver) Localize(ctx context.Context, part, pageURL string) (int, error) {
	log := zerolog.Ctx(ctx)

	raw, err := os.ReadFile(part)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", part, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", part, err)
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return 0, fmt.Errorf("parsing page URL %s: %w", pageURL, err)
	}

	saved := make(map[string]string)
	doc.Find("img[src]").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		if ctx.Err() != nil || len(saved) >= s.MaxPerPage {
			return false
		}
		src, _ := img.Attr("src")
		abs := resolve(base, src)
		if abs == "" {
			return true
		}

		local, ok := saved[abs]
		if !ok {
			path, err := s.download(ctx, part, abs, len(saved)+1)
			if err != nil {
				log.Debug().Err(err).Str("image", abs).Msg("Skipping image")
				return true
			}
			local = s.reference(path)
			saved[abs] = local
		}
		img.SetAttr("src", local)
		img.RemoveAttr("srcset")
		return true
	})
	if err := ctx.Err(); err != nil {
		return len(saved), err
	}
	if len(saved) == 0 {
		return 0, nil
	}

	html, err := doc.Html()
	if err != nil {
		return len(saved), fmt.Errorf("serializing %s: %w", part, err)
	}
	if err := os.WriteFile(part, []byte(html), 0o644); err != nil {
		return len(saved), fmt.Errorf("rewriting %s: %w", part, err)
	}
	log.Debug().Str("part", part).Int("images", len(saved)).Msg("Saved images")
	return len(saved), nil
}

func (s *Saver) download(ctx context.Context, part, src string, k int) (string, error) {
	res, err := s.fetcher.FetchImage(ctx, src)
	if err != nil {
		return "", err
	}
	ext, ok := extensions[res.ContentType]
	if !ok {
		return "", fmt.Errorf("unsupported image type %s", res.ContentType)
	}
	path := parts.ImageName(part, k, ext)
	if err := os.WriteFile(path, res.Body, 0o644); err != nil {
		return "", fmt.Errorf("writing image %s: %w", path, err)
	}
	return path, nil
}

func (s *Saver) reference(path string) string {
	if !s.Absolute {
		return filepath.Base(path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

// resolve returns the absolute http(s) URL of an image source, or "" for
// inline data and unsupported schemes.
func resolve(base *url.URL, src string) string {
	src = strings.TrimSpace(src)
	if src == "" || strings.HasPrefix(src, "data:") {
		return ""
	}
	ref, err := url.Parse(src)
	if err != nil {
		return ""
	}
	u := base.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	u.Fragment = ""
	return u.String()
}

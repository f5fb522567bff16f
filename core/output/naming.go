package output

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/gaurav-prasanna/scrape/core/target"
)

const (
	// maxNameLen bounds "<domain>-<tail>" for URL-derived names.
	maxNameLen = 24
	// minTailLen keeps some of the path when the domain alone is long.
	minTailLen = 8
)

// URLName derives a filesystem-safe output name from a URL's domain and the
// last segment of its path, e.g. http://www.example.com/docs/intro.html
// becomes "example.com-intro".
func URLName(rawURL string) string {
	domain := sanitize(target.Domain(rawURL))

	var tail string
	if u, err := url.Parse(rawURL); err == nil {
		p := strings.Trim(u.Path, "/")
		p = strings.TrimSuffix(p, path.Ext(p))
		if i := strings.LastIndex(p, "/"); i >= 0 {
			p = p[i+1:]
		}
		tail = sanitize(p)
	}

	if tail == "" {
		return strings.ToLower(domain)
	}
	if domain == "" {
		return strings.ToLower(shorten(tail, maxNameLen))
	}

	limit := maxNameLen - len(domain) - 1
	if limit < minTailLen {
		limit = minTailLen
	}
	return strings.ToLower(domain + "-" + shorten(tail, limit))
}

// LocalName strips the extension from a local input path.
func LocalName(p string) string {
	if ext := filepath.Ext(p); ext != "" && ext != p {
		return strings.TrimSuffix(p, ext)
	}
	return p
}

// EnsureExt appends ext unless name already ends with it.
func EnsureExt(name, ext string) string {
	if ext == "" || strings.HasSuffix(name, ext) {
		return name
	}
	return name + ext
}

// shorten trims tail to at most limit characters, keeping whole
// dash-separated words while they fit.
func shorten(tail string, limit int) string {
	if len(tail) <= limit {
		return tail
	}
	if !strings.Contains(tail, "-") {
		return tail[:limit]
	}

	var words []string
	for _, w := range strings.Split(tail, "-") {
		if w != "" {
			words = append(words, w)
		}
	}
	out := words[0]
	if len(out) > limit {
		return out[:limit]
	}
	for _, w := range words[1:] {
		if len(out)+1+len(w) > limit {
			break
		}
		out += "-" + w
	}
	return out
}

// sanitize replaces characters outside [A-Za-z0-9._-] with underscores.
func sanitize(s string) string {
	var b strings.Builder
	for _, ch := range s {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9',
			ch == '.', ch == '-', ch == '_':
			b.WriteRune(ch)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

package crawl

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// staticExtensions are file extensions to skip during crawling.
var staticExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".ico": true, ".bmp": true,
	".css": true, ".js": true, ".mjs": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".mp4": true, ".webm": true, ".mp3": true, ".wav": true,
	".zip": true, ".tar": true, ".gz": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
}

// Rules decides which discovered links are followed.
type Rules struct {
	all      bool
	strict   bool
	patterns []*regexp.Regexp
}

// NewRules compiles the follow patterns. With all set every page link is
// followed and the patterns are ignored.
func NewRules(patterns []string, all, strict bool) (*Rules, error) {
	r := &Rules{all: all, strict: strict}
	if all {
		return r, nil
	}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling crawl rule %q: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}
	return r, nil
}

// Follow reports whether link should be queued during a crawl of domain.
func (r *Rules) Follow(link, domain string) bool {
	u, err := url.Parse(link)
	if err != nil || u.Hostname() == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if IsStaticAsset(link) {
		return false
	}
	if r.strict && !IsSameDomain(link, domain) {
		return false
	}
	if r.all {
		return true
	}
	for _, re := range r.patterns {
		if re.MatchString(link) {
			return true
		}
	}
	return false
}

// IsSameDomain reports whether rawURL belongs to the same registrable
// domain as domain, so "docs.example.com" matches "example.com".
func IsSameDomain(rawURL string, domain string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return registrable(parsed.Hostname()) == registrable(domain)
}

func registrable(host string) string {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	if root, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return root
	}
	return host
}

// IsStaticAsset checks if a URL points to a static asset (image, CSS, JS, etc.).
func IsStaticAsset(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(parsed.Path))
	return staticExtensions[ext]
}

// NormalizeURL strips fragments and trailing slashes for deduplication.
// An empty path becomes the root "/".
func NormalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	parsed.Fragment = ""
	switch parsed.Path {
	case "", "/":
		parsed.Path = "/"
		parsed.RawPath = ""
	default:
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
		parsed.RawPath = strings.TrimSuffix(parsed.RawPath, "/")
	}

	return parsed.String()
}

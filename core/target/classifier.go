// Package target classifies raw queries into local files and remote URLs.
// URLs are completed with a scheme and a host suffix when the user left
// them out (e.g. "example/docs" becomes "http://example.com/docs").
package target

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/gaurav-prasanna/scrape/core"
)

const (
	defaultScheme     = "http"
	defaultHostSuffix = ".com"
)

// Result is the outcome of classifying one query list.
type Result struct {
	// Targets holds one entry per query, in query order.
	Targets []core.Target
	// Files and URLs are the distinct local paths and normalized URLs.
	Files []string
	URLs  []string
	// Queries is the query list rewritten with completed URLs.
	Queries []string
}

// Classify splits queries into local files and URLs. A query naming an
// existing regular file is a local file; anything else is a URL.
func Classify(queries []string) (*Result, error) {
	r := &Result{}
	for _, q := range queries {
		if strings.TrimSpace(q) == "" {
			return nil, fmt.Errorf("%w: empty query", core.ErrTargetResolution)
		}

		if isFile(q) {
			r.Targets = append(r.Targets, core.Target{Kind: core.LocalFile, Raw: q, Value: q})
			r.Queries = append(r.Queries, q)
			if !slices.Contains(r.Files, q) {
				r.Files = append(r.Files, q)
			}
			continue
		}

		u, err := NormalizeURL(q)
		if err != nil {
			return nil, err
		}
		r.Targets = append(r.Targets, core.Target{Kind: core.RemoteURL, Raw: q, Value: u})
		r.Queries = append(r.Queries, u)
		if !slices.Contains(r.URLs, u) {
			r.URLs = append(r.URLs, u)
		}
	}
	return r, nil
}

// DropFiles forgets every local file and returns how many there were.
// Targets keep their positions so --out names still line up with queries;
// callers skip local targets that are no longer known files.
func (r *Result) DropFiles() int {
	n := len(r.Files)
	r.Files = nil
	return n
}

// IsKnownFile reports whether path is a local file still taking part in the run.
func (r *Result) IsKnownFile(path string) bool {
	return slices.Contains(r.Files, path)
}

// HasURLs reports whether any target must be fetched.
func (r *Result) HasURLs() bool {
	return len(r.URLs) > 0
}

// NormalizeURL trims trailing slashes, adds a ".com" suffix to bare host
// names and prepends "http://" when no scheme is present.
func NormalizeURL(raw string) (string, error) {
	s := strings.TrimRight(strings.TrimSpace(raw), "/")
	if s == "" {
		return "", fmt.Errorf("%w: %q", core.ErrTargetResolution, raw)
	}
	if !strings.Contains(s, "://") {
		s = defaultScheme + "://" + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: invalid URL %q", core.ErrTargetResolution, raw)
	}

	host := u.Hostname()
	if needsSuffix(host) {
		host += defaultHostSuffix
		if port := u.Port(); port != "" {
			u.Host = net.JoinHostPort(host, port)
		} else {
			u.Host = host
		}
	}
	return u.String(), nil
}

// Domain returns the host of rawURL without a "www." prefix or port.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func needsSuffix(host string) bool {
	if host == "" || host == "localhost" || strings.Contains(host, ".") {
		return false
	}
	return net.ParseIP(host) == nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

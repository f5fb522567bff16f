// Package fetch implements the Fetcher interface.
// It performs HTTP GET requests and only accepts text responses for pages,
// so binary downloads never end up as part files. Images are fetched
// through FetchImage.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gaurav-prasanna/scrape/core"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "scrape/1.0 (https://github.com/gaurav-prasanna/scrape)"
	defaultMaxBytes  = 20 << 20
)

var (
	// ErrNotText is returned for responses whose content type is not text.
	ErrNotText = errors.New("content is not text")
	// ErrNotImage is returned by FetchImage for non-image responses.
	ErrNotImage = errors.New("content is not an image")
	// ErrTooLarge is returned for bodies over the configured size limit.
	ErrTooLarge = errors.New("response body too large")
)

// textTypes are accepted content types besides any text/*.
var textTypes = map[string]bool{
	"application/xhtml+xml": true,
	"application/xml":       true,
	"application/json":      true,
}

// HTTPFetcher fetches web pages via HTTP.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// New creates an HTTPFetcher from cfg, filling in defaults for zero values.
func New(cfg core.FetchConfig) *HTTPFetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: ua,
		maxBytes:  maxBytes,
	}
}

// UserAgent returns the User-Agent header sent with each request.
func (f *HTTPFetcher) UserAgent() string {
	return f.userAgent
}

// Fetch retrieves the body of the given URL. Only text responses are
// accepted.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*core.FetchResult, error) {
	res, err := f.get(ctx, url, "text/html,application/xhtml+xml,application/xml;q=0.9,text/*;q=0.8")
	if err != nil {
		return nil, err
	}
	if !IsText(res.contentType) {
		res.resp.Body.Close()
		return nil, fmt.Errorf("%w: %s is %s", ErrNotText, url, res.contentType)
	}
	return f.read(res)
}

// FetchImage retrieves an image. Responses that are not image/* are rejected.
func (f *HTTPFetcher) FetchImage(ctx context.Context, url string) (*core.FetchResult, error) {
	res, err := f.get(ctx, url, "image/*")
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(res.contentType, "image/") {
		res.resp.Body.Close()
		return nil, fmt.Errorf("%w: %s is %s", ErrNotImage, url, res.contentType)
	}
	return f.read(res)
}

// response is a successful response whose body has not been read yet.
type response struct {
	resp        *http.Response
	url         string
	contentType string
}

func (f *HTTPFetcher) get(ctx context.Context, url, accept string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return &response{
		resp:        resp,
		url:         finalURL,
		contentType: NormalizeContentType(resp.Header.Get("Content-Type")),
	}, nil
}

// read consumes the body. Bodies over the size limit are an error rather
// than a silently truncated page.
func (f *HTTPFetcher) read(res *response) (*core.FetchResult, error) {
	defer res.resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, res.url, f.maxBytes)
	}

	return &core.FetchResult{
		URL:         res.url,
		StatusCode:  res.resp.StatusCode,
		ContentType: res.contentType,
		Body:        body,
	}, nil
}

// NormalizeContentType strips parameters from a Content-Type header.
// A missing header is treated as HTML, which is what browsers assume.
func NormalizeContentType(value string) string {
	if value == "" {
		return "text/html"
	}
	mediaType, _, _ := strings.Cut(value, ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// IsText reports whether a normalized content type can be parsed as text.
func IsText(contentType string) bool {
	return strings.HasPrefix(contentType, "text/") || textTypes[contentType]
}

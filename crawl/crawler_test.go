package crawl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/scrape/core"
	"github.com/gaurav-prasanna/scrape/core/fetch"
	"github.com/gaurav-prasanna/scrape/core/parts"
)

const userAgent = "scrape-test"

func newSite(t *testing.T, sitemap bool) *httptest.Server {
	t.Helper()
	pages := map[string]string{
		"/": `<html><body>
<a href="/a">A</a> <a href="/b">B</a> <a href="/style.css">css</a>
<a href="http://other.org/x">external</a> <a href="mailto:x@example.com">mail</a>
</body></html>`,
		"/a":      `<html><body><p>page a</p><a href="/">home</a> <a href="/c#top">C</a></body></html>`,
		"/b":      `<html><body><p>page b</p></body></html>`,
		"/c":      `<html><body><p>page c</p></body></html>`,
		"/hidden": `<html><body><p>hidden</p></body></html>`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("User-agent: *\nDisallow: /b\n"))
	})
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		if !sitemap {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
<url><loc>http://` + r.Host + `/hidden</loc></url>
</urlset>`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(body))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newCrawler(t *testing.T, cfg core.CrawlConfig) (*Crawler, *parts.Store) {
	t.Helper()
	store := parts.New(t.TempDir())
	c, err := New(cfg, fetch.New(core.FetchConfig{UserAgent: userAgent}), store, userAgent)
	require.NoError(t, err)
	return c, store
}

func testContext() context.Context {
	return zerolog.Nop().WithContext(context.Background())
}

func readPart(t *testing.T, store *parts.Store, name string) string {
	t.Helper()
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(store.Dir, name)
	}
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestCrawlAll(t *testing.T) {
	server := newSite(t, false)
	c, store := newCrawler(t, core.CrawlConfig{All: true, Strict: true, RespectRobots: true})

	names, err := c.Crawl(testContext(), server.URL, "127.0.0.1")
	require.NoError(t, err)

	require.Len(t, names, 3)
	assert.Contains(t, readPart(t, store, names[1]), "page a")
	assert.Contains(t, readPart(t, store, names[2]), "page c")

	n, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestCrawlRules(t *testing.T) {
	server := newSite(t, false)
	c, _ := newCrawler(t, core.CrawlConfig{Rules: []string{`/a$`}, Strict: true})

	names, err := c.Crawl(testContext(), server.URL, "127.0.0.1")
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

func TestCrawlMaxPages(t *testing.T) {
	server := newSite(t, false)
	c, _ := newCrawler(t, core.CrawlConfig{All: true, Strict: true, MaxPages: 2})

	names, err := c.Crawl(testContext(), server.URL, "127.0.0.1")
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

func TestCrawlMaxLinks(t *testing.T) {
	server := newSite(t, false)
	c, store := newCrawler(t, core.CrawlConfig{All: true, Strict: true, MaxLinks: 1})

	names, err := c.Crawl(testContext(), server.URL, "127.0.0.1")
	require.NoError(t, err)

	require.Len(t, names, 3)
	assert.Contains(t, readPart(t, store, names[1]), "page a")
	assert.Contains(t, readPart(t, store, names[2]), "page c")
}

func TestCrawlSitemapSeeds(t *testing.T) {
	server := newSite(t, true)
	c, store := newCrawler(t, core.CrawlConfig{All: true, Strict: true, UseSitemap: true, RespectRobots: true})

	names, err := c.Crawl(testContext(), server.URL, "127.0.0.1")
	require.NoError(t, err)

	require.Len(t, names, 4)
	assert.Contains(t, readPart(t, store, names[1]), "hidden")
}

func TestCrawlNothingRetrieved(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()
	c, store := newCrawler(t, core.CrawlConfig{All: true})

	_, err := c.Crawl(testContext(), server.URL, "127.0.0.1")
	require.Error(t, err)

	n, err := store.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCrawlCancelled(t *testing.T) {
	server := newSite(t, false)
	c, _ := newCrawler(t, core.CrawlConfig{All: true})
	ctx, cancel := context.WithCancel(testContext())
	cancel()

	_, err := c.Crawl(ctx, server.URL, "127.0.0.1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRejectsBadRule(t *testing.T) {
	_, err := New(core.CrawlConfig{Rules: []string{"("}}, nil, nil, userAgent)
	assert.Error(t, err)
}

type recordingLocalizer struct{ pages []string }

func (l *recordingLocalizer) Localize(_ context.Context, _, pageURL string) (int, error) {
	l.pages = append(l.pages, pageURL)
	return 0, nil
}

func TestCrawlLocalizesImages(t *testing.T) {
	server := newSite(t, false)
	c, _ := newCrawler(t, core.CrawlConfig{Rules: []string{`/a$`}, Strict: true})
	loc := &recordingLocalizer{}

	names, err := c.WithImages(loc).Crawl(testContext(), server.URL, "127.0.0.1")
	require.NoError(t, err)

	require.Len(t, loc.pages, len(names))
	assert.Equal(t, server.URL+"/a", loc.pages[1])
}

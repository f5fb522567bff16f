// Package core defines the shared types and collaborator interfaces for scrape.
// Each stage of the run is a small interface so the orchestrator can be
// tested against fakes.
package core

import "context"

// TargetKind tells whether a query names a local file or a remote page.
type TargetKind int

const (
	LocalFile TargetKind = iota
	RemoteURL
)

func (k TargetKind) String() string {
	if k == RemoteURL {
		return "url"
	}
	return "file"
}

// Target is a classified user query. Value holds the file path or the
// normalized URL.
type Target struct {
	Kind  TargetKind
	Raw   string
	Value string
}

// IsRemote reports whether the target must be fetched.
func (t Target) IsRemote() bool { return t.Kind == RemoteURL }

// OutputUnit pairs an ordered list of input files with one output name.
// Remote is set when any input is a part file written during the run, and
// Origin holds the URL the parts were fetched from.
type OutputUnit struct {
	Inputs []string
	Name   string
	Remote bool
	Origin string
}

// FetchResult holds the raw body and response metadata from a fetch.
type FetchResult struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Page is one input file prepared for rendering.
type Page struct {
	Source string
	Title  string
	Body   string
}

// Fetcher retrieves a single page. Network failures, non-2xx statuses and
// non-text content types are all reported as errors.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// ImageLocalizer downloads the images a part file references, stores them
// next to it and points the page at the local copies. It returns how many
// images were saved.
type ImageLocalizer interface {
	Localize(ctx context.Context, part, pageURL string) (int, error)
}

// Crawler follows links from startURL, writing one part file per page,
// and returns the part file names it created in order.
type Crawler interface {
	Crawl(ctx context.Context, startURL, domain string) ([]string, error)
}

// Extractor pulls the main content from raw HTML, stripping noise.
type Extractor interface {
	Extract(html string) (string, error)
}

// Normalizer converts cleaned HTML into Markdown.
type Normalizer interface {
	Normalize(html string) (string, error)
}

// TextParser turns an HTML document into filtered lines of text.
type TextParser interface {
	Parse(html string) ([]string, error)
}

// Renderer converts prepared pages into a final output format.
type Renderer interface {
	Render(pages []Page) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".txt", ".pdf").
	Extension() string
}

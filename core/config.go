package core

import "time"

// Mode selects whether targets are aggregated into one artifact or each
// produces its own.
type Mode string

const (
	ModeAuto     Mode = ""
	ModeSingle   Mode = "single"
	ModeMultiple Mode = "multiple"
)

// Format is the requested output format.
type Format string

const (
	FormatText     Format = "text"
	FormatPDF      Format = "pdf"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
	FormatPrint    Format = "print"
)

// OverwritePolicy decides what happens when an output file already exists.
type OverwritePolicy int

const (
	// OverwriteConflict refuses to replace an existing output.
	OverwriteConflict OverwritePolicy = iota
	// OverwriteAlways replaces existing outputs.
	OverwriteAlways
	// OverwriteSkip leaves existing outputs untouched and moves on.
	OverwriteSkip
)

// CrawlConfig holds the constraints handed to the crawl collaborator.
type CrawlConfig struct {
	Rules             []string
	All               bool
	MaxPages          int
	MaxLinks          int
	Strict            bool
	RequestsPerSecond float64
	RespectRobots     bool
	UseSitemap        bool
}

// Enabled reports whether the run follows links at all.
func (c CrawlConfig) Enabled() bool {
	return c.All || len(c.Rules) > 0
}

// FilterConfig narrows the text taken from each page.
type FilterConfig struct {
	XPath      string
	Attributes []string
	Patterns   []string
}

// Active reports whether any filter was requested.
func (c FilterConfig) Active() bool {
	return c.XPath != "" || len(c.Attributes) > 0 || len(c.Patterns) > 0
}

// FetchConfig controls the HTTP fetcher.
type FetchConfig struct {
	UserAgent string
	Timeout   time.Duration
	MaxBytes  int64
}

// RunConfig is the resolved set of options for one run. It is built once at
// startup and only read afterwards.
type RunConfig struct {
	Mode      Mode
	Format    Format
	Overwrite OverwritePolicy
	Out       []string
	OutputDir string
	Quiet     bool
	// Images is set when page images are saved with the fetched pages.
	Images bool

	Crawl  CrawlConfig
	Filter FilterConfig
	Fetch  FetchConfig
}

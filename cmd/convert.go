package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gaurav-prasanna/scrape/config"
	"github.com/gaurav-prasanna/scrape/core"
	"github.com/gaurav-prasanna/scrape/core/convert"
	"github.com/gaurav-prasanna/scrape/core/extract"
	"github.com/gaurav-prasanna/scrape/core/fetch"
	"github.com/gaurav-prasanna/scrape/core/images"
	"github.com/gaurav-prasanna/scrape/core/normalize"
	"github.com/gaurav-prasanna/scrape/core/output"
	"github.com/gaurav-prasanna/scrape/core/parts"
	"github.com/gaurav-prasanna/scrape/core/scrape"
	"github.com/gaurav-prasanna/scrape/core/target"
	"github.com/gaurav-prasanna/scrape/crawl"
)

var convertCmd = &cobra.Command{
	Use:   "convert <url|file>...",
	Short: "Convert URLs and local HTML files to the selected output format",
	Long: `Convert fetches each URL (or reads each local file), extracts its content and
writes it as text (default), PDF, Markdown, JSON or HTML, or prints it.

With one query everything goes to a single output file; with several, each
query gets its own file unless --single is given.

Examples:
  scrape convert example.com/docs
  scrape convert report.html --pdf
  scrape convert example.com/a example.com/b --out a,b
  scrape convert https://example.com --crawl-all --maxpages 20 --pdf
  scrape convert https://example.com --crawl '/docs/page\d{1,3}' --html --images
  scrape convert https://example.com --print --xpath '//h2'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	addConvertFlags(convertCmd.Flags())
}

// addConvertFlags defines the convert flags on f. Regexp lists are string
// arrays so a comma inside a pattern, as in {1,3}, is not a separator.
func addConvertFlags(f *pflag.FlagSet) {
	// Output format flags (mutually exclusive).
	f.BoolP(config.KeyText, "t", false, "Write files as text (default)")
	f.BoolP(config.KeyPDF, "p", false, "Write files as PDF")
	f.Bool(config.KeyMarkdown, false, "Write files as Markdown")
	f.Bool(config.KeyJSON, false, "Write files as structured JSON")
	f.Bool(config.KeyHTML, false, "Keep fetched pages as HTML files in a directory named after the domain")
	f.Bool(config.KeyPrint, false, "Print text output instead of writing files")

	// Output naming.
	f.BoolP(config.KeySingle, "s", false, "Save to a single file")
	f.BoolP(config.KeyMultiple, "m", false, "Save to multiple files")
	f.Bool(config.KeyOverwrite, false, "Overwrite output files that exist")
	f.Bool(config.KeyNoOverwrite, false, "Skip output files that exist")
	f.StringSliceP(config.KeyOut, "o", nil, "Output file names, comma separated or repeated, matched to queries in order")
	f.String(config.KeyOutputDir, "", "Output directory (default: current directory)")

	// Images.
	f.BoolP(config.KeyImages, "i", false, "Save page images (PDF and HTML; needed when crawling)")
	f.Bool(config.KeyNoImages, false, "Do not save page images")

	// Crawling.
	f.StringArrayP(config.KeyCrawl, "c", nil, "Regexp rule for links to follow (repeatable)")
	f.Bool(config.KeyCrawlAll, false, "Follow every link")
	f.Int(config.KeyMaxPages, 0, "Maximum number of pages to crawl (0 for no limit)")
	f.Int(config.KeyMaxLinks, 0, "Maximum number of links to follow per page (0 for no limit)")
	f.BoolP(config.KeyNonStrict, "n", false, "Allow the crawler to leave the start domain")

	// Text filters.
	f.StringP(config.KeyXPath, "x", "", "Filter HTML using XPath")
	f.StringArrayP(config.KeyAttributes, "a", nil, "Extract text from a tag attribute, \"text\" for element text (repeatable)")
	f.StringArrayP(config.KeyFilter, "f", nil, "Regexp rule lines of text must match (repeatable)")

	f.BoolP(config.KeyQuiet, "q", false, "Suppress program output")
}

func runConvert(cmd *cobra.Command, args []string) error {
	v, err := config.Load(flagConfig, cmd.Flags())
	if err != nil {
		return err
	}
	cfg, err := config.Build(v)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Quiet)
	ctx := logger.WithContext(cmd.Context())

	runner, err := newRunner(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return runner.Run(ctx, args)
}

// newRunner wires the run's components from cfg.
func newRunner(cfg *core.RunConfig, stdout io.Writer) (*scrape.Runner, error) {
	fetcher := fetch.New(cfg.Fetch)
	store := parts.New("")

	var localizer core.ImageLocalizer
	if cfg.Images {
		localizer = images.New(fetcher, cfg.Format == core.FormatPDF)
	}

	var crawler core.Crawler
	if cfg.Crawl.Enabled() {
		c, err := crawl.New(cfg.Crawl, fetcher, store, fetcher.UserAgent())
		if err != nil {
			return nil, err
		}
		crawler = c.WithImages(localizer)
	}

	writer, err := output.New(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("initializing output writer: %w", err)
	}
	parser, err := extract.NewParser(cfg.Filter)
	if err != nil {
		return nil, err
	}

	extractor := extract.New()
	extractor.KeepImages = cfg.Images

	planner := output.NewPlanner(cfg, writer)
	dispatcher := convert.New(cfg, convert.Deps{
		Planner:   planner,
		Writer:    writer,
		Parser:    parser,
		Extractor: extractor,
		Normalizer: func(origin string) core.Normalizer {
			return normalize.New(target.Domain(origin))
		},
		Parts:  store,
		Stdout: stdout,
	})

	return scrape.New(cfg, scrape.Deps{
		Fetcher:    fetcher,
		Crawler:    crawler,
		Images:     localizer,
		Parts:      store,
		Planner:    planner,
		Dispatcher: dispatcher,
		Stdout:     stdout,
	}), nil
}

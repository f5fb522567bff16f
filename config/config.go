// Package config layers scrape's settings: defaults, an optional YAML
// config file, SCRAPE_* environment variables and command line flags, in
// increasing priority. Build turns the result into the run configuration
// every component receives.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gaurav-prasanna/scrape/core"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "SCRAPE"

// Keys shared by flags, config file and environment.
const (
	KeyText        = "text"
	KeyPDF         = "pdf"
	KeyMarkdown    = "markdown"
	KeyJSON        = "json"
	KeyHTML        = "html"
	KeyPrint       = "print"
	KeySingle      = "single"
	KeyMultiple    = "multiple"
	KeyOverwrite   = "overwrite"
	KeyNoOverwrite = "no-overwrite"
	KeyOut         = "out"
	KeyOutputDir   = "output_dir"
	KeyCrawl       = "crawl"
	KeyCrawlAll    = "crawl-all"
	KeyMaxPages    = "maxpages"
	KeyMaxLinks    = "maxlinks"
	KeyNonStrict   = "nonstrict"
	KeyXPath       = "xpath"
	KeyAttributes  = "attributes"
	KeyFilter      = "filter"
	KeyQuiet       = "quiet"
	KeyImages      = "images"
	KeyNoImages    = "no-images"

	// Only settable from the config file or the environment.
	KeyUserAgent     = "user_agent"
	KeyTimeout       = "timeout"
	KeyMaxBytes      = "max_bytes"
	KeyRate          = "requests_per_second"
	KeyRespectRobots = "respect_robots"
	KeySitemap       = "sitemap"
	// KeyDisableImages is read from SCRAPE_DISABLE_IMGS; any non-empty
	// value turns image saving off.
	KeyDisableImages = "disable_imgs"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyTimeout, "30s")
	v.SetDefault(KeyMaxBytes, 20<<20)
	v.SetDefault(KeyRate, 2.0)
	v.SetDefault(KeyRespectRobots, true)
	v.SetDefault(KeySitemap, true)
}

// Load reads settings for one run. configFile may be empty, in which case
// scrape.yaml is looked up in the working directory and in $HOME/.scrape;
// a missing file is not an error. flags, when not nil, override everything
// else for the flags the user set.
func Load(configFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("scrape")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.scrape")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}
	return v, nil
}

// Build validates the settings in v and returns the run configuration.
func Build(v *viper.Viper) (*core.RunConfig, error) {
	format, err := buildFormat(v)
	if err != nil {
		return nil, err
	}

	cfg := &core.RunConfig{
		Format:    format,
		Out:       v.GetStringSlice(KeyOut),
		OutputDir: v.GetString(KeyOutputDir),
		Quiet:     v.GetBool(KeyQuiet),
		Crawl: core.CrawlConfig{
			Rules:             v.GetStringSlice(KeyCrawl),
			All:               v.GetBool(KeyCrawlAll),
			MaxPages:          v.GetInt(KeyMaxPages),
			MaxLinks:          v.GetInt(KeyMaxLinks),
			Strict:            !v.GetBool(KeyNonStrict),
			RequestsPerSecond: v.GetFloat64(KeyRate),
			RespectRobots:     v.GetBool(KeyRespectRobots),
			UseSitemap:        v.GetBool(KeySitemap),
		},
		Filter: core.FilterConfig{
			XPath:      v.GetString(KeyXPath),
			Attributes: v.GetStringSlice(KeyAttributes),
			Patterns:   v.GetStringSlice(KeyFilter),
		},
		Fetch: core.FetchConfig{
			UserAgent: v.GetString(KeyUserAgent),
			Timeout:   v.GetDuration(KeyTimeout),
			MaxBytes:  v.GetInt64(KeyMaxBytes),
		},
	}

	switch single, multiple := v.GetBool(KeySingle), v.GetBool(KeyMultiple); {
	case single && multiple:
		return nil, errors.New("--single and --multiple are mutually exclusive")
	case single:
		cfg.Mode = core.ModeSingle
	case multiple:
		cfg.Mode = core.ModeMultiple
	}

	switch overwrite, keep := v.GetBool(KeyOverwrite), v.GetBool(KeyNoOverwrite); {
	case overwrite && keep:
		return nil, errors.New("--overwrite and --no-overwrite are mutually exclusive")
	case overwrite:
		cfg.Overwrite = core.OverwriteAlways
	case keep:
		cfg.Overwrite = core.OverwriteSkip
	}

	images, noImages := v.GetBool(KeyImages), v.GetBool(KeyNoImages)
	if images && noImages {
		return nil, errors.New("--images and --no-images are mutually exclusive")
	}
	cfg.Images = saveImages(cfg, images, noImages || v.GetString(KeyDisableImages) != "")

	if cfg.Crawl.MaxPages < 0 || cfg.Crawl.MaxLinks < 0 {
		return nil, errors.New("--maxpages and --maxlinks must not be negative")
	}
	if cfg.Fetch.Timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative (got %s)", cfg.Fetch.Timeout)
	}
	return cfg, nil
}

// saveImages decides whether page images are downloaded. Only PDF and HTML
// output use them, and a crawl only saves them on request since it
// multiplies the number of downloads.
func saveImages(cfg *core.RunConfig, requested, disabled bool) bool {
	if disabled || (cfg.Format != core.FormatPDF && cfg.Format != core.FormatHTML) {
		return false
	}
	return requested || !cfg.Crawl.Enabled()
}

// buildFormat returns the single requested output format, text by default.
func buildFormat(v *viper.Viper) (core.Format, error) {
	flags := []struct {
		key    string
		format core.Format
	}{
		{KeyText, core.FormatText},
		{KeyPDF, core.FormatPDF},
		{KeyMarkdown, core.FormatMarkdown},
		{KeyJSON, core.FormatJSON},
		{KeyHTML, core.FormatHTML},
		{KeyPrint, core.FormatPrint},
	}

	var chosen []core.Format
	for _, f := range flags {
		if v.GetBool(f.key) {
			chosen = append(chosen, f.format)
		}
	}
	switch len(chosen) {
	case 0:
		return core.FormatText, nil
	case 1:
		return chosen[0], nil
	default:
		return "", fmt.Errorf("only one output format allowed per run (got %d)", len(chosen))
	}
}

package scrape

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gaurav-prasanna/scrape/core"
	"github.com/gaurav-prasanna/scrape/core/parts"
)

// FetchOrchestrator turns one remote target into part files, either by
// crawling from it or by fetching the single page.
type FetchOrchestrator struct {
	crawl   core.CrawlConfig
	fetcher core.Fetcher
	crawler core.Crawler
	parts   *parts.Store
	images  core.ImageLocalizer
}

// NewFetchOrchestrator creates a FetchOrchestrator. crawler may be nil when
// crawling is disabled, images when pages are stored without their images.
func NewFetchOrchestrator(cfg *core.RunConfig, fetcher core.Fetcher, crawler core.Crawler, store *parts.Store, images core.ImageLocalizer) *FetchOrchestrator {
	return &FetchOrchestrator{
		crawl:   cfg.Crawl,
		fetcher: fetcher,
		crawler: crawler,
		parts:   store,
		images:  images,
	}
}

// Fetch retrieves t and returns the names of the part files it created, in
// order. A page that cannot be retrieved is reported as core.ErrFetchFailed.
func (o *FetchOrchestrator) Fetch(ctx context.Context, t core.Target, domain string) ([]string, error) {
	if o.crawl.Enabled() && o.crawler != nil {
		names, err := o.crawler.Crawl(ctx, t.Value, domain)
		if err != nil {
			if ctx.Err() != nil {
				return nil, interrupted(ctx, err)
			}
			return nil, fmt.Errorf("crawling %s: %w", t.Value, err)
		}
		return names, nil
	}

	res, err := o.fetcher.Fetch(ctx, t.Value)
	if err != nil {
		if ctx.Err() != nil {
			return nil, interrupted(ctx, err)
		}
		zerolog.Ctx(ctx).Error().Err(err).Str("url", t.Value).Msg("Failed to retrieve content")
		return nil, fmt.Errorf("%w: %s: %w", core.ErrFetchFailed, t.Value, err)
	}

	before, err := o.parts.Count()
	if err != nil {
		return nil, err
	}
	name, err := o.parts.Write(res.Body)
	if err != nil {
		return nil, err
	}
	if o.images != nil {
		if _, err := o.images.Localize(ctx, name, res.URL); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("url", res.URL).Msg("Failed to save images")
		}
	}
	after, err := o.parts.Count()
	if err != nil {
		return nil, err
	}
	return o.parts.NamesInRange(before, after), nil
}

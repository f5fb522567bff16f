// Package crawl follows links from a start page and stores every page it
// visits as a part file. Link selection is driven by regexp rules or by
// "crawl all", optionally limited to the start page's domain, and every
// request goes through robots.txt checks and a rate limiter.
package crawl

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/gaurav-prasanna/scrape/core"
	"github.com/gaurav-prasanna/scrape/core/parts"
)

// Crawler performs sequential breadth-first crawls.
type Crawler struct {
	cfg       core.CrawlConfig
	fetcher   core.Fetcher
	parts     *parts.Store
	rules     *Rules
	limiter   *rate.Limiter
	client    *http.Client
	robots    *robotsCache
	userAgent string
	images    core.ImageLocalizer
}

// New creates a Crawler that fetches pages with fetcher and writes them to
// store. userAgent is sent with robots.txt and sitemap requests and is the
// agent robots.txt rules are matched against.
func New(cfg core.CrawlConfig, fetcher core.Fetcher, store *parts.Store, userAgent string) (*Crawler, error) {
	rules, err := NewRules(cfg.Rules, cfg.All, cfg.Strict)
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	return &Crawler{
		cfg:       cfg,
		fetcher:   fetcher,
		parts:     store,
		rules:     rules,
		limiter:   rate.NewLimiter(limit, 1),
		client:    client,
		robots:    newRobotsCache(client, userAgent),
		userAgent: userAgent,
	}, nil
}

// WithImages makes the crawler save the images of every stored page with l.
// A nil l leaves pages as fetched.
func (c *Crawler) WithImages(l core.ImageLocalizer) *Crawler {
	c.images = l
	return c
}

// Crawl visits startURL and the links it leads to, writing one part file
// per page, and returns the part names in visiting order. Pages that fail
// to load are skipped; the crawl fails only when no page was stored.
func (c *Crawler) Crawl(ctx context.Context, startURL, domain string) ([]string, error) {
	log := zerolog.Ctx(ctx).With().Str("start", startURL).Logger()

	queue := NewQueue()
	queue.Add(NormalizeURL(startURL))
	if c.cfg.All && c.cfg.UseSitemap {
		c.seedFromSitemap(ctx, &log, queue, startURL, domain)
	}

	var names []string
	for queue.HasNext() {
		if c.cfg.MaxPages > 0 && len(names) >= c.cfg.MaxPages {
			log.Debug().Int("pending", queue.Pending()).Int("seen", queue.Seen()).Msg("Page limit reached")
			break
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		pageURL := queue.Next()
		if c.cfg.RespectRobots && !c.robots.Allowed(ctx, pageURL) {
			log.Debug().Str("url", pageURL).Msg("Disallowed by robots.txt")
			continue
		}

		res, err := c.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn().Err(err).Str("url", pageURL).Msg("Skipping page")
			continue
		}

		name, err := c.parts.Write(res.Body)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		log.Info().Str("url", pageURL).Str("part", name).Int("page", len(names)).Msg("Crawled page")

		base := res.URL
		if base == "" {
			base = pageURL
		}
		if c.images != nil {
			if _, err := c.images.Localize(ctx, name, base); err != nil {
				log.Warn().Err(err).Str("url", pageURL).Msg("Failed to save images")
			}
		}
		links, err := extractLinks(string(res.Body), base)
		if err != nil {
			log.Debug().Err(err).Str("url", pageURL).Msg("Could not extract links")
			continue
		}
		c.enqueue(queue, links, domain)
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("no pages retrieved from %s", startURL)
	}
	return names, nil
}

// enqueue adds the links of one page that pass the rules, at most MaxLinks
// of them.
func (c *Crawler) enqueue(queue *Queue, links []string, domain string) {
	added := 0
	for _, link := range links {
		if c.cfg.MaxLinks > 0 && added >= c.cfg.MaxLinks {
			return
		}
		if !c.rules.Follow(link, domain) {
			continue
		}
		if queue.Add(NormalizeURL(link)) {
			added++
		}
	}
}

func (c *Crawler) seedFromSitemap(ctx context.Context, log *zerolog.Logger, queue *Queue, startURL, domain string) {
	urls, err := c.discoverFromSitemap(ctx, startURL)
	if err != nil {
		log.Debug().Err(err).Msg("No sitemap")
		return
	}
	seeded := 0
	for _, u := range urls {
		if c.rules.Follow(u, domain) && queue.Add(NormalizeURL(u)) {
			seeded++
		}
	}
	log.Debug().Int("urls", seeded).Msg("Seeded from sitemap")
}

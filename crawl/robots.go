package crawl

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/temoto/robotstxt"
)

// robotsCache holds the parsed robots.txt of every host seen in a crawl.
// A host whose robots.txt cannot be read allows everything.
type robotsCache struct {
	client    *http.Client
	userAgent string
	hosts     map[string]*robotstxt.RobotsData
}

func newRobotsCache(client *http.Client, userAgent string) *robotsCache {
	return &robotsCache{
		client:    client,
		userAgent: userAgent,
		hosts:     make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether pageURL may be fetched.
func (r *robotsCache) Allowed(ctx context.Context, pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}

	key := u.Scheme + "://" + u.Host
	data, ok := r.hosts[key]
	if !ok {
		data, err = r.load(ctx, key)
		if err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Str("host", u.Host).Msg("robots.txt unavailable")
		}
		r.hosts[key] = data
	}
	if data == nil {
		return true
	}

	p := u.EscapedPath()
	if p == "" {
		p = "/"
	}
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	return data.TestAgent(p, r.userAgent)
}

func (r *robotsCache) load(ctx context.Context, origin string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parsing robots.txt: %w", err)
	}
	return data, nil
}

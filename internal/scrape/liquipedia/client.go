// Package liquipedia scrapes a team's wiki pages: the match-history table
// for the latest result and the roster card for the current lineup. All
// selector knowledge for the wiki lives here; a selector miss means "field
// absent", never a failure.
package liquipedia

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vbertoni/torcida/internal/cache"
	"github.com/vbertoni/torcida/internal/fetch"
)

const fetchTimeout = 10 * time.Second

// Client fetches rendered wiki pages for one site instance.
type Client struct {
	fetcher *fetch.Fetcher
	cache   *cache.PageCache
	baseURL string
	log     zerolog.Logger
}

// NewClient creates a wiki client. cache may be nil.
func NewClient(fetcher *fetch.Fetcher, pageCache *cache.PageCache, baseURL string, log zerolog.Logger) *Client {
	return &Client{
		fetcher: fetcher,
		cache:   pageCache,
		baseURL: baseURL,
		log:     log.With().Str("component", "liquipedia").Logger(),
	}
}

// Headers returns the request headers the wiki expects for a team page.
func (c *Client) Headers(team string) map[string]string {
	return map[string]string{
		"User-Agent": "TorcidaBot/1.0",
		"Referer":    fmt.Sprintf("%s/%s", c.baseURL, team),
	}
}

// renderedPage fetches a ?action=render page, going through the page cache
// when one is configured.
func (c *Client) renderedPage(ctx context.Context, team, path string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s?action=render", c.baseURL, path)

	if body, ok := c.cache.Get(ctx, url); ok {
		return body, nil
	}

	body, err := c.fetcher.Get(ctx, url, c.Headers(team), fetchTimeout)
	if err != nil {
		return nil, err
	}

	c.cache.Put(ctx, url, body)
	return body, nil
}

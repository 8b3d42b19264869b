// Package bo3 derives a canonical match-page URL from a normalized match
// record and scrapes the per-player scoreboard off that page.
package bo3

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vbertoni/torcida/internal/fetch"
	"github.com/vbertoni/torcida/internal/scrape/liquipedia"
)

const (
	probeTimeout = 5 * time.Second
	pageTimeout  = 10 * time.Second

	femaleSuffix    = "_fe"
	altFemaleSuffix = "-fe"
)

// Accepted date layouts for the wiki's date column, tried in order.
var dateLayouts = []string{"2 Jan 2006", "Jan 2, 2006", "2006-01-02"}

// Canonical URL slugs for team identifiers. Identifiers not listed here are
// simply lowercased.
var teamSlugs = map[string]string{
	"FURIA":        "furia",
	"FURIA_Female": "furia-fe",
}

// DateFormatError reports a date the resolver could not parse with any
// accepted layout.
type DateFormatError struct {
	Raw string
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("bo3: unexpected date format %q", e.Raw)
}

// ResolvedURL is a match-page URL plus the slugs used to build it. Computed
// once per query, never cached.
type ResolvedURL struct {
	URL          string
	TeamSlug     string
	OpponentSlug string
	DateSlug     string
}

// Client resolves and scrapes match pages for one site instance.
type Client struct {
	fetcher *fetch.Fetcher
	baseURL string
	log     zerolog.Logger
}

// NewClient creates a match-page client.
func NewClient(fetcher *fetch.Fetcher, baseURL string, log zerolog.Logger) *Client {
	return &Client{
		fetcher: fetcher,
		baseURL: baseURL,
		log:     log.With().Str("component", "bo3").Logger(),
	}
}

// Resolve builds the match-page URL for a record. Returns (nil, nil) when no
// record is supplied and a DateFormatError when the record's date cannot be
// parsed. The HEAD probe is advisory: a 404 on a female-line slug triggers
// one alternate-suffix attempt, accepted only when its own probe returns 200;
// probe transport errors keep the primary URL.
func (c *Client) Resolve(ctx context.Context, rec *liquipedia.MatchRecord, team string, headers map[string]string) (*ResolvedURL, error) {
	if rec == nil {
		return nil, nil
	}

	rawDate := strings.TrimSpace(strings.SplitN(rec.Date, " -", 2)[0])
	var parsed time.Time
	var ok bool
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, rawDate); err == nil {
			parsed, ok = t, true
			break
		}
	}
	if !ok {
		return nil, &DateFormatError{Raw: rawDate}
	}

	resolved := &ResolvedURL{
		TeamSlug:     teamSlug(team),
		OpponentSlug: opponentSlug(rec.Opponent, team),
		DateSlug:     parsed.Format("02-01-2006"),
	}
	resolved.URL = c.matchURL(resolved.TeamSlug, resolved.OpponentSlug, resolved.DateSlug)

	status, err := c.fetcher.Head(ctx, resolved.URL, headers, probeTimeout)
	if err != nil {
		c.log.Warn().Err(err).Str("url", resolved.URL).Msg("head probe failed, keeping primary URL")
		return resolved, nil
	}

	if status == http.StatusNotFound && strings.Contains(resolved.OpponentSlug, femaleSuffix) {
		altSlug := strings.ReplaceAll(resolved.OpponentSlug, femaleSuffix, altFemaleSuffix)
		altURL := c.matchURL(resolved.TeamSlug, altSlug, resolved.DateSlug)
		c.log.Info().Str("primary", resolved.URL).Str("fallback", altURL).Msg("primary URL 404, probing fallback")

		if altStatus, altErr := c.fetcher.Head(ctx, altURL, headers, probeTimeout); altErr == nil && altStatus == http.StatusOK {
			resolved.OpponentSlug = altSlug
			resolved.URL = altURL
		}
	}

	return resolved, nil
}

func (c *Client) matchURL(team, opponent, date string) string {
	return fmt.Sprintf("%s/matches/%s-vs-%s-%s", c.baseURL, team, opponent, date)
}

func teamSlug(team string) string {
	if slug, ok := teamSlugs[team]; ok {
		return slug
	}
	return strings.ToLower(team)
}

// opponentSlug normalizes an opponent name into its URL form: lowercase,
// female marker stripped, whitespace and underscores hyphenated, and the
// female-line suffix appended when the querying team is the female roster.
func opponentSlug(opponent, team string) string {
	base := strings.ToLower(opponent)
	base = strings.ReplaceAll(base, "_female", "")
	base = strings.ReplaceAll(base, " female", "")
	base = strings.ReplaceAll(base, " ", "-")
	base = strings.ReplaceAll(base, "_", "-")

	if isFemaleTeam(team) {
		return base + femaleSuffix
	}
	return base
}

func isFemaleTeam(team string) bool {
	return strings.Contains(strings.ToLower(team), "female")
}

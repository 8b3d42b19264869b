// Package pandascore is a thin client for the PandaScore esports API: the
// currently-live endpoint feeding the live tracker and the upcoming endpoint
// behind the next-match query.
package pandascore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vbertoni/torcida/internal/fetch"
)

const requestTimeout = 10 * time.Second

// ErrMissingToken is returned when an API call is attempted without a
// configured token. Checked at the point of use so the rest of the bot keeps
// working without PandaScore access.
var ErrMissingToken = errors.New("pandascore: PANDASCORE_TOKEN is not set")

// LiveSnapshot is the current state of a live match. Ephemeral; only ever
// compared against the previously rendered text.
type LiveSnapshot struct {
	Round int    `json:"round"`
	Score string `json:"score"` // "AxB"
	Team1 string `json:"team1"`
	Team2 string `json:"team2"`
}

// UpcomingMatch is the next scheduled match, pre-rendered for display.
type UpcomingMatch struct {
	Opponent string `json:"opponent"`
	DateText string `json:"date_text"`
	League   string `json:"league"`
}

// Client calls the PandaScore CS game endpoints.
type Client struct {
	fetcher  *fetch.Fetcher
	baseURL  string
	token    string
	teamName string
	now      func() time.Time
	log      zerolog.Logger
}

// NewClient creates an API client. token may be empty; calls will then fail
// with ErrMissingToken.
func NewClient(fetcher *fetch.Fetcher, baseURL, token, teamName string, log zerolog.Logger) *Client {
	return &Client{
		fetcher:  fetcher,
		baseURL:  baseURL,
		token:    token,
		teamName: teamName,
		now:      time.Now,
		log:      log.With().Str("component", "pandascore").Logger(),
	}
}

// Wire shapes. Scores arrive as numbers or strings depending on the match
// state, so they are decoded loosely.
type liveMatch struct {
	Live struct {
		Round int `json:"round"`
	} `json:"live"`
	Scores    map[string]any `json:"scores"`
	Opponents []struct {
		Opponent struct {
			Name string `json:"name"`
		} `json:"opponent"`
	} `json:"opponents"`
	BeginAt string `json:"begin_at"`
	League  struct {
		Name string `json:"name"`
	} `json:"league"`
}

// LiveMatch returns the first currently-live match, or (nil, nil) when
// nothing is live.
func (c *Client) LiveMatch(ctx context.Context) (*LiveSnapshot, error) {
	matches, err := c.fetchMatches(ctx, "/csgo/matches/live", "")
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}

	m := matches[0]
	snap := &LiveSnapshot{
		Round: m.Live.Round,
		Score: fmt.Sprintf("%vx%v", scoreValue(m.Scores["1"]), scoreValue(m.Scores["2"])),
	}
	if len(m.Opponents) >= 2 {
		snap.Team1 = m.Opponents[0].Opponent.Name
		snap.Team2 = m.Opponents[1].Opponent.Name
	}
	return snap, nil
}

// NextMatch returns the next scheduled match, or (nil, nil) when nothing is
// on the calendar.
func (c *Client) NextMatch(ctx context.Context) (*UpcomingMatch, error) {
	matches, err := c.fetchMatches(ctx, "/csgo/matches/upcoming", "&per_page=1")
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}

	m := matches[0]

	opponent := "Desconhecido"
	for _, o := range m.Opponents {
		if !strings.EqualFold(o.Opponent.Name, c.teamName) {
			opponent = o.Opponent.Name
			break
		}
	}

	return &UpcomingMatch{
		Opponent: opponent,
		DateText: c.beginAtText(m.BeginAt),
		League:   m.League.Name,
	}, nil
}

func (c *Client) fetchMatches(ctx context.Context, path, extraQuery string) ([]liveMatch, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}

	url := fmt.Sprintf("%s%s?token=%s%s", c.baseURL, path, c.token, extraQuery)
	body, err := c.fetcher.Get(ctx, url, nil, requestTimeout)
	if err != nil {
		return nil, err
	}

	var matches []liveMatch
	if err := json.Unmarshal(body, &matches); err != nil {
		return nil, fmt.Errorf("pandascore: decode %s: %w", path, err)
	}
	return matches, nil
}

// beginAtText renders a begin_at timestamp the way fans read it: a same-day
// match gets the hype line, a date-only value just the date, a full timestamp
// date and local time.
func (c *Client) beginAtText(beginAt string) string {
	if beginAt == "" {
		return ""
	}

	dateOnly := !strings.Contains(beginAt, "T")
	layout := time.RFC3339
	if dateOnly {
		layout = "2006-01-02"
	}

	t, err := time.Parse(layout, beginAt)
	if err != nil {
		return beginAt
	}

	if t.UTC().Format("2006-01-02") == c.now().UTC().Format("2006-01-02") {
		return "É HOJE! 🎉"
	}
	if dateOnly {
		return t.Format("02/01/2006")
	}
	return t.Local().Format("02/01/2006 15:04")
}

// scoreValue normalizes a loosely-typed score cell for display.
func scoreValue(v any) string {
	switch s := v.(type) {
	case nil:
		return "0"
	case string:
		return s
	case float64:
		return fmt.Sprintf("%d", int(s))
	default:
		return fmt.Sprint(s)
	}
}

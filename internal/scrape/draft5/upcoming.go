// Package draft5 scrapes a team's upcoming-matches page. The page is
// JS-rendered, so fetching goes through a headless browser and waits for the
// date headings to appear before the DOM is considered ready.
package draft5

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/vbertoni/torcida/internal/fetch"
)

const (
	// Styled-component class names on the schedule page. Markup changes only
	// ever need touching these.
	dateHeadingSel = "p.MatchList__MatchListDate-sc-1pio0qc-0"
	matchCardSel   = "a.MatchCardSimple__MatchContainer-sc-wcmxha-0"
	matchTimeSel   = "small.MatchCardSimple__MatchTime-sc-wcmxha-3"
	matchTeamSel   = "div.MatchCardSimple__MatchTeam-sc-wcmxha-11"
	teamScoreSel   = "div.MatchCardSimple__Score-sc-wcmxha-15"
	bestOfSel      = "div.MatchCardSimple__Badge-sc-wcmxha-18"
	tournamentSel  = "div.MatchCardSimple__Tournament-sc-wcmxha-34"

	renderWait = 10 * time.Second

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Match is one scheduled match card.
type Match struct {
	Date       string `json:"date"`
	Time       string `json:"time"`
	Team1      string `json:"team1"`
	Score1     string `json:"score1"`
	Team2      string `json:"team2"`
	Score2     string `json:"score2"`
	BestOf     string `json:"best_of"`
	Tournament string `json:"tournament"`
}

// Client drives a shared headless-browser allocator.
type Client struct {
	baseURL  string
	allocCtx context.Context
	cancel   context.CancelFunc
	log      zerolog.Logger
}

// NewClient creates a schedule client with its own browser allocator.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Client{
		baseURL:  baseURL,
		allocCtx: allocCtx,
		cancel:   cancel,
		log:      log.With().Str("component", "draft5").Logger(),
	}
}

// Close releases the browser allocator.
func (c *Client) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

// UpcomingMatches navigates to the team's schedule page and parses the match
// cards. A DOM that never shows a date heading within the bounded wait maps
// to fetch.ErrTimeout so callers can apply their retry policy.
func (c *Client) UpcomingMatches(ctx context.Context, teamSlug string) ([]Match, error) {
	url := fmt.Sprintf("%s/equipe/%s/proximas-partidas", c.baseURL, teamSlug)

	html, err := c.renderPage(ctx, url)
	if err != nil {
		return nil, err
	}

	matches := ParseUpcoming(html)
	c.log.Debug().Int("matches", len(matches)).Str("team", teamSlug).Msg("parsed upcoming matches")
	return matches, nil
}

func (c *Client) renderPage(ctx context.Context, url string) (string, error) {
	browserCtx, cancel := chromedp.NewContext(c.allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, renderWait)
	defer cancel()

	// Tie the browser run to the caller's context as well.
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-browserCtx.Done():
		}
	}()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(dateHeadingSel, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s", fetch.ErrTimeout, url)
		}
		return "", fmt.Errorf("draft5: render %s: %w", url, err)
	}

	return html, nil
}

// ParseUpcoming extracts date-heading + match-card groups from rendered HTML.
func ParseUpcoming(html string) []Match {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var matches []Match
	doc.Find(dateHeadingSel).Each(func(i int, heading *goquery.Selection) {
		date := strings.TrimSpace(strings.TrimPrefix(heading.Text(), "📅 "))

		// Cards belonging to this heading are its following siblings up to
		// the next date heading.
		heading.NextUntil(dateHeadingSel).Each(func(j int, card *goquery.Selection) {
			if !card.Is(matchCardSel) {
				return
			}
			if m := parseMatchCard(card, date); m != nil {
				matches = append(matches, *m)
			}
		})
	})

	return matches
}

func parseMatchCard(card *goquery.Selection, date string) *Match {
	teams := card.Find(matchTeamSel)
	if teams.Length() < 2 {
		return nil
	}

	name1, score1 := parseTeamCell(teams.Eq(0))
	name2, score2 := parseTeamCell(teams.Eq(1))

	return &Match{
		Date:       date,
		Time:       strings.TrimSpace(card.Find(matchTimeSel).First().Text()),
		Team1:      name1,
		Score1:     score1,
		Team2:      name2,
		Score2:     score2,
		BestOf:     strings.TrimSpace(card.Find(bestOfSel).First().Text()),
		Tournament: strings.TrimSpace(card.Find(tournamentSel).First().Text()),
	}
}

func parseTeamCell(cell *goquery.Selection) (name, score string) {
	name = strings.TrimSpace(cell.Find("span").First().Text())
	score = strings.TrimSpace(cell.Find(teamScoreSel).First().Text())
	return name, score
}

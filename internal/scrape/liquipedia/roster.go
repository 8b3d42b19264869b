package liquipedia

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Roster returns the nicknames on the team's roster card, in page order,
// excluding coaches. An empty slice means the card was not found or empty;
// errors are reserved for transport failures.
func (c *Client) Roster(ctx context.Context, team string) ([]string, error) {
	body, err := c.renderedPage(ctx, team, team)
	if err != nil {
		return nil, err
	}
	return parseRoster(body), nil
}

func parseRoster(body []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	table := doc.Find("table.roster-card").First()
	if table.Length() == 0 {
		return nil
	}

	var players []string
	table.Find("tr.Player").Each(func(i int, row *goquery.Selection) {
		if row.HasClass("roster-coach") {
			return
		}
		nick := strings.TrimSpace(row.Find("td.ID a").First().Text())
		if nick != "" {
			players = append(players, nick)
		}
	})

	return players
}

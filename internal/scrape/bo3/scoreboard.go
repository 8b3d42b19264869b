package bo3

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// missingCell marks a stat the page did not carry for a player.
const missingCell = "-"

// ScoreboardEntry is one player line. Stat cells the page does not carry are
// the "-" sentinel, never empty.
type ScoreboardEntry struct {
	Nickname string `json:"nickname"`
	Kills    string `json:"kills"`
	Deaths   string `json:"deaths"`
	Assists  string `json:"assists"`
	ADR      string `json:"adr"`
	Score    string `json:"score"`
}

// Scoreboard preserves page order; the first entry is taken as the MVP by
// convention.
type Scoreboard []ScoreboardEntry

// Scoreboard fetches a match page and extracts up to maxPlayers player lines.
// An empty board means the page shape did not match expectations; errors are
// reserved for transport failures.
func (c *Client) Scoreboard(ctx context.Context, url string, maxPlayers int, headers map[string]string) (Scoreboard, error) {
	body, err := c.fetcher.Get(ctx, url, headers, pageTimeout)
	if err != nil {
		return nil, err
	}
	return parseScoreboard(body, maxPlayers), nil
}

func parseScoreboard(body []byte, maxPlayers int) Scoreboard {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var board Scoreboard
	doc.Find("div.table-row").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if row.HasClass("total") {
			return true // aggregate row, not a player
		}

		nick := strings.TrimSpace(row.Find("span.nickname").First().Text())
		if nick == "" {
			return true
		}

		board = append(board, ScoreboardEntry{
			Nickname: nick,
			Kills:    cellValue(row, "div.table-cell.kills p.value"),
			Deaths:   cellValue(row, "div.table-cell.deaths p.value"),
			Assists:  cellValue(row, "div.table-cell.assists p.value"),
			ADR:      cellValue(row, "div.table-cell.adr p.value"),
			Score:    cellValue(row, "span.c-table-cell-score__value"),
		})

		return len(board) < maxPlayers
	})

	return board
}

func cellValue(row *goquery.Selection, selector string) string {
	cell := row.Find(selector).First()
	if cell.Length() == 0 {
		return missingCell
	}
	if v := strings.TrimSpace(cell.Text()); v != "" {
		return v
	}
	return missingCell
}

package liquipedia

import (
	"bytes"
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Column layout of the match-history wikitable. Consumed by fixed index; the
// wiki has at least nine columns in this layout.
const (
	colDate     = 0
	colEvent    = 5
	colScore    = 7
	colOpponent = 8

	minColumns = 9
)

// Result of a finished match, derived from its score string.
type Result int

const (
	Win Result = iota
	Loss
)

func (r Result) String() string {
	if r == Win {
		return "win"
	}
	return "loss"
}

// MatchRecord is the normalized latest match read from the history table.
// Immutable once built.
type MatchRecord struct {
	Date     string
	Event    string
	Opponent string
	Score    string // raw, e.g. "2 - 1"
	Result   Result
}

var scoreDigits = regexp.MustCompile(`\d+`)

// DeriveResult computes win/loss from a raw score string. With two embedded
// integers the left side is ours; equal scores resolve to Win, a quirk kept
// for compatibility with the displayed history. Without two integers it falls
// back to a "win" keyword match.
func DeriveResult(score string) Result {
	nums := scoreDigits.FindAllString(score, 2)
	if len(nums) >= 2 {
		left, _ := strconv.Atoi(nums[0])
		right, _ := strconv.Atoi(nums[1])
		if left >= right {
			return Win
		}
		return Loss
	}
	if strings.Contains(strings.ToLower(score), "win") {
		return Win
	}
	return Loss
}

// LatestMatch reads the first data row of the team's match-history table.
// Returns (nil, nil) when the page has no parseable result; errors are
// reserved for transport failures.
func (c *Client) LatestMatch(ctx context.Context, team string) (*MatchRecord, error) {
	body, err := c.renderedPage(ctx, team, team+"/Matches")
	if err != nil {
		return nil, err
	}
	return parseLatestMatch(body), nil
}

func parseLatestMatch(body []byte) *MatchRecord {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	table := doc.Find("table.wikitable").First()
	if table.Length() == 0 {
		return nil
	}

	var record *MatchRecord
	table.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		cols := row.Find("td")
		if cols.Length() < minColumns {
			return true // header or malformed row
		}

		score := strings.TrimSpace(cols.Eq(colScore).Text())

		// Prefer the titled opponent link over the cell's plain text.
		opponent := strings.TrimSpace(cols.Eq(colOpponent).Text())
		if link := cols.Eq(colOpponent).Find("a[title]").First(); link.Length() > 0 {
			if title, ok := link.Attr("title"); ok {
				opponent = strings.TrimSpace(title)
			}
		}

		record = &MatchRecord{
			Date:     strings.TrimSpace(cols.Eq(colDate).Text()),
			Event:    strings.TrimSpace(cols.Eq(colEvent).Text()),
			Opponent: opponent,
			Score:    score,
			Result:   DeriveResult(score),
		}
		return false // first data row is the latest match
	})

	return record
}

package pandascore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbertoni/torcida/internal/fetch"
	"github.com/vbertoni/torcida/internal/logger"
)

func newTestClient(baseURL, token string) *Client {
	return NewClient(fetch.New(), baseURL, token, "FURIA", logger.New("disabled"))
}

func jsonServer(t *testing.T, wantPath, payload string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantPath, r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("token"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
}

func TestLiveMatch_StringScores(t *testing.T) {
	srv := jsonServer(t, "/csgo/matches/live", `[{
		"live": {"round": 3},
		"scores": {"1": "2", "2": "1"},
		"opponents": [
			{"opponent": {"name": "FURIA"}},
			{"opponent": {"name": "The MongolZ"}}
		]
	}]`)
	defer srv.Close()

	snap, err := newTestClient(srv.URL, "secret").LiveMatch(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 3, snap.Round)
	assert.Equal(t, "2x1", snap.Score)
	assert.Equal(t, "FURIA", snap.Team1)
	assert.Equal(t, "The MongolZ", snap.Team2)
}

func TestLiveMatch_NumericScores(t *testing.T) {
	srv := jsonServer(t, "/csgo/matches/live", `[{
		"live": {"round": 12},
		"scores": {"1": 9, "2": 3},
		"opponents": [
			{"opponent": {"name": "FURIA"}},
			{"opponent": {"name": "MIBR"}}
		]
	}]`)
	defer srv.Close()

	snap, err := newTestClient(srv.URL, "secret").LiveMatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "9x3", snap.Score)
}

func TestLiveMatch_MissingScoresDefaultToZero(t *testing.T) {
	srv := jsonServer(t, "/csgo/matches/live", `[{"live": {"round": 1}, "opponents": []}]`)
	defer srv.Close()

	snap, err := newTestClient(srv.URL, "secret").LiveMatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0x0", snap.Score)
	assert.Empty(t, snap.Team1)
}

func TestLiveMatch_NothingLive(t *testing.T) {
	srv := jsonServer(t, "/csgo/matches/live", `[]`)
	defer srv.Close()

	snap, err := newTestClient(srv.URL, "secret").LiveMatch(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestLiveMatch_MissingToken(t *testing.T) {
	_, err := newTestClient("https://example.org", "").LiveMatch(context.Background())
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestNextMatch_PicksOpponent(t *testing.T) {
	srv := jsonServer(t, "/csgo/matches/upcoming", `[{
		"begin_at": "2025-09-10T18:00:00Z",
		"league": {"name": "ESL Pro League"},
		"opponents": [
			{"opponent": {"name": "furia"}},
			{"opponent": {"name": "Vitality"}}
		]
	}]`)
	defer srv.Close()

	c := newTestClient(srv.URL, "secret")
	c.now = func() time.Time { return time.Date(2025, 8, 28, 12, 0, 0, 0, time.UTC) }

	m, err := c.NextMatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Vitality", m.Opponent, "own team skipped case-insensitively")
	assert.Equal(t, "ESL Pro League", m.League)
	assert.NotEmpty(t, m.DateText)
}

func TestNextMatch_UnknownOpponent(t *testing.T) {
	srv := jsonServer(t, "/csgo/matches/upcoming", `[{
		"begin_at": "2025-09-10",
		"league": {"name": "ESL Pro League"},
		"opponents": [{"opponent": {"name": "FURIA"}}]
	}]`)
	defer srv.Close()

	c := newTestClient(srv.URL, "secret")
	c.now = func() time.Time { return time.Date(2025, 8, 28, 12, 0, 0, 0, time.UTC) }

	m, err := c.NextMatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Desconhecido", m.Opponent)
	assert.Equal(t, "10/09/2025", m.DateText, "date-only value rendered without time")
}

func TestNextMatch_NothingScheduled(t *testing.T) {
	srv := jsonServer(t, "/csgo/matches/upcoming", `[]`)
	defer srv.Close()

	m, err := newTestClient(srv.URL, "secret").NextMatch(context.Background())
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestBeginAtText(t *testing.T) {
	c := newTestClient("https://example.org", "secret")
	c.now = func() time.Time { return time.Date(2025, 8, 28, 12, 0, 0, 0, time.UTC) }

	assert.Equal(t, "É HOJE! 🎉", c.beginAtText("2025-08-28T20:00:00Z"))
	assert.Equal(t, "É HOJE! 🎉", c.beginAtText("2025-08-28"))
	assert.Equal(t, "10/09/2025", c.beginAtText("2025-09-10"))
	assert.Equal(t, "", c.beginAtText(""))
	assert.Equal(t, "not-a-date", c.beginAtText("not-a-date"), "unparseable value passed through")
}

package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbertoni/torcida/internal/bot"
	"github.com/vbertoni/torcida/internal/chat"
	"github.com/vbertoni/torcida/internal/livetrack"
	"github.com/vbertoni/torcida/internal/logger"
	"github.com/vbertoni/torcida/internal/pandascore"
	"github.com/vbertoni/torcida/internal/scrape/bo3"
	"github.com/vbertoni/torcida/internal/scrape/draft5"
	"github.com/vbertoni/torcida/internal/scrape/liquipedia"
)

type stubResults struct {
	rec    *liquipedia.MatchRecord
	recErr error
	teams  []string
}

func (s *stubResults) LatestMatch(ctx context.Context, team string) (*liquipedia.MatchRecord, error) {
	s.teams = append(s.teams, team)
	return s.rec, s.recErr
}

func (s *stubResults) Roster(ctx context.Context, team string) ([]string, error) { return nil, nil }

func (s *stubResults) Headers(team string) map[string]string { return nil }

type stubPages struct {
	resolved   *bo3.ResolvedURL
	resolveErr error
	board      bo3.Scoreboard
}

func (s *stubPages) Resolve(ctx context.Context, rec *liquipedia.MatchRecord, team string, headers map[string]string) (*bo3.ResolvedURL, error) {
	return s.resolved, s.resolveErr
}

func (s *stubPages) Scoreboard(ctx context.Context, url string, maxPlayers int, headers map[string]string) (bo3.Scoreboard, error) {
	return s.board, nil
}

type stubSchedule struct {
	matches []draft5.Match
	err     error
}

func (s *stubSchedule) UpcomingMatches(ctx context.Context, teamSlug string) ([]draft5.Match, error) {
	return s.matches, s.err
}

type stubLive struct {
	next    *pandascore.UpcomingMatch
	nextErr error
}

func (s *stubLive) NextMatch(ctx context.Context) (*pandascore.UpcomingMatch, error) {
	return s.next, s.nextErr
}

func (s *stubLive) LiveMatch(ctx context.Context) (*pandascore.LiveSnapshot, error) { return nil, nil }

type stubMessenger struct {
	sent int
}

func (m *stubMessenger) SendMessage(ctx context.Context, chatID int64, text string, markup chat.Markup) (int, error) {
	m.sent++
	return m.sent, nil
}

func (m *stubMessenger) EditMessage(ctx context.Context, chatID int64, messageID int, text string, markup chat.Markup) error {
	return nil
}

func (m *stubMessenger) SendPoll(ctx context.Context, chatID int64, question string, options []string) error {
	return nil
}

func (m *stubMessenger) SendTyping(ctx context.Context, chatID int64) error { return nil }

type stubScheduler struct{ active map[int64]bool }

func (s *stubScheduler) Schedule(chatID int64, interval time.Duration, tick func()) livetrack.Handle {
	if s.active == nil {
		s.active = make(map[int64]bool)
	}
	s.active[chatID] = true
	return func() {}
}

func (s *stubScheduler) Cancel(chatID int64) bool {
	existed := s.active[chatID]
	delete(s.active, chatID)
	return existed
}

type handlerFixture struct {
	handler  *Handler
	results  *stubResults
	pages    *stubPages
	schedule *stubSchedule
	live     *stubLive
	store    *livetrack.Store
	msgr     *stubMessenger
}

func newHandlerFixture() *handlerFixture {
	log := logger.New("disabled")
	results := &stubResults{}
	pages := &stubPages{}
	schedule := &stubSchedule{}
	live := &stubLive{}
	msgr := &stubMessenger{}
	store := livetrack.NewStore()

	cfg := bot.Config{
		TeamSlug:       "FURIA",
		FemaleTeamSlug: "FURIA_Female",
		Draft5Slug:     "330-FURIA",
		Draft5FemSlug:  "1200-FURIA-fem",
		MaxPlayers:     5,
	}
	tracker := livetrack.NewTracker(store, &stubScheduler{}, live, msgr, nil, 45*time.Second, log)
	b := bot.New(cfg, msgr, tracker, results, pages, schedule, live, log)

	return &handlerFixture{
		handler:  NewHandler(cfg, b, results, pages, schedule, live, store, nil, log),
		results:  results,
		pages:    pages,
		schedule: schedule,
		live:     live,
		store:    store,
		msgr:     msgr,
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthCheck_NoCacheIsHealthy(t *testing.T) {
	f := newHandlerFixture()
	rec := httptest.NewRecorder()

	f.handler.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])
}

func TestGetLastResult(t *testing.T) {
	f := newHandlerFixture()
	f.results.rec = &liquipedia.MatchRecord{
		Date: "Aug 24, 2025", Event: "IEM Cologne", Opponent: "MIBR", Score: "2 : 1", Result: liquipedia.Win,
	}

	rec := httptest.NewRecorder()
	f.handler.GetLastResult(rec, httptest.NewRequest(http.MethodGet, "/api/v1/last-result", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "MIBR", body["opponent"])
	assert.Equal(t, "win", body["result"])
	assert.Equal(t, []string{"FURIA"}, f.results.teams)
}

func TestGetLastResult_FemaleLineQuery(t *testing.T) {
	f := newHandlerFixture()
	f.results.rec = &liquipedia.MatchRecord{Opponent: "MIBR Female"}

	rec := httptest.NewRecorder()
	f.handler.GetLastResult(rec, httptest.NewRequest(http.MethodGet, "/api/v1/last-result?line=female", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"FURIA_Female"}, f.results.teams)
}

func TestGetLastResult_NotFound(t *testing.T) {
	f := newHandlerFixture()
	rec := httptest.NewRecorder()
	f.handler.GetLastResult(rec, httptest.NewRequest(http.MethodGet, "/api/v1/last-result", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetLastResult_UpstreamFailure(t *testing.T) {
	f := newHandlerFixture()
	f.results.recErr = errors.New("wiki down")

	rec := httptest.NewRecorder()
	f.handler.GetLastResult(rec, httptest.NewRequest(http.MethodGet, "/api/v1/last-result", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetScoreboard_BadDateIsUnprocessable(t *testing.T) {
	f := newHandlerFixture()
	f.results.rec = &liquipedia.MatchRecord{Date: "someday"}
	f.pages.resolveErr = &bo3.DateFormatError{Raw: "someday"}

	rec := httptest.NewRecorder()
	f.handler.GetScoreboard(rec, httptest.NewRequest(http.MethodGet, "/api/v1/scoreboard", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetScoreboard(t *testing.T) {
	f := newHandlerFixture()
	f.results.rec = &liquipedia.MatchRecord{Date: "24 Aug 2025", Opponent: "MIBR"}
	f.pages.resolved = &bo3.ResolvedURL{URL: "https://bo3.gg/matches/furia-vs-mibr-24-08-2025"}
	f.pages.board = bo3.Scoreboard{{Nickname: "yuurih", Kills: "25"}}

	rec := httptest.NewRecorder()
	f.handler.GetScoreboard(rec, httptest.NewRequest(http.MethodGet, "/api/v1/scoreboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, "https://bo3.gg/matches/furia-vs-mibr-24-08-2025", body["url"])
}

func TestGetNextMatches(t *testing.T) {
	f := newHandlerFixture()
	f.schedule.matches = []draft5.Match{{Date: "29/08/2025", Team1: "FURIA", Team2: "MIBR"}}

	rec := httptest.NewRecorder()
	f.handler.GetNextMatches(rec, httptest.NewRequest(http.MethodGet, "/api/v1/next-matches", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["count"])
}

func TestGetNextMatch(t *testing.T) {
	f := newHandlerFixture()
	f.live.next = &pandascore.UpcomingMatch{Opponent: "Vitality", DateText: "É HOJE! 🎉", League: "BLAST Premier"}

	rec := httptest.NewRecorder()
	f.handler.GetNextMatch(rec, httptest.NewRequest(http.MethodGet, "/api/v1/next-match", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Vitality", body["opponent"])
	assert.Equal(t, "É HOJE! 🎉", body["date"])
	assert.Equal(t, "BLAST Premier", body["league"])
}

func TestGetNextMatch_NoneScheduled(t *testing.T) {
	f := newHandlerFixture()

	rec := httptest.NewRecorder()
	f.handler.GetNextMatch(rec, httptest.NewRequest(http.MethodGet, "/api/v1/next-match", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetNextMatch_APIFailure(t *testing.T) {
	f := newHandlerFixture()
	f.live.nextErr = pandascore.ErrMissingToken

	rec := httptest.NewRecorder()
	f.handler.GetNextMatch(rec, httptest.NewRequest(http.MethodGet, "/api/v1/next-match", nil))

	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetLiveSessions(t *testing.T) {
	f := newHandlerFixture()
	f.store.Put(10, livetrack.State{Status: livetrack.Active, Round: 4})

	rec := httptest.NewRecorder()
	f.handler.GetLiveSessions(rec, httptest.NewRequest(http.MethodGet, "/api/v1/live-sessions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["count"])
}

func TestPostCommand(t *testing.T) {
	f := newHandlerFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chats/10/command", strings.NewReader(`{"command":"/start"}`))
	req = mux.SetURLVars(req, map[string]string{"chatID": "10"})
	rec := httptest.NewRecorder()

	f.handler.PostCommand(rec, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, f.msgr.sent, "command produced a chat message")
}

func TestPostCommand_BadChatID(t *testing.T) {
	f := newHandlerFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chats/abc/command", strings.NewReader(`{"command":"/start"}`))
	req = mux.SetURLVars(req, map[string]string{"chatID": "abc"})
	rec := httptest.NewRecorder()

	f.handler.PostCommand(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostCommand_EmptyPayload(t *testing.T) {
	f := newHandlerFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chats/10/command", strings.NewReader(`{}`))
	req = mux.SetURLVars(req, map[string]string{"chatID": "10"})
	rec := httptest.NewRecorder()

	f.handler.PostCommand(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostCallback(t *testing.T) {
	f := newHandlerFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chats/10/callback", strings.NewReader(`{"message_id":1,"data":"menu_main"}`))
	req = mux.SetURLVars(req, map[string]string{"chatID": "10"})
	rec := httptest.NewRecorder()

	f.handler.PostCallback(rec, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

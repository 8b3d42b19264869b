// Package bot is the chat-facing layer: it routes commands and callback
// actions to the query pipelines and converts every failure into a short
// user-visible message. No raised error ever reaches the chat as a trace.
package bot

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vbertoni/torcida/internal/chat"
	"github.com/vbertoni/torcida/internal/livetrack"
	"github.com/vbertoni/torcida/internal/pandascore"
	"github.com/vbertoni/torcida/internal/scrape/bo3"
	"github.com/vbertoni/torcida/internal/scrape/draft5"
	"github.com/vbertoni/torcida/internal/scrape/liquipedia"
)

// defaultRoster backs the cheer poll when the roster page yields nothing.
var defaultRoster = []string{"yuurih", "KSCERATO", "FalleN", "molodoy", "YEKINDAR"}

// ResultSource reads the wiki: latest match and roster.
type ResultSource interface {
	LatestMatch(ctx context.Context, team string) (*liquipedia.MatchRecord, error)
	Roster(ctx context.Context, team string) ([]string, error)
	Headers(team string) map[string]string
}

// MatchPageSource resolves and scrapes match pages.
type MatchPageSource interface {
	Resolve(ctx context.Context, rec *liquipedia.MatchRecord, team string, headers map[string]string) (*bo3.ResolvedURL, error)
	Scoreboard(ctx context.Context, url string, maxPlayers int, headers map[string]string) (bo3.Scoreboard, error)
}

// ScheduleSource reads the JS-rendered upcoming-matches page.
type ScheduleSource interface {
	UpcomingMatches(ctx context.Context, teamSlug string) ([]draft5.Match, error)
}

// LiveAPI is the esports API behind the next-match query.
type LiveAPI interface {
	NextMatch(ctx context.Context) (*pandascore.UpcomingMatch, error)
}

// Config identifies the tracked team on each external source.
type Config struct {
	TeamSlug       string
	FemaleTeamSlug string
	Draft5Slug     string
	Draft5FemSlug  string
	MaxPlayers     int
}

// Bot wires the query pipelines to the chat platform.
type Bot struct {
	cfg      Config
	msgr     chat.Messenger
	tracker  *livetrack.Tracker
	results  ResultSource
	pages    MatchPageSource
	schedule ScheduleSource
	api      LiveAPI
	log      zerolog.Logger

	// Per-chat lineup preference: true = female roster.
	prefMu sync.Mutex
	female map[int64]bool
}

// New creates the bot.
func New(cfg Config, msgr chat.Messenger, tracker *livetrack.Tracker, results ResultSource, pages MatchPageSource, schedule ScheduleSource, api LiveAPI, log zerolog.Logger) *Bot {
	return &Bot{
		cfg:      cfg,
		msgr:     msgr,
		tracker:  tracker,
		results:  results,
		pages:    pages,
		schedule: schedule,
		api:      api,
		log:      log.With().Str("component", "bot").Logger(),
		female:   make(map[int64]bool),
	}
}

func (b *Bot) femalePref(chatID int64) bool {
	b.prefMu.Lock()
	defer b.prefMu.Unlock()
	return b.female[chatID]
}

func (b *Bot) toggleFemale(chatID int64) bool {
	b.prefMu.Lock()
	defer b.prefMu.Unlock()
	b.female[chatID] = !b.female[chatID]
	return b.female[chatID]
}

// team returns the wiki identifier for the chat's selected lineup.
func (b *Bot) team(female bool) string {
	if female {
		return b.cfg.FemaleTeamSlug
	}
	return b.cfg.TeamSlug
}

// draftSlug returns the schedule-site slug for the chat's selected lineup.
func (b *Bot) draftSlug(female bool) string {
	if female {
		return b.cfg.Draft5FemSlug
	}
	return b.cfg.Draft5Slug
}

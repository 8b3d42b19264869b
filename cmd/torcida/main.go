package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vbertoni/torcida/internal/api/rest"
	"github.com/vbertoni/torcida/internal/api/websocket"
	"github.com/vbertoni/torcida/internal/bot"
	"github.com/vbertoni/torcida/internal/cache"
	"github.com/vbertoni/torcida/internal/chat"
	"github.com/vbertoni/torcida/internal/config"
	"github.com/vbertoni/torcida/internal/fetch"
	"github.com/vbertoni/torcida/internal/livetrack"
	"github.com/vbertoni/torcida/internal/logger"
	"github.com/vbertoni/torcida/internal/pandascore"
	"github.com/vbertoni/torcida/internal/scrape/bo3"
	"github.com/vbertoni/torcida/internal/scrape/draft5"
	"github.com/vbertoni/torcida/internal/scrape/liquipedia"
)

const (
	serviceName    = "torcida"
	serviceVersion = "1.0.0"

	pageCacheTTL = 5 * time.Minute
)

func main() {
	cfg := config.Load(logger.New("info"))
	log := logger.New(cfg.LogLevel)

	log.Info().Str("service", serviceName).Str("version", serviceVersion).Msg("starting fan bot")

	// Page cache is optional. Without Redis every query hits the source sites.
	var pageCache *cache.PageCache
	if cfg.RedisURL != "" {
		var err error
		pageCache, err = cache.New(cfg.RedisURL, pageCacheTTL)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, running without page cache")
			pageCache = nil
		} else {
			defer pageCache.Close()
			log.Info().Msg("connected to Redis")
		}
	}

	fetcher := fetch.New()

	wiki := liquipedia.NewClient(fetcher, pageCache, cfg.LiquipediaBase, log)
	matches := bo3.NewClient(fetcher, cfg.Bo3Base, log)
	schedule := draft5.NewClient(cfg.Draft5Base, log)
	defer schedule.Close()
	live := pandascore.NewClient(fetcher, cfg.PandaScoreBase, cfg.PandaScoreToken, cfg.TeamSlug, log)

	messenger := chat.NewWebhookMessenger(fetcher, cfg.ChatRelayURL, cfg.ChatRelayToken, log)

	wsServer := websocket.NewServer(log)

	store := livetrack.NewStore()
	sched := livetrack.NewTimerScheduler()
	defer sched.Close()

	tracker := livetrack.NewTracker(store, sched, live, messenger, wsServer, cfg.LiveInterval, log)

	botCfg := bot.Config{
		TeamSlug:       cfg.TeamSlug,
		FemaleTeamSlug: cfg.FemaleTeamSlug,
		Draft5Slug:     cfg.Draft5Slug,
		Draft5FemSlug:  cfg.Draft5FemSlug,
		MaxPlayers:     cfg.MaxPlayers,
	}
	b := bot.New(botCfg, messenger, tracker, wiki, matches, schedule, live, log)

	handler := rest.NewHandler(botCfg, b, wiki, matches, schedule, live, store, pageCache, log)
	restServer := rest.NewServer(cfg.RESTPort, handler, log)

	go func() {
		if err := restServer.Start(); err != nil {
			log.Error().Err(err).Msg("REST server error")
		}
	}()
	log.Info().Str("port", cfg.RESTPort).Msg("REST API server started")

	go func() {
		if err := wsServer.Start(cfg.WSPort); err != nil {
			log.Error().Err(err).Msg("WebSocket server error")
		}
	}()
	log.Info().Str("port", cfg.WSPort).Msg("WebSocket server started")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("REST server shutdown error")
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("WebSocket server shutdown error")
	}

	log.Info().Msg("stopped")
}

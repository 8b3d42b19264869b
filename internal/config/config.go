package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds all runtime settings. Everything comes from the environment
// with sane defaults; the PandaScore token is deliberately allowed to be
// empty here and is checked at the call site that needs it.
type Config struct {
	// Team identity
	TeamSlug       string // Liquipedia page name, e.g. "FURIA"
	FemaleTeamSlug string // female roster page name
	Draft5Slug     string // schedule-site team slug, e.g. "330-FURIA"
	Draft5FemSlug  string

	// External endpoints (overridable for tests)
	LiquipediaBase string
	Bo3Base        string
	Draft5Base     string
	PandaScoreBase string

	// Secrets
	PandaScoreToken string
	ChatRelayURL    string
	ChatRelayToken  string

	// Infra
	RedisURL     string
	RESTPort     string
	WSPort       string
	LogLevel     string
	LiveInterval time.Duration
	MaxPlayers   int
}

// Load reads .env (when present) and the process environment.
func Load(log zerolog.Logger) *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		TeamSlug:       getEnv("TEAM_SLUG", "FURIA"),
		FemaleTeamSlug: getEnv("FEMALE_TEAM_SLUG", "FURIA_Female"),
		Draft5Slug:     getEnv("DRAFT5_SLUG", "330-FURIA"),
		Draft5FemSlug:  getEnv("DRAFT5_FEM_SLUG", "1200-FURIA-fem"),

		LiquipediaBase: getEnv("LIQUIPEDIA_BASE", "https://liquipedia.net/counterstrike"),
		Bo3Base:        getEnv("BO3_BASE", "https://bo3.gg"),
		Draft5Base:     getEnv("DRAFT5_BASE", "https://draft5.gg"),
		PandaScoreBase: getEnv("PANDASCORE_BASE", "https://api.pandascore.co"),

		PandaScoreToken: getEnv("PANDASCORE_TOKEN", ""),
		ChatRelayURL:    getEnv("CHAT_RELAY_URL", ""),
		ChatRelayToken:  getEnv("BOT_TOKEN", ""),

		RedisURL:     getEnv("REDIS_URL", ""),
		RESTPort:     getEnv("REST_PORT", "8080"),
		WSPort:       getEnv("WS_PORT", "8081"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LiveInterval: getDuration("LIVE_INTERVAL", 45*time.Second),
		MaxPlayers:   getInt("MAX_PLAYERS", 5),
	}

	log.Info().
		Str("team", cfg.TeamSlug).
		Str("rest_port", cfg.RESTPort).
		Str("ws_port", cfg.WSPort).
		Dur("live_interval", cfg.LiveInterval).
		Msg("configuration loaded")

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/vbertoni/torcida/internal/bot"
	"github.com/vbertoni/torcida/internal/cache"
	"github.com/vbertoni/torcida/internal/livetrack"
	"github.com/vbertoni/torcida/internal/scrape/bo3"
)

// Handler contains dependencies for HTTP handlers. It reads through the same
// sources as the chat layer.
type Handler struct {
	cfg      bot.Config
	bot      *bot.Bot
	results  bot.ResultSource
	pages    bot.MatchPageSource
	schedule bot.ScheduleSource
	live     bot.LiveAPI
	sessions *livetrack.Store
	cache    *cache.PageCache
	log      zerolog.Logger
}

// NewHandler creates a new handler. cache may be nil.
func NewHandler(cfg bot.Config, b *bot.Bot, results bot.ResultSource, pages bot.MatchPageSource, schedule bot.ScheduleSource, live bot.LiveAPI, sessions *livetrack.Store, pageCache *cache.PageCache, log zerolog.Logger) *Handler {
	return &Handler{
		cfg:      cfg,
		bot:      b,
		results:  results,
		pages:    pages,
		schedule: schedule,
		live:     live,
		sessions: sessions,
		cache:    pageCache,
		log:      log.With().Str("component", "rest").Logger(),
	}
}

// team maps the ?line= query parameter to a wiki team identifier.
func (h *Handler) team(r *http.Request) string {
	if r.URL.Query().Get("line") == "female" {
		return h.cfg.FemaleTeamSlug
	}
	return h.cfg.TeamSlug
}

func (h *Handler) draftSlug(r *http.Request) string {
	if r.URL.Query().Get("line") == "female" {
		return h.cfg.Draft5FemSlug
	}
	return h.cfg.Draft5Slug
}

// HealthCheck handles health check requests.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if err := h.cache.HealthCheck(r.Context()); err != nil {
		status = "degraded"
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"service": "torcida",
	})
}

// GetLastResult returns the team's latest finished match.
func (h *Handler) GetLastResult(w http.ResponseWriter, r *http.Request) {
	rec, err := h.results.LatestMatch(r.Context(), h.team(r))
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to fetch match history", err)
		return
	}
	if rec == nil {
		respondError(w, http.StatusNotFound, "No match found", nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"date":     rec.Date,
		"event":    rec.Event,
		"opponent": rec.Opponent,
		"score":    rec.Score,
		"result":   rec.Result.String(),
	})
}

// GetNextMatches returns the team's scheduled matches.
func (h *Handler) GetNextMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.schedule.UpcomingMatches(r.Context(), h.draftSlug(r))
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to fetch upcoming matches", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"matches": matches,
		"count":   len(matches),
	})
}

// GetNextMatch returns the next scheduled match reported by the esports API.
func (h *Handler) GetNextMatch(w http.ResponseWriter, r *http.Request) {
	match, err := h.live.NextMatch(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to fetch next match", err)
		return
	}
	if match == nil {
		respondError(w, http.StatusNotFound, "No upcoming match found", nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"opponent": match.Opponent,
		"date":     match.DateText,
		"league":   match.League,
	})
}

// GetScoreboard resolves the latest match page and returns its player table.
func (h *Handler) GetScoreboard(w http.ResponseWriter, r *http.Request) {
	team := h.team(r)
	headers := h.results.Headers(team)

	rec, err := h.results.LatestMatch(r.Context(), team)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to fetch match history", err)
		return
	}

	resolved, err := h.pages.Resolve(r.Context(), rec, team, headers)
	if err != nil {
		var dfe *bo3.DateFormatError
		if errors.As(err, &dfe) {
			respondError(w, http.StatusUnprocessableEntity, "Could not build match URL", err)
			return
		}
		respondError(w, http.StatusBadGateway, "Failed to resolve match URL", err)
		return
	}
	if resolved == nil {
		respondError(w, http.StatusNotFound, "No match found", nil)
		return
	}

	board, err := h.pages.Scoreboard(r.Context(), resolved.URL, h.cfg.MaxPlayers, headers)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to fetch scoreboard", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"url":     resolved.URL,
		"players": board,
		"count":   len(board),
	})
}

// GetLiveSessions lists active live-tracker sessions.
func (h *Handler) GetLiveSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.sessions.Sessions()
	respondJSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

type commandRequest struct {
	Command string `json:"command"`
}

type callbackRequest struct {
	MessageID int    `json:"message_id"`
	Data      string `json:"data"`
}

// PostCommand is the relay ingress for slash commands.
func (h *Handler) PostCommand(w http.ResponseWriter, r *http.Request) {
	chatID, ok := parseChatID(w, r)
	if !ok {
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Command == "" {
		respondError(w, http.StatusBadRequest, "Invalid command payload", err)
		return
	}

	h.bot.HandleCommand(r.Context(), chatID, req.Command)
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "handled"})
}

// PostCallback is the relay ingress for inline-button actions.
func (h *Handler) PostCallback(w http.ResponseWriter, r *http.Request) {
	chatID, ok := parseChatID(w, r)
	if !ok {
		return
	}

	var req callbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Data == "" {
		respondError(w, http.StatusBadRequest, "Invalid callback payload", err)
		return
	}

	h.bot.HandleCallback(r.Context(), chatID, req.MessageID, req.Data)
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "handled"})
}

func parseChatID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	chatID, err := strconv.ParseInt(mux.Vars(r)["chatID"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid chat ID", err)
		return 0, false
	}
	return chatID, true
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response.
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}

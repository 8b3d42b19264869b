package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vbertoni/torcida/internal/chat"
	"github.com/vbertoni/torcida/internal/fetch"
	"github.com/vbertoni/torcida/internal/livetrack"
	"github.com/vbertoni/torcida/internal/scrape/bo3"
	"github.com/vbertoni/torcida/internal/scrape/draft5"
	"github.com/vbertoni/torcida/internal/scrape/liquipedia"
)

const (
	welcomeText = "🔥 Bem-vindo fã da FURIA! 💥 Escolha uma opção:"
	apologyText = "😿 Algo deu errado. Tente novamente em instantes."
	helpText    = "/start - Acessar menu principal\n" +
		"/live - Status de partidas ao vivo\n" +
		"/stoplive - Parar atualizações ao vivo\n"
)

// HandleCommand processes one slash command for a chat.
func (b *Bot) HandleCommand(ctx context.Context, chatID int64, command string) {
	defer b.recoverToApology(ctx, chatID)

	switch strings.TrimPrefix(command, "/") {
	case "start":
		b.send(ctx, chatID, welcomeText, MainMenu(b.femalePref(chatID)))

	case "help":
		b.send(ctx, chatID, helpText, nil)

	case "live":
		switch err := b.tracker.Start(ctx, chatID); {
		case errors.Is(err, livetrack.ErrAlreadyActive):
			b.send(ctx, chatID, "🔴 Live status já ativo.", nil)
		case err != nil:
			b.log.Error().Err(err).Int64("chat_id", chatID).Msg("live start failed")
			b.send(ctx, chatID, apologyText, nil)
		default:
			b.send(ctx, chatID, fmt.Sprintf("✅ Live status iniciado! Atualizações a cada %.0fs.", b.tracker.Interval().Seconds()), nil)
		}

	case "stoplive":
		if err := b.tracker.Stop(chatID); errors.Is(err, livetrack.ErrNotActive) {
			b.send(ctx, chatID, "❌ Nenhum live ativo.", nil)
		} else {
			b.send(ctx, chatID, "🛑 Live status desativado.", nil)
		}

	default:
		b.send(ctx, chatID, "❓ Comando desconhecido. Use /help.", nil)
	}
}

// HandleCallback processes one inline-button action. This is the outermost
// error boundary: any error or panic below becomes a short apology, never a
// trace.
func (b *Bot) HandleCallback(ctx context.Context, chatID int64, messageID int, data string) {
	defer b.recoverToApology(ctx, chatID)

	_ = b.msgr.SendTyping(ctx, chatID)

	if err := b.dispatchCallback(ctx, chatID, messageID, data); err != nil {
		b.log.Error().Err(err).Str("action", data).Int64("chat_id", chatID).Msg("callback failed")
		_ = b.edit(ctx, chatID, messageID, apologyText, MainMenu(b.femalePref(chatID)))
	}
}

func (b *Bot) dispatchCallback(ctx context.Context, chatID int64, messageID int, data string) error {
	female := b.femalePref(chatID)

	switch data {
	case cbMenuMain:
		return b.edit(ctx, chatID, messageID, welcomeText, MainMenu(female))

	case cbMenuSocials:
		return b.edit(ctx, chatID, messageID, "Escolha uma rede social:", SocialsMenu())

	case cbSocialsFemale:
		return b.edit(ctx, chatID, messageID, "🌟 Redes Sociais da Line Feminina:", SocialsFemaleMenu())

	case cbSocialsMale:
		return b.edit(ctx, chatID, messageID, "🔥 Redes Sociais da Line Masculina:", SocialsMaleMenu())

	case cbToggleLine:
		female = b.toggleFemale(chatID)
		label := "masculina"
		if female {
			label = "feminina"
		}
		return b.edit(ctx, chatID, messageID, fmt.Sprintf("✅ Agora usando a line %s!", label), MainMenu(female))

	case cbNextMatch:
		return b.handleNextMatch(ctx, chatID, messageID, female)

	case cbLastResult:
		return b.handleLastResult(ctx, chatID, messageID, female)

	case cbMenuStats:
		return b.edit(ctx, chatID, messageID, "📊 Estatísticas – escolha:", StatsMenu())

	case cbStatsTop:
		return b.handleTopFragger(ctx, chatID, messageID, female)

	case cbCheerPoll:
		return b.handleCheerPoll(ctx, chatID, female)

	case livetrack.CallbackPrevRound:
		return b.tracker.Navigate(ctx, chatID, -1)

	case livetrack.CallbackNextRound:
		return b.tracker.Navigate(ctx, chatID, +1)

	default:
		return b.edit(ctx, chatID, messageID, "❓ Opção inválida.", MainMenu(female))
	}
}

func (b *Bot) handleNextMatch(ctx context.Context, chatID int64, messageID int, female bool) error {
	slug := b.draftSlug(female)

	// The schedule page is JS-rendered and slow to settle; retry once on
	// timeout before giving up.
	var matches []draft5.Match
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		matches, err = b.schedule.UpcomingMatches(ctx, slug)
		if err == nil || !errors.Is(err, fetch.ErrTimeout) {
			break
		}
	}
	if err != nil && !errors.Is(err, fetch.ErrTimeout) {
		return b.edit(ctx, chatID, messageID, "❌ Erro ao buscar próximas partidas.", MainMenu(female))
	}

	if len(matches) == 0 {
		return b.edit(ctx, chatID, messageID, "ℹ️ Ainda não há próximas partidas agendadas para essa line.", MainMenu(female))
	}

	line := "MASCULINA"
	if female {
		line = "FEMININA"
	}
	blocks := []string{fmt.Sprintf("🔥 Próximas partidas - %s", line)}

	// Best effort: the API carries begin times the schedule page lacks.
	// An error here (missing token included) must not eat the schedule.
	if next, apiErr := b.api.NextMatch(ctx); apiErr == nil && next != nil {
		blocks = append(blocks, fmt.Sprintf("🎯 Próximo jogo: vs %s, %s (%s)", next.Opponent, next.DateText, next.League))
	} else if apiErr != nil {
		b.log.Debug().Err(apiErr).Int64("chat_id", chatID).Msg("api next-match unavailable")
	}

	for i, m := range matches {
		if i == 5 {
			break
		}
		opponent := m.Team1
		if m.Team1 == slug {
			opponent = m.Team2
		}
		blocks = append(blocks, fmt.Sprintf("📅 %s às %s — %s vs %s (%s)\n🏆 %s",
			m.Date, m.Time, slug, opponent, m.BestOf, m.Tournament))
	}
	blocks = append(blocks, fmt.Sprintf("🔗 Onde ver:\n https://draft5.gg/equipe/%s/proximas-partidas", slug))

	keyboard := chat.Markup{
		{{Text: "🔄 Atualizar", CallbackData: cbNextMatch}},
		{{Text: "🔙 Voltar", CallbackData: cbMenuMain}},
	}
	return b.edit(ctx, chatID, messageID, strings.Join(blocks, "\n\n"), keyboard)
}

func (b *Bot) handleLastResult(ctx context.Context, chatID int64, messageID int, female bool) error {
	rec, err := b.results.LatestMatch(ctx, b.team(female))
	if err != nil {
		return err
	}
	if rec == nil {
		return b.edit(ctx, chatID, messageID, "❌ Nenhuma informação encontrada.", MainMenu(female))
	}

	text := fmt.Sprintf("🏆 Último Resultado 🏆\n"+
		"• Data: %s\n"+
		"• Evento: %s\n"+
		"• Adversário: %s\n"+
		"• Placar: %s\n"+
		"• Resultado: %s",
		rec.Date, rec.Event, rec.Opponent, rec.Score, resultText(rec.Result))
	return b.edit(ctx, chatID, messageID, text, MainMenu(female))
}

func (b *Bot) handleTopFragger(ctx context.Context, chatID int64, messageID int, female bool) error {
	team := b.team(female)
	headers := b.results.Headers(team)

	rec, err := b.results.LatestMatch(ctx, team)
	if err != nil {
		return err
	}

	resolved, err := b.pages.Resolve(ctx, rec, team, headers)
	if err != nil {
		var dfe *bo3.DateFormatError
		if errors.As(err, &dfe) {
			return b.edit(ctx, chatID, messageID, "❌ Não foi possível gerar a URL do jogo.", MainMenu(female))
		}
		return err
	}
	if resolved == nil {
		return b.edit(ctx, chatID, messageID, "❌ Não foi possível gerar a URL do jogo.", MainMenu(female))
	}

	board, err := b.pages.Scoreboard(ctx, resolved.URL, b.cfg.MaxPlayers, headers)
	if err != nil {
		return err
	}
	if len(board) == 0 {
		return b.edit(ctx, chatID, messageID, "❌ Não encontrei o placar dos jogadores.", MainMenu(female))
	}

	lines := []string{"🥇 Estatísticas da última partida: 🥇", ""}
	lines = append(lines, fmt.Sprintf("🏆 MVP – %s 🏆", board[0].Nickname), "", "📋 Scoreboard completo:")
	for _, e := range board {
		lines = append(lines, fmt.Sprintf("• %s: %s/%s/%s SCORE: %s", e.Nickname, e.Kills, e.Deaths, e.Assists, e.Score))
	}
	return b.edit(ctx, chatID, messageID, strings.Join(lines, "\n"), MainMenu(female))
}

func (b *Bot) handleCheerPoll(ctx context.Context, chatID int64, female bool) error {
	options, err := b.results.Roster(ctx, b.team(female))
	if err != nil {
		b.log.Warn().Err(err).Int64("chat_id", chatID).Msg("roster fetch failed, using default list")
		b.send(ctx, chatID, "❌ Ocorreu um erro ao buscar o elenco. Usando lista padrão de jogadores.", nil)
		options = nil
	}
	if len(options) == 0 {
		options = defaultRoster
	}

	if err := b.msgr.SendPoll(ctx, chatID, "Quem vai brilhar hoje? 🌟", options); err != nil {
		return err
	}
	b.send(ctx, chatID, "🎮 Enquete enviada!", MainMenu(female))
	return nil
}

func resultText(r liquipedia.Result) string {
	if r == liquipedia.Win {
		return "Vitória!🎉"
	}
	return "Derrota...😿"
}

func (b *Bot) send(ctx context.Context, chatID int64, text string, markup chat.Markup) {
	if _, err := b.msgr.SendMessage(ctx, chatID, text, markup); err != nil {
		b.log.Warn().Err(err).Int64("chat_id", chatID).Msg("send failed")
	}
}

func (b *Bot) edit(ctx context.Context, chatID int64, messageID int, text string, markup chat.Markup) error {
	return b.msgr.EditMessage(ctx, chatID, messageID, text, markup)
}

func (b *Bot) recoverToApology(ctx context.Context, chatID int64) {
	if r := recover(); r != nil {
		b.log.Error().Interface("panic", r).Int64("chat_id", chatID).Msg("handler panicked")
		b.send(ctx, chatID, apologyText, nil)
	}
}

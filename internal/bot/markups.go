package bot

import "github.com/vbertoni/torcida/internal/chat"

// Callback data understood by the dispatcher. Round navigation callbacks are
// owned by livetrack.
const (
	cbMenuMain      = "menu_main"
	cbMenuSocials   = "menu_socials"
	cbSocialsFemale = "socials_female"
	cbSocialsMale   = "socials_male"
	cbToggleLine    = "toggle_line"
	cbNextMatch     = "next_match"
	cbLastResult    = "last_result"
	cbMenuStats     = "menu_stats"
	cbStatsTop      = "stats_top"
	cbStatsWinRate  = "stats_wr"
	cbCheerPoll     = "cheer_poll"
)

// MainMenu is the bot's landing keyboard.
func MainMenu(female bool) chat.Markup {
	toggleLabel := "🔄 Ir para Line Feminina ♀️🏳️‍🌈"
	if female {
		toggleLabel = "🔄 Ir para Line Masculina ♂️"
	}

	return chat.Markup{
		{{Text: "🗓 Próxima Partida", CallbackData: cbNextMatch}},
		{{Text: "🎉 Enquete de Torcida", CallbackData: cbCheerPoll}},
		{{Text: "🏆 Último Resultado", CallbackData: cbLastResult}},
		{{Text: "📊 Estatísticas", CallbackData: cbMenuStats}},
		{{Text: toggleLabel, CallbackData: cbToggleLine}},
		{{Text: "💬 Fale no WhatsApp (beta)", URL: "https://wa.me/5511993404466"}},
		{{Text: "🌐 Redes Sociais", CallbackData: cbMenuSocials}},
	}
}

// StatsMenu lists the statistics queries.
func StatsMenu() chat.Markup {
	return chat.Markup{
		{{Text: "🥇 Top Fragger", CallbackData: cbStatsTop}},
		{{Text: "📈 Win Rate", CallbackData: cbStatsWinRate}},
		{{Text: "🔙 Voltar", CallbackData: cbMenuMain}},
	}
}

// SocialsMenu is the general social-media keyboard.
func SocialsMenu() chat.Markup {
	return chat.Markup{
		{
			{Text: "📸 Instagram", URL: "https://www.instagram.com/furiagg"},
			{Text: "🐦 Twitter", URL: "https://twitter.com/FURIA"},
		},
		{
			{Text: "🎵 TikTok", URL: "https://www.tiktok.com/@furiagg"},
			{Text: "▶️ YouTube", URL: "https://www.youtube.com/@FURIA"},
		},
		{{Text: "🔙 Voltar", CallbackData: cbMenuMain}},
	}
}

// SocialsFemaleMenu is the female-line social-media keyboard.
func SocialsFemaleMenu() chat.Markup {
	return chat.Markup{
		{
			{Text: "📸 Instagram (Feminina)", URL: "https://www.instagram.com/furiagg"},
			{Text: "🐦 Twitter (Feminina)", URL: "https://twitter.com/FURIA"},
		},
		{
			{Text: "🎵 TikTok (Feminina)", URL: "https://www.tiktok.com/@furiagg"},
			{Text: "▶️ YouTube (Feminina)", URL: "https://www.youtube.com/@FURIA"},
		},
		{{Text: "🔙 Voltar", CallbackData: cbMenuMain}},
	}
}

// SocialsMaleMenu is the male-line social-media keyboard.
func SocialsMaleMenu() chat.Markup {
	return chat.Markup{
		{
			{Text: "📸 Instagram (Masculina)", URL: "https://www.instagram.com/furiagg"},
			{Text: "🐦 Twitter (Masculina)", URL: "https://twitter.com/FURIA"},
		},
		{
			{Text: "🎵 TikTok (Masculina)", URL: "https://www.tiktok.com/@furiagg"},
			{Text: "▶️ YouTube (Masculina)", URL: "https://www.youtube.com/@FURIA"},
		},
		{{Text: "🔙 Voltar", CallbackData: cbMenuMain}},
	}
}

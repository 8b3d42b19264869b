package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vbertoni/torcida/internal/fetch"
)

const relayTimeout = 10 * time.Second

// WebhookMessenger delivers chat operations to a relay service that owns the
// actual platform connection. Each operation is one JSON POST; the relay
// answers sends with the created message id.
type WebhookMessenger struct {
	fetcher  *fetch.Fetcher
	endpoint string
	token    string
	log      zerolog.Logger
}

// NewWebhookMessenger creates a relay-backed messenger.
func NewWebhookMessenger(fetcher *fetch.Fetcher, endpoint, token string, log zerolog.Logger) *WebhookMessenger {
	return &WebhookMessenger{
		fetcher:  fetcher,
		endpoint: endpoint,
		token:    token,
		log:      log.With().Str("component", "chat-relay").Logger(),
	}
}

type relayRequest struct {
	Op        string   `json:"op"`
	ChatID    int64    `json:"chat_id"`
	MessageID int      `json:"message_id,omitempty"`
	Text      string   `json:"text,omitempty"`
	Markup    Markup   `json:"markup,omitempty"`
	Question  string   `json:"question,omitempty"`
	Options   []string `json:"options,omitempty"`
}

type relayResponse struct {
	MessageID int `json:"message_id"`
}

func (m *WebhookMessenger) SendMessage(ctx context.Context, chatID int64, text string, markup Markup) (int, error) {
	resp, err := m.post(ctx, relayRequest{Op: "send", ChatID: chatID, Text: text, Markup: markup})
	if err != nil {
		return 0, err
	}
	return resp.MessageID, nil
}

func (m *WebhookMessenger) EditMessage(ctx context.Context, chatID int64, messageID int, text string, markup Markup) error {
	_, err := m.post(ctx, relayRequest{Op: "edit", ChatID: chatID, MessageID: messageID, Text: text, Markup: markup})
	return err
}

func (m *WebhookMessenger) SendPoll(ctx context.Context, chatID int64, question string, options []string) error {
	_, err := m.post(ctx, relayRequest{Op: "poll", ChatID: chatID, Question: question, Options: options})
	return err
}

func (m *WebhookMessenger) SendTyping(ctx context.Context, chatID int64) error {
	_, err := m.post(ctx, relayRequest{Op: "typing", ChatID: chatID})
	if err != nil {
		m.log.Debug().Err(err).Int64("chat_id", chatID).Msg("typing indicator failed")
	}
	return nil
}

func (m *WebhookMessenger) post(ctx context.Context, req relayRequest) (*relayResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("chat: encode relay request: %w", err)
	}

	headers := map[string]string{"Content-Type": "application/json"}
	if m.token != "" {
		headers["Authorization"] = "Bearer " + m.token
	}

	body, err := m.fetcher.Post(ctx, m.endpoint, headers, payload, relayTimeout)
	if err != nil {
		return nil, err
	}

	var resp relayResponse
	if len(body) > 0 {
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("chat: decode relay response: %w", err)
		}
	}
	return &resp, nil
}

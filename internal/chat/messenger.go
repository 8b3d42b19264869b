// Package chat defines the port to the chat platform. The platform SDK is an
// external collaborator; everything in this repo talks to it through these
// minimal types so other layers can be tested with fakes.
package chat

import "context"

// Button is one inline keyboard button. Exactly one of CallbackData or URL
// should be set.
type Button struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

// Markup is an inline keyboard: rows of buttons.
type Markup [][]Button

// Messenger sends and edits chat messages. Implementations map these calls
// onto the actual platform.
type Messenger interface {
	// SendMessage posts a new message and returns its platform handle.
	SendMessage(ctx context.Context, chatID int64, text string, markup Markup) (int, error)

	// EditMessage rewrites an existing message in place.
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, markup Markup) error

	// SendPoll posts a non-anonymous single-answer poll.
	SendPoll(ctx context.Context, chatID int64, question string, options []string) error

	// SendTyping shows a typing indicator. Best effort.
	SendTyping(ctx context.Context, chatID int64) error
}

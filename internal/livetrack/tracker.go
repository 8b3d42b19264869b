package livetrack

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/rs/zerolog"

	"github.com/vbertoni/torcida/internal/chat"
	"github.com/vbertoni/torcida/internal/pandascore"
)

// Callback data for the round-navigation buttons on the live message.
const (
	CallbackPrevRound = "prev_round"
	CallbackNextRound = "next_round"
)

const noLiveDataText = "❌ Falha ao obter dados ao vivo."

var (
	// ErrAlreadyActive is returned by Start when the chat already has a
	// running session.
	ErrAlreadyActive = errors.New("livetrack: session already active")

	// ErrNotActive is returned by Stop when the chat has no running session.
	ErrNotActive = errors.New("livetrack: no active session")
)

// LiveSource fetches the current live-match snapshot.
type LiveSource interface {
	LiveMatch(ctx context.Context) (*pandascore.LiveSnapshot, error)
}

// Broadcaster fans a rendered snapshot out to push subscribers. Optional.
type Broadcaster interface {
	BroadcastLive(chatID int64, snap *pandascore.LiveSnapshot)
}

// Tracker runs one recurring live poll per chat. Fetch failures are reported
// to the chat but never stop the timer; the fixed interval is the only retry
// mechanism.
type Tracker struct {
	store       *Store
	sched       Scheduler
	source      LiveSource
	msgr        chat.Messenger
	broadcaster Broadcaster
	interval    time.Duration
	log         zerolog.Logger
}

// NewTracker wires the tracker. broadcaster may be nil.
func NewTracker(store *Store, sched Scheduler, source LiveSource, msgr chat.Messenger, broadcaster Broadcaster, interval time.Duration, log zerolog.Logger) *Tracker {
	return &Tracker{
		store:       store,
		sched:       sched,
		source:      source,
		msgr:        msgr,
		broadcaster: broadcaster,
		interval:    interval,
		log:         log.With().Str("component", "livetrack").Logger(),
	}
}

// Store exposes the session store for read-only API surfaces.
func (t *Tracker) Store() *Store {
	return t.store
}

// Interval is the polling period.
func (t *Tracker) Interval() time.Duration {
	return t.interval
}

// Start begins live updates for a chat. Idempotent: a second start while
// active returns ErrAlreadyActive and does not create a second timer.
func (t *Tracker) Start(ctx context.Context, chatID int64) error {
	if t.store.Active(chatID) {
		return ErrAlreadyActive
	}

	t.store.Put(chatID, State{Status: Active, Round: 1})

	t.sched.Schedule(chatID, t.interval, func() {
		t.Tick(context.Background(), chatID)
	})

	t.log.Info().Int64("chat_id", chatID).Dur("interval", t.interval).Msg("live session started")
	return nil
}

// Stop cancels every timer tagged with the chat and removes its state.
func (t *Tracker) Stop(chatID int64) error {
	if !t.sched.Cancel(chatID) {
		return ErrNotActive
	}
	t.store.Delete(chatID)
	t.log.Info().Int64("chat_id", chatID).Msg("live session stopped")
	return nil
}

// Tick runs one poll for a chat: fetch the live snapshot, then create,
// update, or skip the chat's live message.
func (t *Tracker) Tick(ctx context.Context, chatID int64) {
	st, ok := t.store.Get(chatID)
	if !ok || st.Status != Active {
		// State was cleared externally; the timer cancels itself.
		t.sched.Cancel(chatID)
		return
	}

	snap, err := t.source.LiveMatch(ctx)
	if err != nil || snap == nil {
		if err != nil {
			t.log.Warn().Err(err).Int64("chat_id", chatID).Msg("live fetch failed")
		}
		// Report and leave state (and any existing message) untouched.
		if _, sendErr := t.msgr.SendMessage(ctx, chatID, noLiveDataText, nil); sendErr != nil {
			t.log.Warn().Err(sendErr).Int64("chat_id", chatID).Msg("failure notice not delivered")
		}
		return
	}

	text := renderLive(snap)
	markup := RoundNavMarkup()

	if st.MessageID == 0 {
		msgID, err := t.msgr.SendMessage(ctx, chatID, text, markup)
		if err != nil {
			t.log.Warn().Err(err).Int64("chat_id", chatID).Msg("live message send failed")
			return
		}
		t.store.Update(chatID, func(s *State) {
			s.MessageID = msgID
			s.Round = snap.Round
			s.LastText = text
			s.LastMarkup = markup
		})
	} else {
		if st.LastText == text && reflect.DeepEqual(st.LastMarkup, markup) {
			return // nothing changed, skip the edit
		}
		if err := t.msgr.EditMessage(ctx, chatID, st.MessageID, text, markup); err != nil {
			t.log.Warn().Err(err).Int64("chat_id", chatID).Msg("live message edit failed")
			return
		}
		t.store.Update(chatID, func(s *State) {
			s.Round = snap.Round
			s.LastText = text
			s.LastMarkup = markup
		})
	}

	if t.broadcaster != nil {
		t.broadcaster.BroadcastLive(chatID, snap)
	}
}

// Navigate applies a manual round step (±1) and immediately rewrites the live
// message. The next automatic tick will overwrite the manual choice on its
// own cadence; that race is accepted behavior.
func (t *Tracker) Navigate(ctx context.Context, chatID int64, delta int) error {
	st, ok := t.store.Get(chatID)
	if !ok {
		return nil
	}

	round := st.Round + delta
	if round < 1 {
		round = 1
	}

	text := fmt.Sprintf("🔄 Rodada manual: %d", round)
	markup := RoundNavMarkup()
	t.store.Update(chatID, func(s *State) {
		s.Round = round
		s.LastText = text
		s.LastMarkup = markup
	})

	if st.MessageID != 0 {
		if err := t.msgr.EditMessage(ctx, chatID, st.MessageID, text, markup); err != nil {
			return err
		}
	}
	return nil
}

func renderLive(snap *pandascore.LiveSnapshot) string {
	return fmt.Sprintf("🔴 Live Round %d\n%s vs %s\nPlacar: %s",
		snap.Round, snap.Team1, snap.Team2, snap.Score)
}

// RoundNavMarkup is the two-button control attached to the live message.
func RoundNavMarkup() chat.Markup {
	return chat.Markup{{
		{Text: "⬅️ Anterior", CallbackData: CallbackPrevRound},
		{Text: "➡️ Próxima", CallbackData: CallbackNextRound},
	}}
}

package livetrack

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbertoni/torcida/internal/chat"
	"github.com/vbertoni/torcida/internal/logger"
	"github.com/vbertoni/torcida/internal/pandascore"
)

// fakeScheduler records schedule/cancel calls without running any timers;
// ticks are driven manually through Tracker.Tick.
type fakeScheduler struct {
	mu        sync.Mutex
	scheduled map[int64]int
	active    map[int64]bool
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{scheduled: make(map[int64]int), active: make(map[int64]bool)}
}

func (s *fakeScheduler) Schedule(chatID int64, interval time.Duration, tick func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled[chatID]++
	s.active[chatID] = true
	return func() {}
}

func (s *fakeScheduler) Cancel(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	existed := s.active[chatID]
	delete(s.active, chatID)
	return existed
}

func (s *fakeScheduler) scheduleCount(chatID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduled[chatID]
}

type sentMessage struct {
	chatID int64
	text   string
}

type fakeMessenger struct {
	mu      sync.Mutex
	nextID  int
	sent    []sentMessage
	edits   []sentMessage
	sendErr error
	editErr error
}

func (m *fakeMessenger) SendMessage(ctx context.Context, chatID int64, text string, markup chat.Markup) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return 0, m.sendErr
	}
	m.nextID++
	m.sent = append(m.sent, sentMessage{chatID, text})
	return m.nextID, nil
}

func (m *fakeMessenger) EditMessage(ctx context.Context, chatID int64, messageID int, text string, markup chat.Markup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.editErr != nil {
		return m.editErr
	}
	m.edits = append(m.edits, sentMessage{chatID, text})
	return nil
}

func (m *fakeMessenger) SendPoll(ctx context.Context, chatID int64, question string, options []string) error {
	return nil
}

func (m *fakeMessenger) SendTyping(ctx context.Context, chatID int64) error {
	return nil
}

func (m *fakeMessenger) lastSent() (sentMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMessage{}, false
	}
	return m.sent[len(m.sent)-1], true
}

type fakeSource struct {
	mu   sync.Mutex
	snap *pandascore.LiveSnapshot
	err  error
}

func (s *fakeSource) LiveMatch(ctx context.Context) (*pandascore.LiveSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap, s.err
}

func (s *fakeSource) set(snap *pandascore.LiveSnapshot, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap, s.err = snap, err
}

func newTestTracker(source *fakeSource) (*Tracker, *fakeScheduler, *fakeMessenger) {
	sched := newFakeScheduler()
	msgr := &fakeMessenger{}
	tracker := NewTracker(NewStore(), sched, source, msgr, nil, 45*time.Second, logger.New("disabled"))
	return tracker, sched, msgr
}

func TestStart_SecondStartIsRejected(t *testing.T) {
	tracker, sched, _ := newTestTracker(&fakeSource{})

	require.NoError(t, tracker.Start(context.Background(), 10))
	assert.ErrorIs(t, tracker.Start(context.Background(), 10), ErrAlreadyActive)
	assert.Equal(t, 1, sched.scheduleCount(10), "no second timer for an active chat")
}

func TestStop_WithoutSession(t *testing.T) {
	tracker, _, _ := newTestTracker(&fakeSource{})
	assert.ErrorIs(t, tracker.Stop(10), ErrNotActive)
}

func TestStop_ClearsState(t *testing.T) {
	tracker, sched, _ := newTestTracker(&fakeSource{})
	require.NoError(t, tracker.Start(context.Background(), 10))

	require.NoError(t, tracker.Stop(10))
	_, ok := tracker.Store().Get(10)
	assert.False(t, ok)
	assert.False(t, sched.active[10], "timer cancelled through the scheduler")
	assert.ErrorIs(t, tracker.Stop(10), ErrNotActive)
}

func TestTick_CreatesThenSkipsThenEdits(t *testing.T) {
	source := &fakeSource{}
	source.set(&pandascore.LiveSnapshot{Round: 3, Score: "2x1", Team1: "FURIA", Team2: "The MongolZ"}, nil)

	tracker, _, msgr := newTestTracker(source)
	require.NoError(t, tracker.Start(context.Background(), 10))

	// First tick sends the live message.
	tracker.Tick(context.Background(), 10)
	last, ok := msgr.lastSent()
	require.True(t, ok)
	assert.Equal(t, "🔴 Live Round 3\nFURIA vs The MongolZ\nPlacar: 2x1", last.text)

	st, _ := tracker.Store().Get(10)
	assert.NotZero(t, st.MessageID)
	assert.Equal(t, 3, st.Round)

	// Identical snapshot: no extra send, no edit.
	tracker.Tick(context.Background(), 10)
	assert.Len(t, msgr.sent, 1)
	assert.Empty(t, msgr.edits)

	// Changed snapshot: the existing message is edited in place.
	source.set(&pandascore.LiveSnapshot{Round: 4, Score: "3x1", Team1: "FURIA", Team2: "The MongolZ"}, nil)
	tracker.Tick(context.Background(), 10)
	require.Len(t, msgr.edits, 1)
	assert.Contains(t, msgr.edits[0].text, "Round 4")

	st, _ = tracker.Store().Get(10)
	assert.Equal(t, 4, st.Round)
	assert.Len(t, msgr.sent, 1, "still only the original message")
}

func TestTick_FetchFailureReportsAndKeepsState(t *testing.T) {
	source := &fakeSource{}
	source.set(&pandascore.LiveSnapshot{Round: 2, Score: "1x0", Team1: "FURIA", Team2: "MIBR"}, nil)

	tracker, _, msgr := newTestTracker(source)
	require.NoError(t, tracker.Start(context.Background(), 10))
	tracker.Tick(context.Background(), 10)
	before, _ := tracker.Store().Get(10)

	source.set(nil, errors.New("api down"))
	tracker.Tick(context.Background(), 10)

	last, _ := msgr.lastSent()
	assert.Equal(t, "❌ Falha ao obter dados ao vivo.", last.text)

	after, _ := tracker.Store().Get(10)
	assert.Equal(t, before.MessageID, after.MessageID, "failure leaves the live message untouched")
	assert.Equal(t, before.LastText, after.LastText)
}

func TestTick_NoLiveMatchReports(t *testing.T) {
	source := &fakeSource{} // nil snapshot, nil error
	tracker, _, msgr := newTestTracker(source)
	require.NoError(t, tracker.Start(context.Background(), 10))

	tracker.Tick(context.Background(), 10)
	last, ok := msgr.lastSent()
	require.True(t, ok)
	assert.Equal(t, "❌ Falha ao obter dados ao vivo.", last.text)
}

func TestTick_MissingStateCancelsTimer(t *testing.T) {
	tracker, sched, msgr := newTestTracker(&fakeSource{})
	require.NoError(t, tracker.Start(context.Background(), 10))

	// State cleared behind the scheduler's back.
	tracker.Store().Delete(10)
	tracker.Tick(context.Background(), 10)

	assert.False(t, sched.active[10], "orphaned timer cancels itself")
	assert.Empty(t, msgr.sent)
}

func TestNavigate_ClampsAtRoundOne(t *testing.T) {
	source := &fakeSource{}
	source.set(&pandascore.LiveSnapshot{Round: 1, Score: "0x0", Team1: "FURIA", Team2: "MIBR"}, nil)

	tracker, _, msgr := newTestTracker(source)
	require.NoError(t, tracker.Start(context.Background(), 10))
	tracker.Tick(context.Background(), 10)

	require.NoError(t, tracker.Navigate(context.Background(), 10, -1))
	st, _ := tracker.Store().Get(10)
	assert.Equal(t, 1, st.Round)

	require.NoError(t, tracker.Navigate(context.Background(), 10, +1))
	st, _ = tracker.Store().Get(10)
	assert.Equal(t, 2, st.Round)

	require.NotEmpty(t, msgr.edits)
	assert.Equal(t, "🔄 Rodada manual: 2", msgr.edits[len(msgr.edits)-1].text)
}

func TestNavigate_NoSessionIsNoop(t *testing.T) {
	tracker, _, msgr := newTestTracker(&fakeSource{})
	require.NoError(t, tracker.Navigate(context.Background(), 99, +1))
	assert.Empty(t, msgr.edits)
	assert.Empty(t, msgr.sent)
}

func TestNavigate_BeforeFirstMessageSkipsEdit(t *testing.T) {
	tracker, _, msgr := newTestTracker(&fakeSource{})
	require.NoError(t, tracker.Start(context.Background(), 10))

	require.NoError(t, tracker.Navigate(context.Background(), 10, +1))
	assert.Empty(t, msgr.edits, "nothing to edit before the first live message")

	st, _ := tracker.Store().Get(10)
	assert.Equal(t, 2, st.Round)
}

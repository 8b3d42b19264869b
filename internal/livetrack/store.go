// Package livetrack implements the per-chat live-match tracker: a polling
// state machine that keeps a single chat message up to date while a match is
// in progress.
package livetrack

import (
	"sync"

	"github.com/vbertoni/torcida/internal/chat"
)

// Status of a chat's live session.
type Status int

const (
	Inactive Status = iota
	Active
)

// State is one chat's live session. A chat has at most one.
type State struct {
	Status    Status
	MessageID int // 0 until the first live message is sent
	Round     int // last displayed round, manual or fetched
	LastText  string
	LastMarkup chat.Markup
}

// SessionInfo is the read-only view of a session exposed over the API.
type SessionInfo struct {
	ChatID int64 `json:"chat_id"`
	Round  int   `json:"round"`
	Active bool  `json:"active"`
}

// Store owns the chat-id-keyed session map. It is the only process-wide
// mutable state; handlers receive it injected and all access goes through
// the mutex since ticks and callbacks run on separate goroutines.
type Store struct {
	mu     sync.Mutex
	states map[int64]*State
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{states: make(map[int64]*State)}
}

// Get returns a copy of the chat's state.
func (s *Store) Get(chatID int64) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[chatID]
	if !ok {
		return State{}, false
	}
	return *st, true
}

// Active reports whether the chat has an active session.
func (s *Store) Active(chatID int64) bool {
	st, ok := s.Get(chatID)
	return ok && st.Status == Active
}

// Put replaces the chat's state.
func (s *Store) Put(chatID int64, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[chatID] = &st
}

// Update mutates the chat's state in place under the lock. Returns false when
// the chat has no state.
func (s *Store) Update(chatID int64, fn func(*State)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[chatID]
	if !ok {
		return false
	}
	fn(st)
	return true
}

// Delete removes the chat's state.
func (s *Store) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, chatID)
}

// Sessions lists all sessions for the read-only API.
func (s *Store) Sessions() []SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SessionInfo, 0, len(s.states))
	for chatID, st := range s.states {
		out = append(out, SessionInfo{
			ChatID: chatID,
			Round:  st.Round,
			Active: st.Status == Active,
		})
	}
	return out
}

package session

import (
	"context"
	"sync"
	"time"
)

// Conversation step names. A user with no stored state is idle.
const (
	StateIdle            = ""
	StateAwaitingPrompt  = "awaiting_prompt"
	StateReviewingPrompt = "reviewing_prompt"
	StateInQuiz          = "in_quiz"
)

// State is one user's position in a multi-message flow, plus whatever
// flow-specific values the handlers stashed along the way.
type State struct {
	Name string            `json:"name"`
	Data map[string]string `json:"data,omitempty"`
}

// Value returns a stashed value, "" when absent.
func (s *State) Value(key string) string {
	if s == nil || s.Data == nil {
		return ""
	}
	return s.Data[key]
}

// With returns a copy of the state with one value added.
func (s State) With(key, value string) State {
	data := make(map[string]string, len(s.Data)+1)
	for k, v := range s.Data {
		data[k] = v
	}
	data[key] = value
	s.Data = data
	return s
}

// Store keeps per-user conversation state between updates.
type Store interface {
	Get(ctx context.Context, telegramID int64) (*State, error)
	Set(ctx context.Context, telegramID int64, state State) error
	Clear(ctx context.Context, telegramID int64) error
}

// MemoryStore holds state in process memory. Good enough for polling
// mode on a single instance; state is lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[int64]State
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[int64]State)}
}

// Get returns the stored state, nil when the user is idle.
func (m *MemoryStore) Get(ctx context.Context, telegramID int64) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.states[telegramID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

// Set stores the state for a user.
func (m *MemoryStore) Set(ctx context.Context, telegramID int64, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.states[telegramID] = state
	return nil
}

// Clear removes any stored state for a user.
func (m *MemoryStore) Clear(ctx context.Context, telegramID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.states, telegramID)
	return nil
}

// DefaultTTL bounds how long an abandoned conversation survives in Redis.
const DefaultTTL = 24 * time.Hour

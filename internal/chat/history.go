package chat

import (
	"sync"

	"github.com/google/uuid"
)

const preambleLen = 2

// Conversation is one session's persisted state: the seeded preamble plus
// trimmed user/model text pairs, and an optional provider override.
type Conversation struct {
	ID       string
	Messages []Message
	Provider string
}

// Store keeps conversations keyed by session id. Access is last-writer-wins;
// the panel is a single-user surface.
type Store struct {
	mu           sync.Mutex
	sessions     map[string]*Conversation
	historyPairs int
}

func NewStore(historyPairs int) *Store {
	if historyPairs <= 0 {
		historyPairs = 10
	}
	return &Store{sessions: map[string]*Conversation{}, historyPairs: historyPairs}
}

func (s *Store) NewSessionID() string {
	return uuid.NewString()
}

// Get returns the session's conversation, creating and seeding it on first
// use.
func (s *Store) Get(id string) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.sessions[id]
	if !ok {
		conv = &Conversation{ID: id, Messages: preamble()}
		s.sessions[id] = conv
	}
	return conv
}

func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// SetProvider records a session-scoped provider override.
func (s *Store) SetProvider(id, provider string) {
	conv := s.Get(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	conv.Provider = provider
}

func (s *Store) ProviderFor(id string) string {
	conv := s.Get(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	return conv.Provider
}

// Append persists one user/model text exchange and trims the history to
// the preamble plus the most recent pairs. Tool-call traffic never lands
// here.
func (s *Store) Append(id, userText, modelText string) {
	conv := s.Get(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	conv.Messages = append(conv.Messages,
		Message{Role: RoleUser, Content: userText},
		Message{Role: RoleModel, Content: modelText},
	)
	limit := s.historyPairs * 2
	if tail := len(conv.Messages) - preambleLen; tail > limit {
		trimmed := make([]Message, 0, preambleLen+limit)
		trimmed = append(trimmed, conv.Messages[:preambleLen]...)
		trimmed = append(trimmed, conv.Messages[len(conv.Messages)-limit:]...)
		conv.Messages = trimmed
	}
}

// Snapshot copies the session's messages for a model request.
func (s *Store) Snapshot(id string) []Message {
	conv := s.Get(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message{}, conv.Messages...)
}

package transcript

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rehearsed/classroom/backend/internal/model/chat"
)

var (
	// ErrSessionNotFound means the session id is unknown or expired with
	// the process.
	ErrSessionNotFound = errors.New("session not found")
)

// Service keeps per-connection classroom transcripts in memory. Only the
// websocket channel uses it; the REST surface round-trips history in the
// request instead. Nothing survives a process restart.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
	messages map[string][]chat.ConversationMessage
}

// NewService bootstraps the in-memory transcript store.
func NewService() *Service {
	return &Service{
		sessions: make(map[string]chat.Session),
		messages: make(map[string][]chat.ConversationMessage),
	}
}

// CreateSession provisions a new classroom session.
func (s *Service) CreateSession(_ context.Context) (chat.Session, error) {
	session := chat.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.messages[session.ID] = make([]chat.ConversationMessage, 0, 16)
	s.mu.Unlock()

	return session, nil
}

// Append adds one message to the session transcript.
func (s *Service) Append(_ context.Context, sessionID string, msg chat.ConversationMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}

	s.messages[sessionID] = append(s.messages[sessionID], msg)
	return nil
}

// Transcript returns a copy of the stored messages for the session.
func (s *Service) Transcript(_ context.Context, sessionID string) ([]chat.ConversationMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.ConversationMessage, len(messages))
	copy(copied, messages)
	return copied, nil
}

// Close drops a session and its transcript.
func (s *Service) Close(_ context.Context, sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	delete(s.messages, sessionID)
	s.mu.Unlock()
}

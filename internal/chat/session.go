// Package chat implements the unified conversational assistant:
// explore mode recommends catalog agents, create mode gathers the
// requirements for a new one.
package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vigneshgurumohan/agents-store/pkg/models"
)

// maxTurns is the per-session memory window: three exchanges, six
// messages. Older exchanges fall off and only survive in the persisted
// chat history.
const maxTurns = 3

// sessionTTL is how long an idle session stays in memory.
const sessionTTL = time.Hour

// Turn is one user/assistant exchange.
type Turn struct {
	User      string
	Assistant string
}

// Session is the in-memory state for one conversation. Fields are
// guarded by mu: Service.Handle holds it for the whole turn, so
// concurrent requests on one session id are serialized.
type Session struct {
	mu         sync.Mutex
	ID         string
	Turns      []Turn
	Gathered   models.GatheredInfo
	Saved      bool // requirement already written for this session
	LastActive time.Time
}

// Remember appends an exchange, dropping the oldest beyond the window.
func (s *Session) Remember(user, assistant string) {
	s.Turns = append(s.Turns, Turn{User: user, Assistant: assistant})
	if len(s.Turns) > maxTurns {
		s.Turns = s.Turns[len(s.Turns)-maxTurns:]
	}
}

// QuestionsAsked reports how many assistant replies remain in the
// window. Create mode derives its question counter from it, so the
// counter is bounded by the memory window rather than session age.
func (s *Session) QuestionsAsked() int { return len(s.Turns) }

// Sessions is a concurrency-safe in-memory session table.
type Sessions struct {
	mu sync.Mutex
	m  map[string]*Session
}

// NewSessions returns an empty session table.
func NewSessions() *Sessions {
	return &Sessions{m: make(map[string]*Session)}
}

// GetOrCreate returns the session for id, creating it (and minting an
// id when empty). Stale sessions are pruned opportunistically.
func (st *Sessions) GetOrCreate(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := time.Now()
	for k, s := range st.m {
		if now.Sub(s.LastActive) > sessionTTL {
			delete(st.m, k)
		}
	}
	if id == "" {
		id = uuid.NewString()
	}
	s, ok := st.m[id]
	if !ok {
		s = &Session{ID: id}
		st.m[id] = s
	}
	s.LastActive = now
	return s
}

// Get returns the session for id, if present.
func (st *Sessions) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.m[id]
	return s, ok
}

// Delete removes the session for id.
func (st *Sessions) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.m, id)
}

// Len reports the number of live sessions.
func (st *Sessions) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.m)
}

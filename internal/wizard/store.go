package wizard

import (
	"sync"
	"time"
)

// Store holds in-progress wizard sessions per user and flow. Sessions are
// transient by contract: they are dropped on successful submission and swept
// after MaxAge of inactivity. State is process-local; a restart loses
// in-flight wizards, which mirrors the original page-held form state.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	flows    map[string]*Flow

	// MaxAge is how long an untouched session survives a Sweep.
	MaxAge time.Duration
}

func NewStore(flows map[string]*Flow) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		flows:    flows,
		MaxAge:   24 * time.Hour,
	}
}

func (st *Store) key(userID, flowName string) string {
	return userID + "|" + flowName
}

// Flow looks up a registered flow definition by name.
func (st *Store) Flow(name string) (*Flow, bool) {
	f, ok := st.flows[name]
	return f, ok
}

// Start creates a fresh session for the user and flow, replacing any
// in-progress one.
func (st *Store) Start(userID, flowName string) (*Session, bool) {
	flow, ok := st.flows[flowName]
	if !ok {
		return nil, false
	}
	s := NewSession(flow)
	st.mu.Lock()
	st.sessions[st.key(userID, flowName)] = s
	st.mu.Unlock()
	return s, true
}

// Get returns the user's in-progress session for a flow, or nil.
func (st *Store) Get(userID, flowName string) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[st.key(userID, flowName)]
}

// Drop discards a session, used after successful submission or explicit
// abandonment.
func (st *Store) Drop(userID, flowName string) {
	st.mu.Lock()
	delete(st.sessions, st.key(userID, flowName))
	st.mu.Unlock()
}

// Sweep removes sessions untouched for longer than MaxAge and reports how
// many were dropped. Driven by the cron scheduler.
func (st *Store) Sweep(now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	dropped := 0
	for k, s := range st.sessions {
		if now.Sub(s.LastUpdated()) > st.MaxAge {
			delete(st.sessions, k)
			dropped++
		}
	}
	return dropped
}

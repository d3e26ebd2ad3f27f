package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry maps session identifiers to live sessions. It is constructed
// once at process start and supports concurrent creation, lookup, and
// deletion; once a session reference has been handed to an orchestrator the
// registry is not consulted for that session's internal state.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	now func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create registers a new session for the given profile and returns it with
// a fresh unique identifier.
func (r *Registry) Create(profile Profile) *Session {
	sess := newSession(uuid.NewString(), profile, r.now().UTC())
	r.mu.Lock()
	r.sessions[sess.ID] = sess
	r.mu.Unlock()
	return sess
}

// Get looks up a session by identifier. An unknown or deleted identifier
// yields ErrNotFound.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	sess, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Delete removes a session. Deleting an unknown identifier is a no-op.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/domain"
)

// SessionRepository is an in-memory port.SessionRepository. It backs
// tests and the STORAGE=memory mode for local development. Sessions are
// cloned through JSON on every read and write so callers never share
// mutable state with the store.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*domain.Session
}

// NewSessionRepository returns an empty repository.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[uuid.UUID]*domain.Session)}
}

func (r *SessionRepository) Create(_ context.Context, s *domain.Session) error {
	clone, err := cloneSession(s)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = clone
	return nil
}

func (r *SessionRepository) Get(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return cloneSession(s)
}

func (r *SessionRepository) Save(_ context.Context, s *domain.Session) error {
	clone, err := cloneSession(s)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID]; !ok {
		return domain.ErrSessionNotFound
	}
	r.sessions[s.ID] = clone
	return nil
}

func (r *SessionRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func cloneSession(s *domain.Session) (*domain.Session, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var clone domain.Session
	if err = json.Unmarshal(raw, &clone); err != nil {
		return nil, err
	}
	return &clone, nil
}

package session

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/member-portal/internal/domain"
)

// Store persists server-side session records.
type Store interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Put(ctx context.Context, sess *domain.Session) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in a mutex-guarded map. Sessions do not
// survive a process restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewMemoryStore builds an in-memory store and starts a janitor that
// evicts expired records.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{sessions: make(map[string]*domain.Session)}
	go s.janitor()
	return s
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok || time.Now().After(sess.ExpiresAt) {
		return nil, domain.ErrSessionNotFound
	}
	copied := *sess
	copied.Flash = append([]string(nil), sess.Flash...)
	return &copied, nil
}

func (s *MemoryStore) Put(_ context.Context, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *sess
	copied.Flash = append([]string(nil), sess.Flash...)
	s.sessions[sess.ID] = &copied
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		s.mu.Lock()
		for id, sess := range s.sessions {
			if now.After(sess.ExpiresAt) {
				delete(s.sessions, id)
			}
		}
		s.mu.Unlock()
	}
}

// Package session implements cookie-backed server-side sessions: the
// browser holds a signed token naming a session id, the record itself
// lives in a Store.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/member-portal/internal/config"
	"github.com/spec-kit/member-portal/internal/domain"
)

// Manager issues, resolves and destroys sessions.
type Manager struct {
	store       Store
	codec       *tokenCodec
	maxLifetime time.Duration
	idleTimeout time.Duration
}

// NewManager builds a session manager from config.
func NewManager(store Store, cfg config.SessionConfig) *Manager {
	return &Manager{
		store:       store,
		codec:       &tokenCodec{secret: []byte(cfg.Secret)},
		maxLifetime: cfg.MaxLifetime(),
		idleTimeout: cfg.IdleTimeout(),
	}
}

// Issue creates a new session record. userID may be empty for an anonymous
// flash-carrier session. Returns the record and the signed cookie token.
func (m *Manager) Issue(ctx context.Context, userID string) (*domain.Session, string, error) {
	now := time.Now()
	sess := &domain.Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(m.maxLifetime),
		LastActive: now,
	}

	if err := m.store.Put(ctx, sess); err != nil {
		return nil, "", err
	}

	token, err := m.codec.Encode(sess.ID, sess.ExpiresAt)
	if err != nil {
		return nil, "", err
	}
	return sess, token, nil
}

// Resolve maps a cookie token to its session record, enforcing max lifetime
// and idle timeout. Any failure reads as "no session": a tampered cookie,
// an unknown id and an expired record all look alike to the caller.
func (m *Manager) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrSessionNotFound
	}

	id, err := m.codec.Decode(token)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}

	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}

	now := time.Now()
	expired := now.Sub(sess.CreatedAt) > m.maxLifetime ||
		(m.idleTimeout > 0 && now.Sub(sess.LastActive) > m.idleTimeout)
	if expired {
		_ = m.store.Delete(ctx, id)
		return nil, domain.ErrSessionNotFound
	}

	sess.LastActive = now
	if err := m.store.Put(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Bind logs a user into a fresh session. The previous session, if any, is
// destroyed and a new id issued so a pre-login cookie can never become an
// authenticated one (session fixation).
func (m *Manager) Bind(ctx context.Context, prev *domain.Session, userID string) (*domain.Session, string, error) {
	if prev != nil {
		_ = m.store.Delete(ctx, prev.ID)
	}
	return m.Issue(ctx, userID)
}

// Destroy removes the session record.
func (m *Manager) Destroy(ctx context.Context, sess *domain.Session) error {
	if sess == nil {
		return nil
	}
	return m.store.Delete(ctx, sess.ID)
}

// Flash queues a one-shot message on the session.
func (m *Manager) Flash(ctx context.Context, sess *domain.Session, msg string) error {
	sess.Flash = append(sess.Flash, msg)
	return m.store.Put(ctx, sess)
}

// PopFlash returns queued messages and clears them, so each message is
// rendered at most once.
func (m *Manager) PopFlash(ctx context.Context, sess *domain.Session) ([]string, error) {
	if sess == nil || len(sess.Flash) == 0 {
		return nil, nil
	}

	msgs := sess.Flash
	sess.Flash = nil
	if err := m.store.Put(ctx, sess); err != nil {
		return nil, err
	}
	return msgs, nil
}

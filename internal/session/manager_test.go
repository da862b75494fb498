package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/member-portal/internal/config"
)

func testConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret:             "test-secret",
		CookieName:         "mp_session",
		MaxLifetimeHours:   1,
		IdleTimeoutMinutes: 30,
	}
}

func TestManager_IssueAndResolve(t *testing.T) {
	t.Parallel()

	m := NewManager(NewMemoryStore(), testConfig())
	ctx := context.Background()

	sess, token, err := m.Issue(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, sess.Authenticated())

	resolved, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	require.Equal(t, sess.ID, resolved.ID)
	require.Equal(t, "user-1", resolved.UserID)
}

func TestManager_AnonymousSession(t *testing.T) {
	t.Parallel()

	m := NewManager(NewMemoryStore(), testConfig())
	ctx := context.Background()

	sess, token, err := m.Issue(ctx, "")
	require.NoError(t, err)
	require.False(t, sess.Authenticated())

	resolved, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	require.False(t, resolved.Authenticated())
}

func TestManager_TamperedTokenReadsAsAnonymous(t *testing.T) {
	t.Parallel()

	m := NewManager(NewMemoryStore(), testConfig())
	ctx := context.Background()

	_, token, err := m.Issue(ctx, "user-1")
	require.NoError(t, err)

	_, err = m.Resolve(ctx, token+"x")
	require.Error(t, err)

	other := NewManager(NewMemoryStore(), config.SessionConfig{
		Secret:           "different-secret",
		MaxLifetimeHours: 1,
	})
	_, otherToken, err := other.Issue(ctx, "user-1")
	require.NoError(t, err)

	// signed with the wrong secret
	_, err = m.Resolve(ctx, otherToken)
	require.Error(t, err)

	_, err = m.Resolve(ctx, "")
	require.Error(t, err)
}

func TestManager_BindRotatesSessionID(t *testing.T) {
	t.Parallel()

	m := NewManager(NewMemoryStore(), testConfig())
	ctx := context.Background()

	anon, anonToken, err := m.Issue(ctx, "")
	require.NoError(t, err)

	bound, boundToken, err := m.Bind(ctx, anon, "user-1")
	require.NoError(t, err)
	require.NotEqual(t, anon.ID, bound.ID)

	// the pre-login cookie is dead after rotation
	_, err = m.Resolve(ctx, anonToken)
	require.Error(t, err)

	resolved, err := m.Resolve(ctx, boundToken)
	require.NoError(t, err)
	require.Equal(t, "user-1", resolved.UserID)
}

func TestManager_DestroyInvalidatesToken(t *testing.T) {
	t.Parallel()

	m := NewManager(NewMemoryStore(), testConfig())
	ctx := context.Background()

	sess, token, err := m.Issue(ctx, "user-1")
	require.NoError(t, err)
	require.NoError(t, m.Destroy(ctx, sess))

	_, err = m.Resolve(ctx, token)
	require.Error(t, err)
}

func TestManager_FlashIsOneShot(t *testing.T) {
	t.Parallel()

	m := NewManager(NewMemoryStore(), testConfig())
	ctx := context.Background()

	sess, token, err := m.Issue(ctx, "")
	require.NoError(t, err)
	require.NoError(t, m.Flash(ctx, sess, "Invalid email or password."))

	resolved, err := m.Resolve(ctx, token)
	require.NoError(t, err)

	msgs, err := m.PopFlash(ctx, resolved)
	require.NoError(t, err)
	require.Equal(t, []string{"Invalid email or password."}, msgs)

	// a second read comes back empty
	again, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	msgs, err = m.PopFlash(ctx, again)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestManager_IdleTimeout(t *testing.T) {
	t.Parallel()

	m := &Manager{
		store:       NewMemoryStore(),
		codec:       &tokenCodec{secret: []byte("test-secret")},
		maxLifetime: time.Hour,
		idleTimeout: 10 * time.Millisecond,
	}
	ctx := context.Background()

	_, token, err := m.Issue(ctx, "user-1")
	require.NoError(t, err)

	time.Sleep(25 * time.Millisecond)

	_, err = m.Resolve(ctx, token)
	require.Error(t, err)
}

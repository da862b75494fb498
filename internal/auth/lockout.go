package auth

import (
	"context"
	"sync"
	"time"
)

// LockoutPolicy bundles the lockout tuning knobs.
type LockoutPolicy struct {
	MaxAttempts   int
	AttemptWindow time.Duration
	LockDuration  time.Duration
}

// AttemptTracker counts failed logins per account and reports when further
// attempts are locked out.
type AttemptTracker interface {
	// Locked returns how long the key stays locked; zero means not locked.
	Locked(ctx context.Context, key string) (time.Duration, error)
	// RecordFailure notes a failed attempt and returns remaining attempts.
	RecordFailure(ctx context.Context, key string) (int, error)
	// Reset clears failure state after a successful login.
	Reset(ctx context.Context, key string) error
}

type attemptState struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// MemoryAttemptTracker keeps lockout state in process memory.
type MemoryAttemptTracker struct {
	policy LockoutPolicy

	mu       sync.Mutex
	attempts map[string]*attemptState
}

// NewMemoryAttemptTracker builds an in-memory tracker.
func NewMemoryAttemptTracker(policy LockoutPolicy) *MemoryAttemptTracker {
	return &MemoryAttemptTracker{
		policy:   policy,
		attempts: make(map[string]*attemptState),
	}
}

func (t *MemoryAttemptTracker) Locked(_ context.Context, key string) (time.Duration, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.attempts[key]
	if !ok {
		return 0, nil
	}
	now := time.Now()
	if now.After(state.lockedUntil) {
		return 0, nil
	}
	return time.Until(state.lockedUntil), nil
}

func (t *MemoryAttemptTracker) RecordFailure(_ context.Context, key string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	state, ok := t.attempts[key]
	if !ok || now.Sub(state.firstAttempt) > t.policy.AttemptWindow {
		state = &attemptState{firstAttempt: now}
		t.attempts[key] = state
	}

	state.count++
	if state.count >= t.policy.MaxAttempts {
		state.lockedUntil = now.Add(t.policy.LockDuration)
		state.count = t.policy.MaxAttempts
	}

	remaining := t.policy.MaxAttempts - state.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (t *MemoryAttemptTracker) Reset(_ context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.attempts, key)
	return nil
}

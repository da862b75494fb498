package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/member-portal/internal/auth"
	"github.com/spec-kit/member-portal/internal/domain"
	"github.com/spec-kit/member-portal/internal/events"
	"github.com/spec-kit/member-portal/internal/observability"
	"github.com/spec-kit/member-portal/internal/repository"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	attempts   auth.AttemptTracker
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	bcryptCost int

	// dummyHash is compared against on the unknown-email path so a login
	// probe costs the same whether or not the account exists.
	dummyHash string
}

// AuthDependencies encapsulates collaborator requirements for the service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Attempts   auth.AttemptTracker
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
}

// NewAuthService builds the service.
func NewAuthService(bcryptCost int, deps AuthDependencies) (*AuthService, error) {
	dummy, err := auth.HashPassword(uuid.NewString(), bcryptCost)
	if err != nil {
		return nil, err
	}
	return &AuthService{
		users:      deps.UserRepo,
		attempts:   deps.Attempts,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		bcryptCost: bcryptCost,
		dummyHash:  dummy,
	}, nil
}

// Register creates a new member account. The plaintext password exists only
// for the duration of the hashing call; it is never stored or logged.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, errors.New("name, email and password are required")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.metrics.RecordAuthOutcome("register_success")
	s.publish(ctx, events.EventUserRegistered, user.ID, events.UserRegisteredPayload{
		Name:  user.Name,
		Email: user.Email,
	})
	return user, nil
}

// Authenticate verifies an email/password pair. Unknown email, wrong
// password and an active lockout all surface as the same error value to the
// caller so nothing distinguishes them upstream.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)

	if locked, err := s.attempts.Locked(ctx, email); err == nil && locked > 0 {
		s.metrics.RecordAuthOutcome("lockout")
		s.publish(ctx, events.EventLoginLocked, "", events.LoginFailedPayload{Email: email})
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = auth.ComparePassword(s.dummyHash, password)
			return nil, s.recordFailure(ctx, email)
		}
		return nil, err
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, s.recordFailure(ctx, email)
	}

	_ = s.attempts.Reset(ctx, email)
	s.metrics.RecordAuthOutcome("login_success")
	s.publish(ctx, events.EventUserLoggedIn, user.ID, nil)
	return user, nil
}

// NoteLogout publishes the logout event.
func (s *AuthService) NoteLogout(ctx context.Context, userID string) {
	s.metrics.RecordAuthOutcome("logout")
	s.publish(ctx, events.EventUserLoggedOut, userID, nil)
}

// GetUser loads a user by id for session resolution.
func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AuthService) recordFailure(ctx context.Context, email string) error {
	remaining, err := s.attempts.RecordFailure(ctx, email)
	if err != nil {
		remaining = 0
	}
	s.metrics.RecordAuthOutcome("login_failure")
	s.publish(ctx, events.EventLoginFailed, "", events.LoginFailedPayload{
		Email:             email,
		RemainingAttempts: remaining,
	})
	return domain.ErrInvalidCredentials
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, userID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

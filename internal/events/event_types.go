package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventUserLoggedIn   EventType = "user_logged_in"
	EventUserLoggedOut  EventType = "user_logged_out"
	EventLoginFailed    EventType = "login_failed"
	EventLoginLocked    EventType = "login_locked"
)

// Event represents an account event emitted by the auth service. Events
// never carry passwords or password hashes.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoginFailedPayload payload. Email identifies the targeted account, not
// necessarily an existing one.
type LoginFailedPayload struct {
	Email             string `json:"email"`
	RemainingAttempts int    `json:"remaining_attempts"`
}

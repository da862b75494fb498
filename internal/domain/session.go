package domain

import "time"

// Session is the server-side record behind a browser session cookie.
// UserID is empty for anonymous sessions, which exist only to carry
// flash messages across a redirect.
type Session struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	LastActive time.Time `json:"last_active"`
	Flash      []string  `json:"flash,omitempty"`
}

// Authenticated reports whether the session is bound to a user.
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != ""
}

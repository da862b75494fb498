package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/member-portal/internal/domain"
	"github.com/spec-kit/member-portal/internal/repository"
	"github.com/spec-kit/member-portal/internal/session"
)

const (
	sessionKey = "session_record"
	userKey    = "auth_user"
)

// Gate implements the two route guards. A request is in exactly one of two
// states, anonymous or authenticated; each guard redirects the wrong one.
type Gate struct {
	sessions   *session.Manager
	users      repository.UserRepository
	cookieName string
}

// NewGate constructs the guards.
func NewGate(sessions *session.Manager, users repository.UserRepository, cookieName string) *Gate {
	return &Gate{sessions: sessions, users: users, cookieName: cookieName}
}

// LoadSession resolves the session cookie once per request and stashes the
// record in the request context. A missing or invalid cookie leaves the
// request anonymous; that is not an error.
func (g *Gate) LoadSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(g.cookieName)
		if sess, err := g.sessions.Resolve(c.UserContext(), token); err == nil {
			c.Locals(sessionKey, sess)
		}
		return c.Next()
	}
}

// RequireAuthenticated admits authenticated requests, loading the user into
// the context, and redirects anonymous ones to the login page.
func (g *Gate) RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := SessionFromContext(c)
		if !ok || !sess.Authenticated() {
			return c.Redirect("/login", fiber.StatusFound)
		}

		user, err := g.users.GetByID(c.UserContext(), sess.UserID)
		if err != nil {
			// the record behind the session is gone; drop the session
			if errors.Is(err, domain.ErrUserNotFound) {
				_ = g.sessions.Destroy(c.UserContext(), sess)
				return c.Redirect("/login", fiber.StatusFound)
			}
			return err
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// RequireAnonymous admits anonymous requests and redirects authenticated
// ones to the protected page.
func (g *Gate) RequireAnonymous() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sess, ok := SessionFromContext(c); ok && sess.Authenticated() {
			return c.Redirect("/", fiber.StatusFound)
		}
		return c.Next()
	}
}

// SessionFromContext retrieves the resolved session, if any.
func SessionFromContext(c *fiber.Ctx) (*domain.Session, bool) {
	sess, ok := c.Locals(sessionKey).(*domain.Session)
	return sess, ok
}

// UserFromContext retrieves the authenticated user loaded by
// RequireAuthenticated.
func UserFromContext(c *fiber.Ctx) (*domain.User, bool) {
	user, ok := c.Locals(userKey).(*domain.User)
	return user, ok
}

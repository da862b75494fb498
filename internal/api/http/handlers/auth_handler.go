package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/member-portal/internal/api/dto"
	"github.com/spec-kit/member-portal/internal/auth"
	"github.com/spec-kit/member-portal/internal/domain"
	"github.com/spec-kit/member-portal/internal/service"
	"github.com/spec-kit/member-portal/internal/session"
)

// AuthHandler exposes the registration, login and logout endpoints.
type AuthHandler struct {
	auth     *service.AuthService
	sessions *session.Manager
	cookie   CookieConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, sessions *session.Manager, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{auth: authService, sessions: sessions, cookie: cookie}
}

// Register handles POST /register. Every failure redirects back to the
// form with a generic message; the cause is logged, never shown.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var form dto.RegisterForm
	if err := c.BodyParser(&form); err != nil {
		return flashAndRedirect(c, h.sessions, h.cookie, "Registration failed. Please try again.", "/register")
	}

	_, err := h.auth.Register(c.UserContext(), form.Name, form.Email, form.Password)
	if err != nil {
		msg := "Registration failed. Please try again."
		if errors.Is(err, domain.ErrEmailTaken) {
			msg = "That email is already registered."
		}
		return flashAndRedirect(c, h.sessions, h.cookie, msg, "/register")
	}

	return c.Redirect("/login", fiber.StatusFound)
}

// Login handles POST /login. On success the session is rotated and bound
// to the user; every failure mode shows the same flash message.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var form dto.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return flashAndRedirect(c, h.sessions, h.cookie, "Invalid email or password.", "/login")
	}

	user, err := h.auth.Authenticate(c.UserContext(), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) || errors.Is(err, domain.ErrTooManyAttempts) {
			return flashAndRedirect(c, h.sessions, h.cookie, "Invalid email or password.", "/login")
		}
		return err
	}

	prev, _ := auth.SessionFromContext(c)
	sess, token, err := h.sessions.Bind(c.UserContext(), prev, user.ID)
	if err != nil {
		return err
	}

	setSessionCookie(c, h.cookie, token, sess.ExpiresAt)
	return c.Redirect("/", fiber.StatusFound)
}

// Logout handles POST /logout. The _method=DELETE form value some clients
// still send is accepted and ignored.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, ok := auth.SessionFromContext(c)
	if ok {
		if user, loaded := auth.UserFromContext(c); loaded {
			h.auth.NoteLogout(c.UserContext(), user.ID)
		}
		_ = h.sessions.Destroy(c.UserContext(), sess)
	}

	clearSessionCookie(c, h.cookie)
	return c.Redirect("/login", fiber.StatusFound)
}

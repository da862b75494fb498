package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/member-portal/internal/auth"
	"github.com/spec-kit/member-portal/internal/session"
)

// CookieConfig carries what handlers need to write the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

func setSessionCookie(c *fiber.Ctx, cfg CookieConfig, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.Name,
		Value:    token,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   cfg.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

func clearSessionCookie(c *fiber.Ctx, cfg CookieConfig) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   cfg.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

// flashAndRedirect queues a one-shot message and redirects. When the
// request has no session yet, an anonymous one is issued so the message
// survives the redirect.
func flashAndRedirect(c *fiber.Ctx, sessions *session.Manager, cookie CookieConfig, msg, target string) error {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		issued, token, err := sessions.Issue(c.UserContext(), "")
		if err != nil {
			// message is lost but the flow still works
			return c.Redirect(target, fiber.StatusFound)
		}
		sess = issued
		setSessionCookie(c, cookie, token, sess.ExpiresAt)
	}

	_ = sessions.Flash(c.UserContext(), sess, msg)
	return c.Redirect(target, fiber.StatusFound)
}

func popFlash(c *fiber.Ctx, sessions *session.Manager) []string {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return nil
	}
	msgs, _ := sessions.PopFlash(c.UserContext(), sess)
	return msgs
}

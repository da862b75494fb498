package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/member-portal/internal/auth"
	"github.com/spec-kit/member-portal/internal/session"
)

// PagesHandler renders the HTML pages.
type PagesHandler struct {
	sessions *session.Manager
}

// NewPagesHandler constructs handler.
func NewPagesHandler(sessions *session.Manager) *PagesHandler {
	return &PagesHandler{sessions: sessions}
}

// Index handles GET /. The authenticated guard has already loaded the user.
func (h *PagesHandler) Index(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusFound)
	}
	return c.Render("index", fiber.Map{"Name": user.Name})
}

// LoginForm handles GET /login.
func (h *PagesHandler) LoginForm(c *fiber.Ctx) error {
	return c.Render("login", fiber.Map{"Flash": popFlash(c, h.sessions)})
}

// RegisterForm handles GET /register.
func (h *PagesHandler) RegisterForm(c *fiber.Ctx) error {
	return c.Render("register", fiber.Map{"Flash": popFlash(c, h.sessions)})
}

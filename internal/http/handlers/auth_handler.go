package handlers

import (
	"errors"

	"storefront/internal/domain"
	"storefront/internal/log"
	"storefront/internal/services"
	appsession "storefront/internal/session"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Auth *services.AuthService
}

// POST /register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	form := validate.Registration{
		Username:     c.FormValue("username"),
		Email:        c.FormValue("email"),
		ConfirmEmail: c.FormValue("confirm_email"),
		Password1:    c.FormValue("password1"),
		Password2:    c.FormValue("password2"),
	}
	u, err := h.Auth.Register(c.UserContext(), form)
	if err != nil && u != nil {
		// Account exists but the mail did not go out; it stays inactive.
		log.Error(c, "auth.register.mail.fail", err, map[string]any{"user_id": u.ID})
		return err
	}
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) || errors.Is(err, domain.ErrUsernameTaken) {
			log.Security(c, "auth.register.duplicate", map[string]any{"reason": err.Error()})
		}
		return fail(c, "auth.register", err)
	}
	log.Audit(c, "auth.register", map[string]any{"user_id": u.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Please check your email to activate your account.",
		"user":    u,
	})
}

// GET /activate/:uidb64/:token
func (h *AuthHandler) Activate(c *fiber.Ctx) error {
	u, err := h.Auth.Activate(c.UserContext(), c.Params("uidb64"), c.Params("token"))
	if errors.Is(err, domain.ErrInvalidToken) {
		log.Security(c, "auth.activate.invalid", nil)
		return c.Redirect("/register?activation=invalid")
	}
	if err != nil {
		return err
	}
	log.Audit(c, "auth.activate", map[string]any{"user_id": u.ID})
	return c.Redirect("/login?activated=1")
}

// POST /login accepts a username or an email in the "username" field.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	login := c.FormValue("username")
	u, err := h.Auth.Login(c.UserContext(), login, c.FormValue("password"))
	if err != nil {
		if errors.Is(err, domain.ErrBadCreds) || errors.Is(err, domain.ErrInactive) {
			log.Security(c, "auth.login.fail", map[string]any{"login": login, "reason": err.Error()})
			return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return err
	}

	sess := currentSession(c)
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(appsession.KeyUserID, u.ID)
	if err := sess.Save(); err != nil {
		return err
	}
	c.Locals(log.UserIDKey, u.ID)
	log.Audit(c, "auth.login.success", nil)
	return c.JSON(fiber.Map{"user": u})
}

// POST /logout drops the whole session, cart included.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := currentSession(c).Destroy(); err != nil {
		return err
	}
	log.Audit(c, "auth.logout", nil)
	return c.JSON(fiber.Map{"ok": true})
}

// GET /me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user": currentUser(c)})
}

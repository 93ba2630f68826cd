package handlers

import (
	"errors"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	appsession "storefront/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	localSession = "session"
	localUser    = "user"
)

// Sessions loads the visitor's session once per request and exposes the
// signed-in user id to the logger.
func Sessions(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		c.Locals(localSession, sess)
		if uid, ok := sess.Get(appsession.KeyUserID).(string); ok && uid != "" {
			c.Locals(applog.UserIDKey, uid)
		}
		return c.Next()
	}
}

func currentSession(c *fiber.Ctx) *session.Session {
	sess, _ := c.Locals(localSession).(*session.Session)
	return sess
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals(localUser).(*domain.User)
	return u
}

func loadUser(c *fiber.Ctx, auth *services.AuthService) (*domain.User, error) {
	sess := currentSession(c)
	if sess == nil {
		return nil, domain.ErrNotFound
	}
	uid, _ := sess.Get(appsession.KeyUserID).(string)
	u, err := auth.CurrentUser(c.UserContext(), uid)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, domain.ErrInactive
	}
	return u, nil
}

// RequireUser enforces that a user is logged in; otherwise 401.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := loadUser(c, auth)
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInactive) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Please log in first."})
		}
		if err != nil {
			return err
		}
		c.Locals(localUser, u)
		c.Locals(applog.UserIDKey, u.ID)
		return c.Next()
	}
}

func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := loadUser(c, auth)
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInactive) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Please log in first."})
		}
		if err != nil {
			return err
		}
		if !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"user_id": u.ID})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
		}
		c.Locals(localUser, u)
		c.Locals(applog.UserIDKey, u.ID)
		return c.Next()
	}
}

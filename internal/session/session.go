// Package session wires the fiber session store that holds the shopping cart
// and the signed-in user id for each visitor.
package session

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
)

const (
	CookieName = "sid"
	// Keys inside a session.
	KeyUserID = "uid"
	KeyCart   = "cart"
)

// NewStore builds the store. A nil storage keeps sessions in process memory.
func NewStore(ttl time.Duration, storage fiber.Storage) *session.Store {
	return session.New(session.Config{
		Expiration:     ttl,
		Storage:        storage,
		KeyLookup:      "cookie:" + CookieName,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
		CookieSecure:   false, // set true behind HTTPS
		KeyGenerator:   uuid.NewString,
	})
}

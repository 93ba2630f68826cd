package handlers

import (
	"time"

	applog "storefront/internal/log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Routes mounts every storefront endpoint. Sessions must already be loaded
// by the Sessions middleware.
func Routes(app fiber.Router, d *Deps, loginLimit int) {
	requireUser := RequireUser(d.Accounts)

	// Catalog
	app.Get("/", d.CategoryHandler.Home)
	app.Get("/categories", d.CategoryHandler.List)
	app.Get("/sale", d.CategoryHandler.Sale)
	app.Get("/products", limiter.New(limiter.Config{Max: 60, Expiration: time.Minute}), d.SearchHandler.Search)
	app.Get("/product/:id", d.ProductHandler.Detail)

	// Seller management
	app.Get("/manage-products", requireUser, d.ProductHandler.Manage)
	app.Get("/profile", requireUser, d.ProductHandler.Profile)
	app.Post("/products/add", requireUser, d.ProductHandler.Create)
	app.Post("/products/edit/:id", requireUser, d.ProductHandler.Update)
	app.Post("/products/delete/:id", requireUser, d.ProductHandler.Delete)

	// Cart & orders
	cart := app.Group("/cart", requireUser)
	cart.Get("/", d.CartHandler.View)
	cart.Post("/add/:id", d.CartHandler.Add)
	cart.Post("/update/:id", d.CartHandler.Update)
	cart.Post("/remove/:id", d.CartHandler.Remove)

	app.Get("/checkout", requireUser, d.OrderHandler.Preview)
	app.Post("/checkout", requireUser, d.OrderHandler.Place)
	app.Get("/my-orders", requireUser, d.OrderHandler.History)
	app.Get("/order/:id", requireUser, d.OrderHandler.View)
	app.Get("/order/:id/invoice.pdf", requireUser, d.OrderHandler.Invoice)

	// Accounts
	app.Post("/register", limiter.New(limiter.Config{Max: 10, Expiration: time.Hour}), d.AuthHandler.Register)
	app.Get("/activate/:uidb64/:token", d.AuthHandler.Activate)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        loginLimit,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many attempts. Please try again later."})
		},
	}), d.AuthHandler.Login)
	app.Post("/logout", d.AuthHandler.Logout)
	app.Get("/me", requireUser, d.AuthHandler.Me)

	// Admin
	admin := app.Group("/admin", RequireAdmin(d.Accounts))
	admin.Get("/orders", d.AdminHandler.OrdersPage)
	admin.Post("/orders/:id/status", d.AdminHandler.UpdateOrderStatus)
}

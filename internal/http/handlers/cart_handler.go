package handlers

import (
	"storefront/internal/domain"
	"storefront/internal/log"
	"storefront/internal/services"
	appsession "storefront/internal/session"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

type CartHandler struct {
	Cart *services.CartService
}

func loadCart(c *fiber.Ctx) (*session.Session, *services.Cart) {
	sess := currentSession(c)
	return sess, services.LoadCart(sess, appsession.KeyCart)
}

// saveCart writes the cart back. The session must not be touched afterwards.
func saveCart(sess *session.Session, cart *services.Cart) error {
	if err := services.SaveCart(sess, appsession.KeyCart, cart); err != nil {
		return err
	}
	return sess.Save()
}

func productParam(c *fiber.Ctx) (string, bool) {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
	}
	return id, ok
}

func cartSummary(cart *services.Cart, pid string) fiber.Map {
	return fiber.Map{"product_id": pid, "quantity": cart.Qty(pid), "items": cart.Len(), "revision": cart.Revision}
}

// GET /cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	sess, cart := loadCart(c)
	snap, err := h.Cart.Snapshot(c.UserContext(), cart)
	if err != nil {
		return err
	}
	if len(snap.Missing) > 0 {
		log.Info(c, "cart.prune", map[string]any{"missing": snap.Missing})
		if err := saveCart(sess, cart); err != nil {
			return err
		}
	}
	return c.JSON(snap)
}

// POST /cart/add/:id
func (h *CartHandler) Add(c *fiber.Ctx) error {
	pid, ok := productParam(c)
	if !ok {
		return fail(c, "cart.add", domain.ErrNotFound)
	}
	sess, cart := loadCart(c)
	if err := h.Cart.Add(c.UserContext(), cart, pid); err != nil {
		return fail(c, "cart.add", err)
	}
	if err := saveCart(sess, cart); err != nil {
		return err
	}
	return c.JSON(cartSummary(cart, pid))
}

// POST /cart/update/:id with form field "quantity"
func (h *CartHandler) Update(c *fiber.Ctx) error {
	pid, ok := productParam(c)
	if !ok {
		return fail(c, "cart.update", domain.ErrNotFound)
	}
	sess, cart := loadCart(c)
	cart.Update(pid, c.FormValue("quantity"))
	if err := saveCart(sess, cart); err != nil {
		return err
	}
	return c.JSON(cartSummary(cart, pid))
}

// POST /cart/remove/:id
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	pid, ok := productParam(c)
	if !ok {
		return fail(c, "cart.remove", domain.ErrNotFound)
	}
	sess, cart := loadCart(c)
	cart.Remove(pid)
	if err := saveCart(sess, cart); err != nil {
		return err
	}
	return c.JSON(cartSummary(cart, pid))
}

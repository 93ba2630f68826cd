package handlers

import (
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	Order    *services.OrderService
	Invoices *services.InvoiceService
}

// GET /checkout previews the priced cart.
func (h *OrderHandler) Preview(c *fiber.Ctx) error {
	_, cart := loadCart(c)
	snap, err := h.Order.Carts.Snapshot(c.UserContext(), cart)
	if err != nil {
		return err
	}
	if snap.Empty() {
		return fail(c, "checkout.preview", domain.ErrEmptyCart)
	}
	return c.JSON(snap)
}

// POST /checkout
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	u := currentUser(c)
	sess, cart := loadCart(c)
	form := services.ShippingForm{
		FullName: c.FormValue("full_name"),
		Address:  c.FormValue("address"),
		Phone:    c.FormValue("phone"),
		Note:     c.FormValue("note"),
	}

	o, err := h.Order.Checkout(c.UserContext(), u.ID, sess.ID(), cart, form)
	if err != nil {
		applog.Security(c, "order.place.fail", map[string]any{"reason": err.Error()})
		return fail(c, "order.place", err)
	}
	if err := saveCart(sess, cart); err != nil {
		// The order is committed; only the cart reset was lost.
		applog.Error(c, "order.place.cart_reset", err, map[string]any{"order_id": o.ID})
	}
	applog.Audit(c, "order.place", map[string]any{
		"order_id": o.ID,
		"total":    o.Total.StringFixed(2),
		"items":    len(o.Items),
	})
	c.Location("/order/" + o.ID)
	return c.Status(fiber.StatusCreated).JSON(o)
}

// GET /my-orders
func (h *OrderHandler) History(c *fiber.Ctx) error {
	orders, err := h.Order.History(c.UserContext(), currentUser(c).ID)
	if err != nil {
		applog.Error(c, "orders.history.fail", err, nil)
		return err
	}
	return c.JSON(fiber.Map{"orders": orders})
}

func orderParam(c *fiber.Ctx) (string, bool) {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "order"})
	}
	return id, ok
}

// GET /order/:id is visible to the buyer and to admins; others get 404.
func (h *OrderHandler) View(c *fiber.Ctx) error {
	id, ok := orderParam(c)
	if !ok {
		return fail(c, "order.view", domain.ErrNotFound)
	}
	o, err := h.Order.Get(c.UserContext(), currentUser(c), id)
	if err != nil {
		return fail(c, "order.view", err)
	}
	return c.JSON(o)
}

// GET /order/:id/invoice.pdf
func (h *OrderHandler) Invoice(c *fiber.Ctx) error {
	id, ok := orderParam(c)
	if !ok {
		return fail(c, "order.invoice", domain.ErrNotFound)
	}
	pdf, err := h.Invoices.Render(c.UserContext(), currentUser(c), id)
	if err != nil {
		return fail(c, "order.invoice", err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="invoice-`+id+`.pdf"`)
	return c.Send(pdf)
}

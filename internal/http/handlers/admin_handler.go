package handlers

import (
	"strings"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Orders *services.OrderService
}

// GET /admin/orders
func (h *AdminHandler) OrdersPage(c *fiber.Ctx) error {
	ords, err := h.Orders.Latest(c.UserContext(), c.QueryInt("limit", 100))
	if err != nil {
		applog.Error(c, "admin.orders.list.fail", err, nil)
		return err
	}
	return c.JSON(fiber.Map{"orders": ords})
}

// POST /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, ok := orderParam(c)
	if !ok {
		return fail(c, "admin.orders.update", domain.ErrNotFound)
	}
	status := domain.OrderStatus(strings.ToLower(strings.TrimSpace(c.FormValue("status"))))
	o, err := h.Orders.Advance(c.UserContext(), id, status)
	if err != nil {
		return fail(c, "admin.orders.update", err)
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": status})
	return c.JSON(o)
}

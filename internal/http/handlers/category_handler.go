package handlers

import (
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CategoryHandler serves the merchandising pages.
type CategoryHandler struct {
	Catalog *services.CatalogService
}

// GET /
func (h *CategoryHandler) Home(c *fiber.Ctx) error {
	ctx := c.UserContext()
	cats, err := h.Catalog.Categories(ctx)
	if err != nil {
		return err
	}
	worthy, err := h.Catalog.WorthyPicks(ctx)
	if err != nil {
		return err
	}
	sale, err := h.Catalog.OnSale(ctx)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"categories": cats, "worthy_picks": worthy, "on_sale": sale})
}

// GET /categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Catalog.Categories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"categories": cats})
}

// GET /sale
func (h *CategoryHandler) Sale(c *fiber.Ctx) error {
	ps, err := h.Catalog.OnSale(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"products": ps})
}

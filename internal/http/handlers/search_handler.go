package handlers

import (
	"strings"

	"storefront/internal/domain"
	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type SearchHandler struct {
	Catalog *services.CatalogService
}

// GET /products?category=&q=
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	f := domain.ProductFilter{Category: strings.TrimSpace(c.Query("category"))}
	if rawQ := c.Query("q"); strings.TrimSpace(rawQ) != "" {
		q, ok := validate.Q(rawQ)
		if !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "q"})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Enter a valid keyword (letters/numbers only)"})
		}
		f.Q = q
	}
	if len(f.Category) > 50 {
		log.Security(c, "validation.fail", map[string]any{"field": "category"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid category"})
	}

	ctx := c.UserContext()
	products, err := h.Catalog.ListProducts(ctx, f)
	if err != nil {
		log.Error(c, "search.error", err, nil)
		return err
	}
	worthy, err := h.Catalog.WorthyPicks(ctx)
	if err != nil {
		return err
	}
	cats, err := h.Catalog.Categories(ctx)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"q":            f.Q,
		"category":     f.Category,
		"categories":   cats,
		"products":     products,
		"count":        len(products),
		"worthy_picks": worthy,
	})
}

package handlers

import (
	"io"
	"mime/multipart"

	"storefront/internal/domain"
	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// GET /product/:id
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := productParam(c)
	if !ok {
		return fail(c, "product.view", domain.ErrNotFound)
	}
	p, err := h.Catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return fail(c, "product.view", err)
	}
	return c.JSON(p)
}

// GET /manage-products
func (h *ProductHandler) Manage(c *fiber.Ctx) error {
	ps, err := h.Catalog.MyProducts(c.UserContext(), currentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"products": ps})
}

// GET /profile
func (h *ProductHandler) Profile(c *fiber.Ctx) error {
	u := currentUser(c)
	ps, err := h.Catalog.MyProducts(c.UserContext(), u)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": u, "products": ps})
}

func productForm(c *fiber.Ctx) validate.ProductForm {
	return validate.ProductForm{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Category:    c.FormValue("category"),
		Price:       c.FormValue("price"),
		Rating:      c.FormValue("rating"),
	}
}

// upload returns the optional "image" file. The reader is nil when no file
// was sent.
func upload(c *fiber.Ctx) (io.Reader, func(), error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, func() {}, nil
	}
	var f multipart.File
	if f, err = fh.Open(); err != nil {
		return nil, func() {}, err
	}
	return f, func() { _ = f.Close() }, nil
}

// POST /products/add
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	img, done, err := upload(c)
	if err != nil {
		return err
	}
	defer done()
	p, err := h.Catalog.CreateProduct(c.UserContext(), currentUser(c), productForm(c), img)
	if err != nil {
		return fail(c, "product.create", err)
	}
	log.Audit(c, "product.create", map[string]any{"product_id": p.ID})
	c.Location("/product/" + p.ID)
	return c.Status(fiber.StatusCreated).JSON(p)
}

// POST /products/edit/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := productParam(c)
	if !ok {
		return fail(c, "product.update", domain.ErrNotFound)
	}
	img, done, err := upload(c)
	if err != nil {
		return err
	}
	defer done()
	p, err := h.Catalog.UpdateProduct(c.UserContext(), currentUser(c), id, productForm(c), img)
	if err != nil {
		return fail(c, "product.update", err)
	}
	log.Audit(c, "product.update", map[string]any{"product_id": p.ID})
	return c.JSON(p)
}

// POST /products/delete/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := productParam(c)
	if !ok {
		return fail(c, "product.delete", domain.ErrNotFound)
	}
	if err := h.Catalog.DeleteProduct(c.UserContext(), currentUser(c), id); err != nil {
		return fail(c, "product.delete", err)
	}
	log.Audit(c, "product.delete", map[string]any{"product_id": id})
	return c.JSON(fiber.Map{"deleted": id})
}

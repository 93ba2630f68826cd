package handlers

import (
	"errors"
	"sort"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/media"

	"github.com/gofiber/fiber/v2"
)

const genericError = "Something went wrong. Please try again."

// statusFor maps a domain error onto an HTTP status. Unclassified errors
// yield 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidToken):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrInactive):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrBadCreds):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrDuplicateCheckout),
		errors.Is(err, domain.ErrStatusTransition):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrUsernameTaken),
		errors.Is(err, domain.ErrEmailMismatch),
		errors.Is(err, domain.ErrPasswordMismatch),
		errors.Is(err, media.ErrUnsupportedImage):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// fail writes the JSON error for a classified error and returns anything
// else to the app ErrorHandler so internals never reach the client.
func fail(c *fiber.Ctx, action string, err error) error {
	if ve, ok := domain.IsValidation(err); ok {
		fields := make([]string, 0, len(ve.Fields))
		for k := range ve.Fields {
			fields = append(fields, k)
		}
		sort.Strings(fields)
		applog.Security(c, "validation.fail", map[string]any{"action": action, "fields": fields})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Please correct the highlighted fields.", "fields": ve.Fields})
	}

	status := statusFor(err)
	switch status {
	case fiber.StatusInternalServerError:
		return err
	case fiber.StatusForbidden, fiber.StatusUnauthorized:
		applog.Security(c, action+".denied", map[string]any{"reason": err.Error()})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// ErrorHandler is the app-wide fallback. fiber errors keep their code and
// message; everything else is logged and answered with a generic 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	applog.Error(c, "server.error", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": genericError})
}

func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Page not found"})
}

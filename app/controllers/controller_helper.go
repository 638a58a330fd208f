package controllers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// jsonError writes the shared error shape used by every API endpoint.
func jsonError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// decodeBody parses a JSON request body into a typed request struct and
// runs its validation tags. Unknown bodies fail here, before any store
// access.
func decodeBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return err
	}
	return validate.Struct(out)
}

package middleware

import (
	"wikiquiz/internal/util"

	"github.com/gofiber/fiber/v2"
)

const (
	RequestIDHeader = "X-Request-ID"
	LocalRequestID  = "request_id"
)

// RequestID assigns a ULID to every request that does not already
// carry one, and echoes it back in the response header.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = util.NewULID()
		}
		c.Locals(LocalRequestID, id)
		c.Set(RequestIDHeader, id)
		return c.Next()
	}
}

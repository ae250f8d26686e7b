package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/localnerve/napkins/internal/types"
)

// RequestIDKey is the fiber local holding the request id
const RequestIDKey = "requestID"

// RequestContext bounds every request with timeout and tags it with an id.
// Handlers pass c.UserContext() to the services.
func RequestContext(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(fiber.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals(RequestIDKey, requestID)
		c.Set(fiber.HeaderXRequestID, requestID)

		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// VersionMiddleware parses the X-Api-Version header and stores it in context.
// Only major version 1 is served.
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := c.Get("X-Api-Version", "1.0.0")

		switch parts := strings.Split(version, "."); {
		case parts[0] != "1":
			return &types.CustomError{
				Code:    fiber.StatusBadRequest,
				Message: "Unsupported API version " + version,
				Type:    "data.version",
			}
		case len(parts) == 1:
			version += ".0.0"
		case len(parts) == 2:
			version += ".0"
		}

		c.Locals("apiVersion", version)
		return c.Next()
	}
}

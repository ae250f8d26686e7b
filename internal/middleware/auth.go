package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/napkins/internal/auth"
	"github.com/localnerve/napkins/internal/config"
	"github.com/localnerve/napkins/internal/services"
	"github.com/localnerve/napkins/internal/types"
)

// UserIDKey is the fiber local holding the authenticated user id
const UserIDKey = "userID"

// SessionValidator resolves an Authorizer session cookie to a user id
type SessionValidator func(c *fiber.Ctx, cookie string) (string, error)

// Authenticate resolves the caller's identity from a bearer token or an
// Authorizer session cookie. Either source may be disabled by passing nil.
func Authenticate(verifier *auth.TokenVerifier, sessions SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if header := c.Get(fiber.HeaderAuthorization); header != "" {
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || verifier == nil {
				return authError("Unsupported authorization scheme", "data.authentication.scheme")
			}
			userID, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				return authError(fmt.Sprintf("Invalid token: %v", err), "data.authentication.token")
			}
			c.Locals(UserIDKey, userID)
			return c.Next()
		}

		session := c.Cookies("cookie_session")
		if session == "" || sessions == nil {
			return authError("No bearer token or \"cookie_session\" cookie found", "data.authentication.missing")
		}
		userID, err := sessions(c, session)
		if err != nil {
			return authError(fmt.Sprintf("Invalid session: %v", err), "data.authentication.session")
		}
		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// AuthorizerSessions validates cookies against the configured Authorizer,
// initializing the client on first use.
func AuthorizerSessions(cfg *config.Config) SessionValidator {
	return func(c *fiber.Ctx, cookie string) (string, error) {
		if !services.IsAuthorizerInitialized() {
			redirectURL := fmt.Sprintf("%s://%s", c.Protocol(), c.Hostname())
			if err := services.InitAuthorizer(c.UserContext(), cfg, redirectURL); err != nil {
				return "", err
			}
		}
		return services.ValidateSession(cookie)
	}
}

// UserID returns the authenticated user id, or "" outside Authenticate
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}

func authError(message, errorType string) error {
	return &types.CustomError{
		Code:    fiber.StatusUnauthorized,
		Message: message,
		Type:    errorType,
	}
}

package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/napkins/internal/auth"
	"github.com/localnerve/napkins/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var ce *types.CustomError
			if errors.As(err, &ce) {
				return c.Status(ce.Code).SendString(ce.Type)
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
}

func whoami(c *fiber.Ctx) error {
	return c.SendString(UserID(c))
}

func TestAuthenticateBearer(t *testing.T) {
	verifier := auth.NewTokenVerifier("0123456789abcdef0123456789abcdef")
	app := newTestApp()
	app.Get("/me", Authenticate(verifier, nil), whoami)

	token, err := verifier.Issue("user-1", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthenticateSession(t *testing.T) {
	sessions := func(c *fiber.Ctx, cookie string) (string, error) {
		if cookie == "good" {
			return "user-2", nil
		}
		return "", errors.New("expired")
	}
	app := newTestApp()
	app.Get("/me", Authenticate(nil, sessions), whoami)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", "cookie_session=good")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", "cookie_session=bad")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// bearer tokens are refused when no verifier is configured
	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer anything")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	store := NewLimiterStore(1, 2, time.Minute)
	defer store.Stop()

	app := newTestApp()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(UserIDKey, c.Get("X-User"))
		return c.Next()
	})
	app.Post("/like", RateLimit(store), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	send := func(user string) int {
		req := httptest.NewRequest("POST", "/like", nil)
		req.Header.Set("X-User", user)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusNoContent, send("a"))
	assert.Equal(t, fiber.StatusNoContent, send("a"))
	assert.Equal(t, fiber.StatusTooManyRequests, send("a"))
	// limits are per user
	assert.Equal(t, fiber.StatusNoContent, send("b"))
}

func TestLimiterStoreSweep(t *testing.T) {
	store := NewLimiterStore(60, 1, time.Hour)
	store.Stop()
	store.Stop()

	store.Allow("old")
	store.sweep(time.Now().Add(time.Second))
	store.mu.Lock()
	assert.Empty(t, store.clients)
	store.mu.Unlock()
}

func TestVersionMiddleware(t *testing.T) {
	app := newTestApp()
	app.Get("/v", VersionMiddleware(), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("apiVersion").(string))
	})

	for header, want := range map[string]int{"": 200, "1": 200, "1.0": 200, "1.2.3": 200, "2.0.0": 400} {
		req := httptest.NewRequest("GET", "/v", nil)
		if header != "" {
			req.Header.Set("X-Api-Version", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, header)
	}
}

func TestRequestContext(t *testing.T) {
	app := newTestApp()
	app.Get("/ctx", RequestContext(50*time.Millisecond), func(c *fiber.Ctx) error {
		deadline, ok := c.UserContext().Deadline()
		if !ok || time.Until(deadline) > 50*time.Millisecond {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ctx", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

	req := httptest.NewRequest("GET", "/ctx", nil)
	req.Header.Set(fiber.HeaderXRequestID, "abc")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.Header.Get(fiber.HeaderXRequestID))
}

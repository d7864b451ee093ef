package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loggedApp(t *testing.T, cfg ...LogConfig) (*fiber.App, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	app := fiber.New()
	app.Use(LoggingMiddleware(logger, cfg...))
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/items", func(c *fiber.Ctx) error { return c.SendString("items") })
	app.Get("/missing", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Item not found"})
	})
	app.Post("/items", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "nope") })
	app.Post("/api/auth/login", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	return app, hook
}

func TestLoggingMiddlewareRequestID(t *testing.T) {
	app, hook := loggedApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items", nil))
	require.NoError(t, err)
	generated := resp.Header.Get(RequestIDHeader)
	_, err = uuid.Parse(generated)
	assert.NoError(t, err)

	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, generated, entry.Data["request_id"])
	assert.Equal(t, "/items", entry.Data["path"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header.Set(RequestIDHeader, "client-supplied")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "client-supplied", resp.Header.Get(RequestIDHeader))
	assert.Equal(t, "client-supplied", hook.LastEntry().Data["request_id"])
}

func TestLoggingMiddlewareLevels(t *testing.T) {
	app, hook := loggedApp(t)

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Empty(t, hook.AllEntries())

	_, err = app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, http.StatusNotFound, hook.LastEntry().Data["status"])

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/items", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, http.StatusTeapot, hook.LastEntry().Data["status"])
}

func TestLoggingMiddlewareCustomConfig(t *testing.T) {
	app, hook := loggedApp(t, LogConfig{IncludeBody: true})

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	require.Len(t, hook.AllEntries(), 1)

	req := httptest.NewRequest(http.MethodPost, "/items", http.NoBody)
	_, err = app.Test(req)
	require.NoError(t, err)
	assert.NotContains(t, hook.LastEntry().Data, "request_body")
}

func TestLoggingMiddlewareRedactsSecrets(t *testing.T) {
	app, hook := loggedApp(t, LogConfig{IncludeBody: true})

	body := `{"email":"owner@example.com","password":"hunter2","profile":{"newPassword":"s3cret"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	_, err := app.Test(req)
	require.NoError(t, err)

	logged, ok := hook.LastEntry().Data["request_body"].(string)
	require.True(t, ok)
	assert.NotContains(t, logged, "hunter2")
	assert.NotContains(t, logged, "s3cret")
	assert.Contains(t, logged, "owner@example.com")
	assert.Contains(t, logged, "[REDACTED]")

	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("name=widget"))
	_, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "name=widget", hook.LastEntry().Data["request_body"])
}

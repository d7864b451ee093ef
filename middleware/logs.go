package middleware

import (
	"slices"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"Stockbook/Models"
)

const RequestIDHeader = "X-Request-ID"

// LogConfig holds configuration for the logging middleware
type LogConfig struct {
	// Skip logging for specific paths
	SkipPaths []string
	// Include the body of non-GET requests. Password and token fields of a
	// JSON body are replaced with "[REDACTED]".
	IncludeBody bool
}

// DefaultLogConfig returns a default configuration for the logging middleware
func DefaultLogConfig() LogConfig {
	return LogConfig{
		SkipPaths: []string{"/health"},
	}
}

// LoggingMiddleware writes one structured entry per request. Every request
// gets an id, taken from X-Request-ID when the client sent one.
func LoggingMiddleware(logger *logrus.Logger, config ...LogConfig) fiber.Handler {
	cfg := DefaultLogConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDHeader, requestID)
		c.Locals("requestId", requestID)

		if slices.Contains(cfg.SkipPaths, c.Path()) {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// The app error handler has not written the response yet.
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		fields := logrus.Fields{
			"module":     "middleware",
			"request_id": requestID,
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.IP(),
			"user_agent": c.Get(fiber.HeaderUserAgent),
		}
		if user, ok := c.Locals("user").(Models.User); ok {
			fields["user_id"] = user.ID
			fields["username"] = user.Name
		}
		if cfg.IncludeBody && c.Method() != fiber.MethodGet && len(c.Body()) > 0 {
			fields["request_body"] = redactBody(c)
		}

		entry := logger.WithFields(fields)
		switch {
		case err != nil:
			entry.WithError(err).Error("request failed")
		case status >= fiber.StatusInternalServerError:
			entry.Error("request completed")
		case status >= fiber.StatusBadRequest:
			entry.Warn("request completed")
		default:
			entry.Info("request completed")
		}
		return err
	}
}

const redacted = "[REDACTED]"

// redactBody returns the request body with secret-looking JSON fields masked.
// Bodies that are not a JSON object are returned unchanged.
func redactBody(c *fiber.Ctx) string {
	body := c.Body()
	var payload map[string]any
	if err := c.App().Config().JSONDecoder(body, &payload); err != nil {
		return string(body)
	}
	if !redactSecrets(payload) {
		return string(body)
	}
	out, err := c.App().Config().JSONEncoder(payload)
	if err != nil {
		return redacted
	}
	return string(out)
}

func redactSecrets(payload map[string]any) bool {
	changed := false
	for key, value := range payload {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "password") || strings.Contains(lower, "token") || strings.Contains(lower, "secret") {
			payload[key] = redacted
			changed = true
			continue
		}
		if nested, ok := value.(map[string]any); ok && redactSecrets(nested) {
			changed = true
		}
	}
	return changed
}

package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/obrador/storefront/internal/observability"
)

// NewApp assembles the Fiber application with request-scoped logging and
// HTTP metrics around the registered routes.
func NewApp(h *Handler, obs observability.Observability) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "storefront",
		DisableStartupMessage: true,
	})
	app.Use(fiberrecover.New())
	app.Use(cors.New())

	log := obs.Logger().With(observability.F("component", "http"))
	requests := obs.Metrics().Counter("http_requests_total",
		"HTTP requests handled.", "method", "route", "status")
	duration := obs.Metrics().Histogram("http_request_duration_seconds",
		"HTTP request latency.", nil, "method", "route")

	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := c.Get(fiber.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, requestID)

		reqLogger := log.With(observability.F("request_id", requestID))
		c.SetUserContext(observability.ContextWithLogger(c.UserContext(), reqLogger))

		err := c.Next()

		route := c.Route().Path
		status := c.Response().StatusCode()
		requests.Add(1,
			observability.L("method", c.Method()),
			observability.L("route", route),
			observability.L("status", statusClass(status)),
		)
		duration.Observe(time.Since(start).Seconds(),
			observability.L("method", c.Method()),
			observability.L("route", route),
		)

		if status >= fiber.StatusInternalServerError {
			reqLogger.Error("request_failed",
				observability.F("method", c.Method()),
				observability.F("path", c.Path()),
				observability.F("status", status),
			)
		}
		return err
	})

	h.Register(app)
	return app
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

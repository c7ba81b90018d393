package handler

import (
	"errors"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/legalvoice/api/internal/config"
	"github.com/legalvoice/api/internal/middleware"
	ws "github.com/legalvoice/api/internal/websocket"
	"github.com/legalvoice/api/pkg/response"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes bundles what the HTTP surface is built from.
type Routes struct {
	Health      *HealthHandler
	Auth        *AuthHandler
	Cases       *CaseHandler
	Files       *FileHandler
	Hub         *ws.Hub
	APIAuth     fiber.Handler
	RateLimiter *middleware.RateLimiter
	RateLimit   config.RateLimitConfig
	Registry    *prometheus.Registry
}

// Register mounts every route on app.
func Register(app *fiber.App, r Routes) {
	app.Get("/", r.Health.Root)
	app.Get("/health", r.Health.Health)
	if r.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{})))
	}

	// ForwardAuth verification endpoint (internal, called by the gateway)
	app.Get("/auth/verify", r.Auth.Verify)

	// Stored objects, mounted only for in-memory storage
	if r.Files != nil {
		app.Get("/files/*", r.Files.Serve)
	}

	api := app.Group("/api", r.APIAuth)
	api.Get("/options", r.Cases.Options)

	read := r.RateLimiter.ReadLimit(r.RateLimit.ReadPerMin)
	cases := api.Group("/cases")
	cases.Post("/", r.RateLimiter.IntakeLimit(r.RateLimit.IntakePerHour), r.Cases.Create)
	cases.Get("/", read, r.Cases.List)
	cases.Get("/stats", read, r.Cases.Stats)
	cases.Get("/:caseId", read, r.Cases.Get)
	cases.Get("/:caseId/status", read, r.Cases.Status)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/cases/:caseId", websocket.New(func(c *websocket.Conn) {
		r.Hub.HandleConnection(c, c.Params("caseId"))
	}))
}

// ErrorHandler renders unhandled errors in the API error envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	errCode := response.CodeServiceError
	switch code {
	case fiber.StatusNotFound:
		errCode = response.CodeNotFound
	case fiber.StatusRequestEntityTooLarge, fiber.StatusBadRequest:
		errCode = response.CodeValidationError
	}
	return response.Error(c, code, errCode, message, nil)
}

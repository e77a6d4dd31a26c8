// Package main provides the FlowDeck API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flowdeck/flowdeck/pkg/registry"
	"github.com/flowdeck/flowdeck/pkg/session"
	"github.com/flowdeck/flowdeck/pkg/web"
)

type API struct {
	logger   *slog.Logger
	manager  *session.Manager
	registry *registry.Registry
	validate *validator.Validate
	app      *fiber.App
}

func NewAPI(
	logger *slog.Logger,
	manager *session.Manager,
	registry *registry.Registry,
) *API {
	a := &API{
		logger:   logger,
		manager:  manager,
		registry: registry,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	a.app = a.buildApp()

	return a
}

func (a *API) buildApp() *fiber.App {
	handlers := web.NewAPIHandlers(a.manager, a.registry, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("FlowDeck API")
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/kinds", handlers.GetKinds)

	s := app.Group("/sessions")
	s.Post("/", handlers.CreateSession)
	s.Get("/", handlers.GetSessions)
	s.Get("/:id", handlers.GetSession)
	s.Delete("/:id", handlers.DeleteSession)
	s.Get("/:id/events", handlers.GetEvents)

	s.Post("/:id/nodes", handlers.CreateNode)
	s.Get("/:id/nodes", handlers.GetNodes)
	s.Get("/:id/nodes/:nodeId", handlers.GetNode)
	s.Patch("/:id/nodes/:nodeId", handlers.UpdateNode)
	s.Delete("/:id/nodes/:nodeId", handlers.DeleteNode)
	s.Post("/:id/nodes/:nodeId/run", handlers.RunNode)

	s.Get("/:id/nodes/:nodeId/inputs", handlers.GetInputs)
	s.Get("/:id/nodes/:nodeId/output", handlers.GetOutput)
	s.Put("/:id/nodes/:nodeId/output", handlers.SetOutput)
	s.Delete("/:id/nodes/:nodeId/output", handlers.DeleteOutput)

	s.Post("/:id/edges", handlers.CreateEdge)
	s.Get("/:id/edges", handlers.GetEdges)
	s.Delete("/:id/edges", handlers.DeleteEdge)

	return app
}

func (a *API) App() *fiber.App {
	return a.app
}

func (a *API) Start(port int) error {
	return a.app.Listen(":" + strconv.Itoa(port))
}

// Shutdown drains in-flight requests and stops the listener, unblocking
// Start.
func (a *API) Shutdown(ctx context.Context) error {
	return a.app.ShutdownWithContext(ctx)
}

package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/areaselect/internal/core/usecases"
	"github.com/samirrijal/areaselect/internal/pkg/metrics"
)

const requestTimeout = 10 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: map clients emit a burst of events while dragging pins.
	app.Use(limiter.New(limiter.Config{
		Max:        600,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional polling of session state
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	with := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, requestTimeout)
	}

	// Sessions
	v1 := app.Group("/v1")
	v1.Post("/sessions", with(CreateSessionHandler(deps)))
	v1.Get("/sessions/:id", with(GetSessionHandler(deps)))
	v1.Delete("/sessions/:id", with(DeleteSessionHandler(deps)))

	// Selection events
	s := v1.Group("/sessions/:id")
	s.Post("/actions", with(ActionsHandler(deps)))
	s.Put("/tab", with(ActionHandler(deps, usecases.ActionSelectTab)))
	s.Put("/tool", with(ActionHandler(deps, usecases.ActionSelectTool)))
	s.Post("/pins", with(ActionHandler(deps, usecases.ActionAddPin)))
	s.Put("/pins/:pinId", with(ActionHandler(deps, usecases.ActionMovePin)))
	s.Post("/undo", with(ActionHandler(deps, usecases.ActionUndo)))
	s.Post("/clear", with(ActionHandler(deps, usecases.ActionClear)))
	s.Put("/shape/kind", with(ActionHandler(deps, usecases.ActionSetShapeKind)))
	s.Put("/shape/dimensions", with(ActionHandler(deps, usecases.ActionResizeShape)))
	s.Post("/confirm", with(ActionHandler(deps, usecases.ActionConfirm)))
	s.Post("/cancel", with(ActionHandler(deps, usecases.ActionCancel)))

	// Area engine outputs
	s.Get("/evaluation", with(EvaluationHandler(deps)))
	s.Post("/analyze", with(AnalyzeHandler(deps)))
	s.Get("/geojson", with(GeoJSONHandler(deps)))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket: one channel per session
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/sessions/:id", websocket.New(WebSocketHandler(deps)))
}

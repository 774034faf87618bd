package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aiforce/intelliops-console/internal/api/handler"
	"github.com/aiforce/intelliops-console/internal/api/metrics"
	"github.com/aiforce/intelliops-console/internal/api/middleware"
	"github.com/aiforce/intelliops-console/internal/core/ports"
)

// Services bundles the wired core services the router exposes.
type Services struct {
	Auth       ports.AuthService
	Chat       ports.ChatService
	Continuity ports.ContinuityService
	Threads    ports.ThreadRepository
	Providers  ports.ProviderService
	Prompts    ports.PromptService
	Traces     ports.TraceService
	Bus        ports.Bus
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("console"))

	// Bus-driven metrics: count broadcasts where they happen instead of
	// threading counters through the services.
	svc.Bus.Subscribe(ports.EventSessionExpired, func(any) {
		metrics.SessionExpiriesTotal.Inc()
	})
	svc.Bus.Subscribe(ports.EventProviderChanged, func(payload any) {
		if p, ok := payload.(ports.ProviderChanged); ok {
			metrics.ProviderSwitchesTotal.WithLabelValues(string(p.Provider)).Inc()
		}
	})

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(svc.Auth)
	chatHandler := handler.NewChatHandler(svc.Chat, svc.Continuity)
	threadHandler := handler.NewThreadHandler(svc.Threads)
	providerHandler := handler.NewProviderHandler(svc.Providers)
	promptHandler := handler.NewPromptHandler(svc.Prompts, svc.Auth)
	traceHandler := handler.NewTraceHandler(svc.Traces)

	// --- Health probes and metrics (no profile required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Profile-scoped API ---
	apiGroup := e.Group("/api", middleware.Profile())

	apiGroup.POST("/auth/login", authHandler.Login)
	apiGroup.POST("/auth/register", authHandler.Register)
	apiGroup.POST("/auth/refresh", authHandler.Refresh)
	apiGroup.GET("/auth/me", authHandler.Me)
	apiGroup.POST("/auth/logout", authHandler.Logout)

	// Everything below requires a settled, authenticated session.
	guarded := apiGroup.Group("", middleware.Guard(svc.Auth))

	guarded.GET("/chat/resolve", chatHandler.Resolve)
	guarded.POST("/chat/turns", chatHandler.SendTurn)
	guarded.POST("/chat/new", chatHandler.NewSession)

	guarded.GET("/threads", threadHandler.List)
	guarded.DELETE("/threads/:id", threadHandler.Remove)
	guarded.DELETE("/threads", threadHandler.RemoveAll)

	guarded.GET("/provider", providerHandler.Get)
	guarded.POST("/provider/resolve", providerHandler.Resolve)
	guarded.PUT("/provider", providerHandler.Set)

	guarded.GET("/prompts", promptHandler.List)
	guarded.POST("/prompts/:id/favorite", promptHandler.ToggleFavorite)

	// Catalog writes and the log viewer are administrator surfaces.
	admin := guarded.Group("", middleware.AdminOnly(svc.Auth))
	admin.POST("/prompts", promptHandler.Create)
	admin.PUT("/prompts/:id", promptHandler.Update)
	admin.DELETE("/prompts/:id", promptHandler.Delete)
	admin.GET("/logs", traceHandler.Recent)

	return e
}

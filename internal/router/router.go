package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"mediguard/internal/handler"
	"mediguard/internal/middleware"
	"mediguard/internal/service"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Analyze *handler.AnalyzeHandler
	History *handler.HistoryHandler
	Profile *handler.ProfileHandler
	Guest   *handler.GuestHandler
	Health  *handler.HealthHandler
}

// Options holds the cross-cutting settings of the engine.
type Options struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
	GuestCookie    string
	SecureCookies  bool
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(authSvc service.AuthService, h Handlers, opts Options) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(opts.AllowedOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	api := r.Group("/api")

	// Public auth routes
	auth := api.Group("/auth")
	auth.POST("/signup", h.Auth.Signup)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.RefreshToken)

	// Guest-or-user routes
	open := api.Group("")
	open.Use(middleware.OptionalAuth(authSvc))
	open.Use(middleware.GuestSession(opts.GuestCookie, opts.SecureCookies))
	open.POST("/analyze-bill", h.Analyze.Analyze)
	open.GET("/guest/usage", h.Guest.Usage)

	// Protected routes - require valid JWT
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	protected.GET("/profile", h.Profile.Get)
	protected.PUT("/profile", h.Profile.Update)

	history := protected.Group("/history")
	history.GET("", h.History.List)
	history.GET("/export", h.History.Export)
	history.GET("/:id", h.History.Get)
	history.DELETE("/:id", h.History.Delete)

	return r
}

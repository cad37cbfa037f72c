package router

import (
	"github.com/gin-gonic/gin"

	"pajakos/internal/config"
	"pajakos/internal/domain"
	"pajakos/internal/handler"
	"pajakos/internal/middleware"
	"pajakos/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	authSvc service.AuthService,
	authH *handler.AuthHandler,
	docH *handler.DocumentHandler,
	userH *handler.UserHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.RefreshToken)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	// Document intake and parsing
	docs := protected.Group("/documents")
	docs.POST("", docH.Create)
	docs.GET("", docH.List)
	docs.GET("/export", docH.Export)
	docs.GET("/review-queue", middleware.RequireRole(domain.RoleAdmin, domain.RoleReviewer), docH.ReviewQueue)
	docs.GET("/:id", docH.GetByID)
	docs.GET("/:id/result", docH.GetResult)
	docs.GET("/:id/payload-url", docH.PayloadURL)
	docs.POST("/:id/review", middleware.RequireRole(domain.RoleAdmin, domain.RoleReviewer), docH.Review)
	docs.POST("/:id/retry", middleware.RequireRole(domain.RoleAdmin, domain.RoleReviewer), docH.Retry)
	docs.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), docH.Delete)

	// User management
	users := protected.Group("/users")
	users.POST("", middleware.RequireRole(domain.RoleAdmin), userH.Create)
	users.GET("", middleware.RequireRole(domain.RoleAdmin), userH.List)
	users.GET("/me", userH.Me)
	users.GET("/:id", userH.GetByID)
	users.PUT("/:id", userH.Update)
	users.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), userH.Delete)

	return r
}

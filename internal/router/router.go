package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "claimdesk/docs" // registers the swagger spec
	"claimdesk/internal/config"
	"claimdesk/internal/handler"
	"claimdesk/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.ServerConfig,
	docH *handler.DocumentHandler,
	claimH *handler.ClaimHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.AllowedOrigins...))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Organization-scoped routes
	v1 := r.Group("/api/v1")
	v1.Use(middleware.OrganizationScope())

	documents := v1.Group("/documents")
	documents.GET("/:id", docH.GetByID)
	documents.POST("/:id/process", docH.Process)
	documents.GET("/:id/audit", docH.ListAudit)

	claims := v1.Group("/claims")
	claims.GET("/:id/effective-policy", claimH.EffectivePolicy)
	claims.GET("/:id/effective-policy/export", claimH.ExportEffectivePolicy)

	return r
}

package http

import (
	"github.com/gin-gonic/gin"
	"github.com/nani/backend/config"
	"github.com/nani/backend/internal/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, m *metrics.Metrics, gatherer prometheus.Gatherer, logger *zap.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger))
	router.Use(MetricsMiddleware(m))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	v1.Use(SessionMiddleware())
	{
		products := v1.Group("/products")
		{
			products.GET("", handler.ListProducts)
			products.GET("/:id", handler.GetProduct)
			products.GET("/:id/related", handler.RelatedProducts)
			products.GET("/:id/recipes", handler.ProductRecipes)
		}

		recipes := v1.Group("/recipes")
		{
			recipes.GET("/:id", handler.GetRecipe)
			recipes.POST("/:id/save", handler.ToggleSaveRecipe)
		}

		cart := v1.Group("/cart")
		{
			cart.GET("", handler.GetCart)
			cart.DELETE("", handler.ClearCart)
			cart.POST("/items", handler.AddCartItem)
			cart.PATCH("/items/:id", handler.UpdateCartItem)
			cart.DELETE("/items/:id", handler.RemoveCartItem)
			cart.GET("/recipes", handler.CartRecipes)
		}

		v1.POST("/wishlist/:id", handler.ToggleWishlist)
		v1.POST("/chat", handler.Chat)
	}

	return router
}

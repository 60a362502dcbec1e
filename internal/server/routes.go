package server

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/travischeung/generalized-web-scraper/internal/config"
	"github.com/travischeung/generalized-web-scraper/internal/logging"
	"github.com/travischeung/generalized-web-scraper/internal/metrics"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg config.ServerConfig, collector *metrics.Collector, logger logrus.FieldLogger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	logger = logging.OrDiscard(logger)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.AllowedOrigins))
	router.Use(collector.Middleware())

	handler := NewHandler(cfg.ExportPath, logger)

	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(collector.Handler()))

	products := router.Group("/products")
	{
		products.GET("", handler.ListProducts)
		products.GET("/:id", handler.GetProduct)
	}

	return router
}

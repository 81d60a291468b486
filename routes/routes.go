package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	v1 "github.com/qatrack/api/v1"
	"github.com/qatrack/config"
	"github.com/qatrack/middleware"
)

// SetupRouter builds the engine with logging, recovery, CORS and the v1 API mounted under /api/v1
func SetupRouter(cfg config.Config, deps v1.Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	// Public health check at the root
	router.GET("/", v1.HealthCheck)

	v1.RegisterRoutes(router.Group("/api/v1"), deps)
	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}
	if len(origins) == 0 {
		// Wildcard origins cannot be combined with credentials
		c.AllowAllOrigins = true
		c.AllowCredentials = false
		return c
	}
	c.AllowOrigins = origins
	return c
}

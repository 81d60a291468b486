package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qatrack/database"
)

// HealthCheck reports service liveness and database reachability
func HealthCheck(c *gin.Context) {
	dbStatus := "ok"
	if database.DB == nil {
		dbStatus = "unavailable"
	} else if sqlDB, err := database.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		dbStatus = "unavailable"
	}

	code := http.StatusOK
	if dbStatus != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":   "ok",
		"service":  "qatrack-api",
		"version":  "1.0.0",
		"database": dbStatus,
	})
}

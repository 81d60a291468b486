package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/qatrack/dto"
	"github.com/qatrack/logger"
	"github.com/qatrack/middleware"
	"github.com/qatrack/services"
	"go.uber.org/zap"
)

func success(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{
		"status": "success",
		"data":   data,
	})
}

func failure(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"status":  "error",
		"message": message,
	})
}

// handleError maps service errors onto HTTP status codes
func handleError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(err, services.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		code = http.StatusConflict
	}

	if code == http.StatusInternalServerError {
		_ = c.Error(err)
		logger.L().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		failure(c, code, "Internal server error")
		return
	}

	message := err.Error()
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		message = svcErr.Message
	}
	failure(c, code, message)
}

// bind decodes the JSON body and answers 400 on failure
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		failure(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return false
	}
	return true
}

// actor returns the authenticated actor or answers 401
func actor(c *gin.Context) (dto.Actor, bool) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		failure(c, http.StatusUnauthorized, "User not authenticated")
	}
	return a, ok
}

func queryInt(c *gin.Context, key string, fallback int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

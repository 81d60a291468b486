package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	v1 "github.com/qatrack/api/v1"
	"github.com/qatrack/config"
	"github.com/qatrack/database/dbtest"
	"github.com/qatrack/services"
	"github.com/stretchr/testify/assert"
)

func newRouter(t *testing.T, origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	dbtest.Setup(t)
	cfg := config.Defaults()
	cfg.CORSOrigins = origins
	return SetupRouter(cfg, v1.Dependencies{Auth: services.NewAuthService("test-secret", time.Hour)})
}

func TestSetupRouter_Health(t *testing.T) {
	router := newRouter(t, nil)

	for _, path := range []string{"/", "/api/v1/health"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestSetupRouter_CORS(t *testing.T) {
	router := newRouter(t, []string{"https://qa.example.test"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/projects", nil)
	req.Header.Set("Origin", "https://qa.example.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://qa.example.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/projects", nil)
	req.Header.Set("Origin", "https://evil.example.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCorsConfig_AllOrigins(t *testing.T) {
	c := corsConfig(nil)
	assert.True(t, c.AllowAllOrigins)
	assert.False(t, c.AllowCredentials)
	assert.NoError(t, c.Validate())
}

func TestSetupRouter_RecoversPanics(t *testing.T) {
	router := newRouter(t, nil)
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

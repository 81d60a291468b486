package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qatrack/dto"
	"github.com/qatrack/middleware"
	"github.com/qatrack/models"
	"github.com/qatrack/services"
)

// AuthController handles account and session endpoints
type AuthController struct {
	authService *services.AuthService
}

// NewAuthController creates a new auth controller
func NewAuthController(authService *services.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// RegisterRoutes registers auth routes. Routes under /auth that need a user
// install the auth middleware themselves.
func (ac *AuthController) RegisterRoutes(router *gin.RouterGroup) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", ac.Register)
		authGroup.POST("/login", ac.Login)
		authGroup.POST("/logout", ac.Logout)
		authGroup.GET("/me", middleware.AuthMiddleware(ac.authService), ac.GetCurrentUser)
	}

	users := router.Group("/users")
	users.Use(middleware.AuthMiddleware(ac.authService), middleware.RequireRole(models.RoleAdmin))
	{
		users.POST("", ac.CreateUser)
	}
}

// Register handles self-service registration of client accounts
func (ac *AuthController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bind(c, &req) {
		return
	}

	user, err := ac.authService.Register(req)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusCreated, user)
}

// CreateUser lets an administrator create an account with any role
func (ac *AuthController) CreateUser(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.RegisterRequest
	if !bind(c, &req) {
		return
	}

	user, err := ac.authService.CreateUser(a, req)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusCreated, user)
}

// Login handles user authentication
func (ac *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bind(c, &req) {
		return
	}

	authResponse, err := ac.authService.Login(req)
	if err != nil {
		if err == services.ErrInvalidCredentials {
			failure(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		handleError(c, err)
		return
	}

	// Set token as HttpOnly cookie for browser clients
	maxAge := int(time.Until(authResponse.ExpiresAt).Seconds())
	c.SetCookie("access_token", authResponse.Token, maxAge, "/", "", true, true)

	// Also return token in response body for clients that prefer Bearer auth
	success(c, http.StatusOK, authResponse)
}

// Logout clears the session cookie
func (ac *AuthController) Logout(c *gin.Context) {
	c.SetCookie("access_token", "", -1, "/", "", true, true)
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the currently authenticated user's profile
func (ac *AuthController) GetCurrentUser(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	user, err := ac.authService.GetUser(a.UserID)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, user)
}

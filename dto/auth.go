package dto

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/qatrack/models"
)

// TokenClaims represents our custom JWT claims
type TokenClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents registration data
type RegisterRequest struct {
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=6"`
	Username *string     `json:"username"`
	Name     *string     `json:"name"`
	Role     models.Role `json:"role"`
}

// AuthResponse represents the response after authentication
type AuthResponse struct {
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Actor is the request-scoped authorization context. It is resolved once by
// the auth middleware and passed explicitly into every service operation.
type Actor struct {
	UserID      string
	Role        models.Role
	Permissions map[models.Permission]bool
}

// NewActor builds an actor with the permission set of its role
func NewActor(userID string, role models.Role) Actor {
	return Actor{UserID: userID, Role: role, Permissions: role.Permissions()}
}

// IsAdmin reports whether the actor is an administrator
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// Can reports whether the actor holds the permission
func (a Actor) Can(p models.Permission) bool {
	return a.Permissions[p]
}

// HasRole reports whether the actor's role is one of roles
func (a Actor) HasRole(roles ...models.Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

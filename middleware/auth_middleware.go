package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/qatrack/dto"
	"github.com/qatrack/models"
	"github.com/qatrack/services"
)

const actorKey = "actor"

// AuthMiddleware authenticates requests with a JWT taken from the
// Authorization header or the access_token cookie, then resolves the current
// account so role changes and deactivation apply immediately
func AuthMiddleware(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		user, err := auth.GetUser(claims.UserID)
		if err != nil || !user.IsActive {
			abort(c, http.StatusUnauthorized, "Account not found or disabled")
			return
		}

		actor := dto.NewActor(user.ID, user.Role)
		c.Set(actorKey, actor)
		c.Set("userId", user.ID)
		c.Set("role", string(user.Role))
		c.Next()
	}
}

// ActorFrom returns the actor stored by AuthMiddleware
func ActorFrom(c *gin.Context) (dto.Actor, bool) {
	value, exists := c.Get(actorKey)
	if !exists {
		return dto.Actor{}, false
	}
	actor, ok := value.(dto.Actor)
	return actor, ok
}

// RequireRole allows the request through only for the given roles.
// It must run after AuthMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !actor.HasRole(roles...) {
			abort(c, http.StatusForbidden, "Insufficient privileges")
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	if cookie, err := c.Cookie("access_token"); err == nil {
		return cookie
	}
	return ""
}

func abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{
		"status":  "error",
		"message": message,
	})
}

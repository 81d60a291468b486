package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qatrack/database/dbtest"
	"github.com/qatrack/dto"
	"github.com/qatrack/models"
	"github.com/qatrack/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(req *http.Request) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{"header", "Bearer abc", "", "abc"},
		{"lower case scheme", "bearer abc", "", "abc"},
		{"header wins over cookie", "Bearer abc", "xyz", "abc"},
		{"cookie", "", "xyz", "xyz"},
		{"other scheme", "Basic abc", "", ""},
		{"none", "", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "access_token", Value: tc.cookie})
			}
			c, _ := newContext(req)
			assert.Equal(t, tc.want, bearerToken(c))
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	db := dbtest.Setup(t)
	auth := services.NewAuthService("test-secret", time.Hour)
	user, err := auth.CreateUser(dto.NewActor("root", models.RoleAdmin), dto.RegisterRequest{
		Email: "lead@example.test", Password: "secret1", Role: models.RoleProjectLead,
	})
	require.NoError(t, err)
	token, _, err := auth.GenerateToken(user.ID, user.Email, string(user.Role))
	require.NoError(t, err)

	run := func(token string) (*httptest.ResponseRecorder, dto.Actor, bool) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		c, w := newContext(req)
		AuthMiddleware(auth)(c)
		a, ok := ActorFrom(c)
		return w, a, ok
	}

	_, a, ok := run(token)
	require.True(t, ok)
	assert.Equal(t, user.ID, a.UserID)
	assert.True(t, a.Can(models.PermManageTeam))

	// A role change applies without a new token.
	require.NoError(t, db.Model(user).Update("role", models.RoleClient).Error)
	_, a, ok = run(token)
	require.True(t, ok)
	assert.False(t, a.Can(models.PermManageTeam))

	require.NoError(t, db.Model(user).Update("is_active", false).Error)
	w, _, ok := run(token)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	c, w := newContext(httptest.NewRequest(http.MethodGet, "/", nil))
	RequireRole(models.RoleAdmin)(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newContext(httptest.NewRequest(http.MethodGet, "/", nil))
	c.Set(actorKey, dto.NewActor("u", models.RoleQA))
	RequireRole(models.RoleAdmin, models.RoleProjectLead)(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.True(t, c.IsAborted())

	c, _ = newContext(httptest.NewRequest(http.MethodGet, "/", nil))
	c.Set(actorKey, dto.NewActor("u", models.RoleProjectLead))
	RequireRole(models.RoleAdmin, models.RoleProjectLead)(c)
	assert.False(t, c.IsAborted())
}

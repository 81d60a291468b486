package services

import (
	"testing"
	"time"

	"github.com/qatrack/dto"
	"github.com/qatrack/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService("test-secret", time.Hour)

	user, err := svc.Register(dto.RegisterRequest{Email: " Ana@Example.test ", Password: "secret1", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.test", user.Email)
	assert.Equal(t, models.RoleClient, user.Role, "self-registration never grants a role")

	_, err = svc.Register(dto.RegisterRequest{Email: "ana@example.test", Password: "secret1"})
	assert.ErrorIs(t, err, ErrValidation)

	resp, err := svc.Login(dto.LoginRequest{Email: "ANA@example.test", Password: "secret1"})
	require.NoError(t, err)
	assert.Empty(t, resp.User.Password)
	assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, time.Minute)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, string(models.RoleClient), claims.Role)

	_, err = svc.Login(dto.LoginRequest{Email: "ana@example.test", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, f.db.Model(user).Update("is_active", false).Error)
	_, err = svc.Login(dto.LoginRequest{Email: "ana@example.test", Password: "secret1"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestValidateToken_Rejects(t *testing.T) {
	svc := NewAuthService("test-secret", time.Hour)
	token, _, err := NewAuthService("other-secret", time.Hour).GenerateToken("u", "e", "admin")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)

	_, err = svc.ValidateToken("garbage")
	assert.Error(t, err)

	_, _, err = NewAuthService("", time.Hour).GenerateToken("u", "e", "admin")
	assert.Error(t, err)
}

func TestCreateUserAndEnsureAdmin(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService("test-secret", time.Hour)

	lead, err := svc.CreateUser(f.adminActor(), dto.RegisterRequest{Email: "lead@example.test", Password: "secret1", Role: models.RoleProjectLead})
	require.NoError(t, err)
	assert.Equal(t, models.RoleProjectLead, lead.Role)

	_, err = svc.CreateUser(f.actor(*lead), dto.RegisterRequest{Email: "x@example.test", Password: "secret1", Role: models.RoleQA})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.CreateUser(f.adminActor(), dto.RegisterRequest{Email: "x@example.test", Password: "secret1", Role: "overlord"})
	assert.ErrorIs(t, err, ErrValidation)

	promoted, err := svc.EnsureAdmin("lead@example.test", "newpass1")
	require.NoError(t, err)
	assert.Equal(t, lead.ID, promoted.ID)
	assert.Equal(t, models.RoleAdmin, promoted.Role)
	_, err = svc.Login(dto.LoginRequest{Email: "lead@example.test", Password: "newpass1"})
	assert.NoError(t, err)

	created, err := svc.EnsureAdmin("root@example.test", "rootpass")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, created.Role)
}

package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/qatrack/database/dbtest"
	"github.com/qatrack/dto"
	"github.com/qatrack/models"
	"github.com/qatrack/status"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var defaultPolicy = status.Policy{RequireATTester: true, RequireQA: true}

type fixture struct {
	t     *testing.T
	db    *gorm.DB
	admin models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{t: t, db: dbtest.Setup(t)}
	f.admin = f.user(models.RoleAdmin)
	return f
}

func (f *fixture) actor(u models.User) dto.Actor {
	return dto.NewActor(u.ID, u.Role)
}

func (f *fixture) adminActor() dto.Actor {
	return f.actor(f.admin)
}

func (f *fixture) user(role models.Role) models.User {
	f.t.Helper()
	u := models.User{Email: uuid.NewString() + "@example.test", Password: "x", Role: role, IsActive: true}
	require.NoError(f.t, f.db.Create(&u).Error)
	return u
}

func (f *fixture) project(title string) models.Project {
	f.t.Helper()
	p := models.Project{Title: title, Status: models.ProjectStatusInProgress, TotalHours: 100, CreatedBy: f.admin.ID}
	require.NoError(f.t, f.db.Create(&p).Error)
	return p
}

func (f *fixture) page(projectID, name string) models.Page {
	f.t.Helper()
	p := models.Page{ProjectID: projectID, Name: name}
	require.NoError(f.t, f.db.Omit("Environments").Create(&p).Error)
	return p
}

func (f *fixture) env(name string) models.Environment {
	f.t.Helper()
	e := models.Environment{Name: name}
	require.NoError(f.t, f.db.Create(&e).Error)
	return e
}

func (f *fixture) member(projectID string, u models.User, role models.TeamRole) models.UserAssignment {
	f.t.Helper()
	a := models.UserAssignment{ProjectID: projectID, UserID: u.ID, Role: role, AssignedBy: f.admin.ID}
	require.NoError(f.t, f.db.Omit("User", "Project").Create(&a).Error)
	return a
}

func (f *fixture) pageEnvs(pageID string) []models.PageEnvironment {
	f.t.Helper()
	var rows []models.PageEnvironment
	require.NoError(f.t, f.db.Where("page_id = ?", pageID).Order("environment_id").Find(&rows).Error)
	return rows
}

func (f *fixture) reloadPage(id string) models.Page {
	f.t.Helper()
	var p models.Page
	require.NoError(f.t, f.db.Preload("Environments").First(&p, "id = ?", id).Error)
	return p
}

func (f *fixture) count(model interface{}, query string, args ...interface{}) int64 {
	f.t.Helper()
	var n int64
	db := f.db.Model(model)
	if query != "" {
		db = db.Where(query, args...)
	}
	require.NoError(f.t, db.Count(&n).Error)
	return n
}

func ptr(s string) *string { return &s }

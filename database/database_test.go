package database_test

import (
	"testing"

	"github.com/qatrack/database"
	"github.com/qatrack/database/dbtest"
	"github.com/qatrack/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := database.Open("oracle", "dsn", gormlogger.Silent)
	assert.Error(t, err)
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := database.Open("sqlite", "", gormlogger.Silent)
	assert.Error(t, err)
}

func TestMigrate_CreatesTables(t *testing.T) {
	db := dbtest.Open(t)

	for _, table := range []string{"users", "projects", "pages", "page_environments", "user_assignments", "issue_pages"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	db := dbtest.Open(t)

	page := models.Page{ProjectID: "00000000-0000-0000-0000-000000000001", Name: "Home"}
	err := db.Create(&page).Error
	assert.Error(t, err, "page without project must violate the foreign key")
}

func TestCopyData(t *testing.T) {
	source := dbtest.Open(t)
	target := dbtest.Open(t)

	user := models.User{Email: "lead@example.com", Password: "x", Role: models.RoleProjectLead}
	require.NoError(t, source.Create(&user).Error)
	project := models.Project{Title: "Portal", CreatedBy: user.ID, Status: models.ProjectStatusInProgress}
	require.NoError(t, source.Create(&project).Error)

	require.NoError(t, database.CopyData(source, target))

	var copied models.Project
	require.NoError(t, target.First(&copied, "id = ?", project.ID).Error)
	assert.Equal(t, "Portal", copied.Title)

	var users int64
	target.Model(&models.User{}).Count(&users)
	assert.Equal(t, int64(1), users)

	// Existing keys are skipped, so a second run is a no-op
	require.NoError(t, database.CopyData(source, target))
	target.Model(&models.Project{}).Count(&users)
	assert.Equal(t, int64(1), users)
}

func TestCopyData_KeepsIDsAndSoftDeletedRows(t *testing.T) {
	source := dbtest.Open(t)
	target := dbtest.Open(t)

	users := []models.User{
		{Email: "a@example.com", Password: "x", Role: models.RoleQA},
		{Email: "b@example.com", Password: "y", Role: models.RoleClient},
	}
	require.NoError(t, source.Create(&users).Error)
	require.NoError(t, source.Model(&users[0]).Update("is_active", false).Error)
	require.NoError(t, source.Delete(&users[1]).Error)
	env := models.Environment{Name: "Staging"}
	require.NoError(t, source.Create(&env).Error)

	require.NoError(t, database.CopyData(source, target))

	var copied []models.User
	require.NoError(t, target.Unscoped().Order("email").Find(&copied).Error)
	require.Len(t, copied, 2)
	assert.Equal(t, users[0].ID, copied[0].ID)
	assert.Equal(t, "x", copied[0].Password)
	assert.False(t, copied[0].IsActive)
	assert.True(t, copied[1].DeletedAt.Valid)

	var copiedEnv models.Environment
	require.NoError(t, target.First(&copiedEnv, "id = ?", env.ID).Error)
	assert.Equal(t, "Staging", copiedEnv.Name)
}

package repositories

import (
	"testing"

	"github.com/qatrack/database/dbtest"
	"github.com/qatrack/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestForUpdate_PostgresLocksRow(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=qatrack dbname=qatrack"}),
		&gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var issue models.Issue
		return forUpdate(tx).First(&issue, "id = ?", "issue-1")
	})
	assert.Contains(t, sql, "FOR UPDATE")
}

func TestFindByIDForUpdate_SQLite(t *testing.T) {
	db := dbtest.Open(t)
	user := models.User{Email: "qa@example.test", Password: "x", Role: models.RoleQA}
	require.NoError(t, db.Create(&user).Error)
	project := models.Project{Title: "Portal", CreatedBy: user.ID}
	require.NoError(t, db.Create(&project).Error)
	issue := models.Issue{ProjectID: project.ID, Title: "Broken"}
	require.NoError(t, db.Create(&issue).Error)

	err := db.Transaction(func(tx *gorm.DB) error {
		locked, err := NewIssueRepository().WithTx(tx).FindByIDForUpdate(issue.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, "Broken", locked.Title)
		return nil
	})
	require.NoError(t, err)

	_, err = NewIssueRepository().WithTx(db).FindByIDForUpdate("00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

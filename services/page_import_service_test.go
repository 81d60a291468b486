package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/qatrack/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportCSV(t *testing.T) {
	f := newFixture(t)
	svc := NewPageImportService()
	project, other := f.project("Portal"), f.project("Other")
	staging, prod := f.env("Staging"), f.env("Production")
	at := f.user(models.RoleATTester)
	inactive := f.user(models.RoleFTTester)
	require.NoError(t, f.db.Model(&inactive).Update("is_active", false).Error)

	csv := strings.Join([]string{
		"\ufeffpage_name,url,screen_name,project_id,at_testers,ft_testers,environments,status",
		fmt.Sprintf("Home,https://example.test/,home,%s,%s,%s,\"staging, %s\",In Progress", project.ID, at.ID, inactive.ID, prod.ID),
		"Cart,,cart,,not-a-uuid,,production,whatever",
		"Short,row,only,six,columns,here",
		fmt.Sprintf("Stray,,,%s,,,,", other.ID),
		",,,,,,,",
	}, "\n")

	result, err := svc.ImportCSV(f.adminActor(), project.ID, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	require.Len(t, result.Skipped, 3)
	assert.Equal(t, 4, result.Skipped[0].Line)
	assert.Equal(t, "expected 8 columns, got 6", result.Skipped[0].Reason)
	assert.Equal(t, 5, result.Skipped[1].Line)
	assert.Equal(t, 6, result.Skipped[2].Line)

	var home, cart models.Page
	require.NoError(t, f.db.First(&home, "project_id = ? AND name = ?", project.ID, "Home").Error)
	require.NoError(t, f.db.First(&cart, "project_id = ? AND name = ?", project.ID, "Cart").Error)

	require.NotNil(t, home.AtTesterID)
	assert.Equal(t, at.ID, *home.AtTesterID)
	assert.Nil(t, home.FtTesterID, "inactive testers are dropped")
	homeEnvs := f.pageEnvs(home.ID)
	require.Len(t, homeEnvs, 2)
	for _, row := range homeEnvs {
		assert.Equal(t, models.TestingInProgress, row.Status)
		assert.Equal(t, at.ID, *row.AtTesterID)
	}
	assert.ElementsMatch(t, []string{staging.ID, prod.ID}, []string{homeEnvs[0].EnvironmentID, homeEnvs[1].EnvironmentID})

	assert.Nil(t, cart.AtTesterID)
	cartEnvs := f.pageEnvs(cart.ID)
	require.Len(t, cartEnvs, 1)
	assert.Equal(t, prod.ID, cartEnvs[0].EnvironmentID)
	assert.Equal(t, models.TestingNotStarted, cartEnvs[0].Status, "unknown statuses start at not_started")

	assert.Zero(t, f.count(&models.Page{}, "project_id = ?", other.ID))
}

func TestImportCSV_SkipsUnknownTestersInList(t *testing.T) {
	f := newFixture(t)
	svc := NewPageImportService()
	project := f.project("Portal")
	staging := f.env("Staging")
	at := f.user(models.RoleATTester)
	ft := f.user(models.RoleFTTester)
	inactive := f.user(models.RoleFTTester)
	require.NoError(t, f.db.Model(&inactive).Update("is_active", false).Error)

	csv := strings.Join([]string{
		"page_name,url,screen_name,project_id,at_testers,ft_testers,environments,status",
		fmt.Sprintf("Home,/,home,,\"%s,%s\",\"%s,%s\",staging,", uuid.NewString(), at.ID, inactive.ID, ft.ID),
	}, "\n")

	result, err := svc.ImportCSV(f.adminActor(), project.ID, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)

	var home models.Page
	require.NoError(t, f.db.First(&home, "project_id = ? AND name = ?", project.ID, "Home").Error)
	require.NotNil(t, home.AtTesterID)
	assert.Equal(t, at.ID, *home.AtTesterID)
	require.NotNil(t, home.FtTesterID)
	assert.Equal(t, ft.ID, *home.FtTesterID)

	envs := f.pageEnvs(home.ID)
	require.Len(t, envs, 1)
	assert.Equal(t, staging.ID, envs[0].EnvironmentID)
	require.NotNil(t, envs[0].AtTesterID)
	assert.Equal(t, at.ID, *envs[0].AtTesterID)
	require.NotNil(t, envs[0].FtTesterID)
	assert.Equal(t, ft.ID, *envs[0].FtTesterID)
}

func TestImportCSV_RejectsBadInput(t *testing.T) {
	f := newFixture(t)
	svc := NewPageImportService()
	project := f.project("Portal")

	_, err := svc.ImportCSV(f.adminActor(), project.ID, strings.NewReader(""))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.ImportCSV(f.adminActor(), project.ID, strings.NewReader("url,status\nx,y\n"))
	assert.ErrorIs(t, err, ErrValidation)

	tester := f.user(models.RoleATTester)
	f.member(project.ID, tester, models.TeamRoleATTester)
	_, err = svc.ImportCSV(f.actor(tester), project.ID, strings.NewReader("page_name\nHome\n"))
	assert.ErrorIs(t, err, ErrForbidden)

	assert.Zero(t, f.count(&models.Page{}, ""))
}

func TestParseTestingStatus(t *testing.T) {
	cases := map[string]models.TestingStatus{
		"In Progress":  models.TestingInProgress,
		"needs_review": models.TestingNeedsReview,
		" COMPLETED ":  models.TestingCompleted,
		"":             models.TestingNotStarted,
		"done-ish":     models.TestingNotStarted,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseTestingStatus(in), in)
	}
}
